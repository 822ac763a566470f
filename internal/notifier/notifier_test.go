package notifier

import (
	"testing"
	"time"

	"ClassBridge/internal/models"
)

type recordLog struct {
	warns []string
}

func (l *recordLog) Debug(string, ...interface{})          {}
func (l *recordLog) Info(string, ...interface{})           {}
func (l *recordLog) Warn(m string, _ ...interface{})       { l.warns = append(l.warns, m) }
func (l *recordLog) Error(string, ...interface{})          {}
func (l *recordLog) ErrorErr(string, error, ...interface{}) {}
func (l *recordLog) Fatal(string, ...interface{})          {}
func (l *recordLog) FatalErr(string, error, ...interface{}) {}

func TestPublishNeverBlocks(t *testing.T) {
	log := &recordLog{}
	n := &AMQPNotifier{log: log, queue: make(chan models.Event, 1)}

	event := models.Event{Type: models.EventCourseCreated, OccurredAt: time.Now()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Publish(event)
		n.Publish(event) // buffer full, must drop instead of blocking
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}

	if got := len(n.queue); got != 1 {
		t.Fatalf("expected 1 buffered event, got %d", got)
	}
	if len(log.warns) != 1 {
		t.Fatalf("expected 1 drop warning, got %d", len(log.warns))
	}
}

func TestNoopPublish(t *testing.T) {
	// must be safe with a zero value
	Noop{}.Publish(models.Event{Type: models.EventSubmissionGraded})
}
