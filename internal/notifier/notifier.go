package notifier

import "ClassBridge/internal/models"

// Notifier broadcasts domain events after a committed mutation. Delivery is
// best-effort: implementations must never block the mutation path and must
// never return an error to it.
type Notifier interface {
	Publish(event models.Event)
}

// Noop drops every event. Used in tests and notifier-less deployments.
type Noop struct{}

func (Noop) Publish(models.Event) {}
