package assignment

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/pkg/logger"

	"github.com/google/uuid"
)

type fakeCourseRepo struct {
	courses map[uuid.UUID]models.Course
}

func (f *fakeCourseRepo) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return &c, nil
}

type fakeEnrollmentRepo struct {
	enrollments []models.Enrollment
}

func (f *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) Exists(_ context.Context, studentID, courseID uuid.UUID) (bool, error) {
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

type fakeAssignmentRepo struct {
	assignments map[uuid.UUID]models.Assignment
}

func (f *fakeAssignmentRepo) NewAssignment(_ context.Context, a *models.Assignment) (uuid.UUID, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.assignments[a.ID] = *a
	return a.ID, nil
}

func (f *fakeAssignmentRepo) AssignmentByID(_ context.Context, id uuid.UUID) (*models.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, app_errors.ErrAssignmentNotFound
	}
	return &a, nil
}

func (f *fakeAssignmentRepo) UpdateAssignment(_ context.Context, a *models.Assignment) error {
	if _, ok := f.assignments[a.ID]; !ok {
		return app_errors.ErrAssignmentNotFound
	}
	f.assignments[a.ID] = *a
	return nil
}

func (f *fakeAssignmentRepo) DeleteAssignment(_ context.Context, id uuid.UUID) error {
	if _, ok := f.assignments[id]; !ok {
		return app_errors.ErrAssignmentNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) ListAssignments(context.Context) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByInstructor(_ context.Context, instructorID uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.InstructorID == instructorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByCourse(_ context.Context, courseID uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.CourseID == courseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByCourses(_ context.Context, courseIDs []uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range f.assignments {
		for _, id := range courseIDs {
			if a.CourseID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]models.User
}

func (f *fakeUserRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return &u, nil
}

type fakeAttachmentStore struct{}

func (fakeAttachmentStore) Upload(_ context.Context, entity string, entityID uuid.UUID, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	return entity + "/" + entityID.String() + "/" + filename, nil
}

func (fakeAttachmentStore) URL(_ context.Context, objectKey string) (string, error) {
	return "https://files.local/" + objectKey, nil
}

type recordNotifier struct {
	events []models.Event
}

func (n *recordNotifier) Publish(event models.Event) { n.events = append(n.events, event) }

type fixture struct {
	svc        *CatalogService
	repo       *fakeAssignmentRepo
	notifier   *recordNotifier
	admin      models.Principal
	instructor models.Principal
	student    models.Principal
	course     models.Course
	dueDate    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	instructorID := uuid.New()
	studentID := uuid.New()

	course := models.Course{
		ID:           uuid.New(),
		Title:        "Intro to Distributed Systems",
		InstructorID: instructorID,
		IsPublished:  true,
	}

	f := &fixture{
		repo:       &fakeAssignmentRepo{assignments: map[uuid.UUID]models.Assignment{}},
		notifier:   &recordNotifier{},
		admin:      models.Principal{ID: uuid.New(), Role: models.AdminRole},
		instructor: models.Principal{ID: instructorID, Role: models.InstructorRole},
		student:    models.Principal{ID: studentID, Role: models.StudentRole},
		course:     course,
		dueDate:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	f.svc = NewCatalogService(
		logger.New("local"),
		&fakeCourseRepo{courses: map[uuid.UUID]models.Course{course.ID: course}},
		&fakeEnrollmentRepo{enrollments: []models.Enrollment{
			{StudentID: studentID, CourseID: course.ID, Status: models.EnrollmentActive},
		}},
		f.repo,
		&fakeUserRepo{users: map[uuid.UUID]models.User{
			instructorID: {ID: instructorID, Name: "Ada Teacher", Role: models.InstructorRole},
		}},
		fakeAttachmentStore{},
		f.notifier,
	)
	f.svc.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) create(t *testing.T, principal models.Principal) *models.AssignmentView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), principal, CreateInput{
		Title:       "Lab 1",
		Description: "Build a key-value store",
		CourseID:    f.course.ID,
		DueDate:     f.dueDate,
		TotalPoints: 100,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return view
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	view := f.create(t, f.instructor)

	if view.InstructorID != f.course.InstructorID {
		t.Errorf("assignment must anchor the course instructor, got %s", view.InstructorID)
	}
	if view.Course.Title != f.course.Title {
		t.Errorf("course ref not resolved: %+v", view.Course)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].Type != models.EventAssignmentCreated {
		t.Errorf("expected one %s event", models.EventAssignmentCreated)
	}
}

func TestCreateByAdminAnchorsCourseInstructor(t *testing.T) {
	f := newFixture(t)

	view := f.create(t, f.admin)
	if view.InstructorID != f.course.InstructorID {
		t.Errorf("admin-created assignment must still anchor the course instructor")
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.instructor, CreateInput{
		Title: "no points", CourseID: f.course.ID, DueDate: f.dueDate,
	})
	if !errors.Is(err, app_errors.ErrInvalidTotalPoints) {
		t.Errorf("zero points: err = %v", err)
	}

	_, err = f.svc.Create(context.Background(), f.instructor, CreateInput{
		Title: "no due date", CourseID: f.course.ID, TotalPoints: 10,
	})
	if !errors.Is(err, app_errors.ErrMissingDueDate) {
		t.Errorf("zero due date: err = %v", err)
	}
}

func TestCreateForeignCourse(t *testing.T) {
	f := newFixture(t)
	other := models.Principal{ID: uuid.New(), Role: models.InstructorRole}

	_, err := f.svc.Create(context.Background(), other, CreateInput{
		Title: "intrusion", CourseID: f.course.ID, DueDate: f.dueDate, TotalPoints: 10,
	})
	if !errors.Is(err, app_errors.ErrNotCourseInstructor) {
		t.Fatalf("err = %v, want ErrNotCourseInstructor", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.instructor)

	updated, err := f.svc.Update(context.Background(), f.instructor, view.ID, UpdateInput{Title: "Lab 1 (revised)"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Lab 1 (revised)" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Description != "Build a key-value store" {
		t.Errorf("untouched field changed: %q", updated.Description)
	}
	if updated.TotalPoints != 100 {
		t.Errorf("zero TotalPoints must not overwrite, got %d", updated.TotalPoints)
	}
}

func TestUpdateForeignInstructor(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.instructor)
	other := models.Principal{ID: uuid.New(), Role: models.InstructorRole}

	_, err := f.svc.Update(context.Background(), other, view.ID, UpdateInput{Title: "hijack"})
	if !errors.Is(err, app_errors.ErrNotAssignmentInstructor) {
		t.Fatalf("err = %v, want ErrNotAssignmentInstructor", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.instructor)

	if err := f.svc.Delete(context.Background(), f.instructor, view.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := f.repo.assignments[view.ID]; ok {
		t.Errorf("assignment still stored")
	}
	last := f.notifier.events[len(f.notifier.events)-1]
	if last.Type != models.EventAssignmentDeleted {
		t.Errorf("last event = %s", last.Type)
	}
}

func TestDeleteStudentForbidden(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.instructor)

	err := f.svc.Delete(context.Background(), f.student, view.ID)
	if !errors.Is(err, app_errors.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.instructor)

	for _, tc := range []struct {
		name      string
		principal models.Principal
		want      int
	}{
		{"admin sees all", f.admin, 1},
		{"instructor sees own", f.instructor, 1},
		{"enrolled student sees course assignments", f.student, 1},
		{"unenrolled student sees none", models.Principal{ID: uuid.New(), Role: models.StudentRole}, 0},
		{"foreign instructor sees none", models.Principal{ID: uuid.New(), Role: models.InstructorRole}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			views, err := f.svc.List(context.Background(), tc.principal)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(views) != tc.want {
				t.Errorf("got %d assignments, want %d", len(views), tc.want)
			}
		})
	}
}

func TestGetByIDStudentNeedsEnrollment(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.instructor)

	if _, err := f.svc.GetByID(context.Background(), f.student, view.ID); err != nil {
		t.Errorf("enrolled student: %v", err)
	}

	outsider := models.Principal{ID: uuid.New(), Role: models.StudentRole}
	_, err := f.svc.GetByID(context.Background(), outsider, view.ID)
	if !errors.Is(err, app_errors.ErrNotEnrolled) {
		t.Errorf("outsider: err = %v, want ErrNotEnrolled", err)
	}
}

func TestListForCourse(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.instructor)

	views, err := f.svc.ListForCourse(context.Background(), f.student, f.course.ID)
	if err != nil {
		t.Fatalf("ListForCourse: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d, want 1", len(views))
	}

	if _, err := f.svc.ListForCourse(context.Background(), f.student, uuid.New()); !errors.Is(err, app_errors.ErrNotFound) {
		t.Errorf("unknown course: err = %v, want not found", err)
	}
}

func TestUploadAttachment(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, f.instructor)

	att, err := f.svc.UploadAttachment(context.Background(), f.instructor, view.ID, "rubric.pdf", nil, 10, "application/pdf")
	if err != nil {
		t.Fatalf("UploadAttachment: %v", err)
	}
	if att.URL == "" {
		t.Errorf("expected presigned URL")
	}

	stored := f.repo.assignments[view.ID]
	if len(stored.Attachments) != 1 || stored.Attachments[0].URL != "" {
		t.Errorf("stored attachments wrong: %+v", stored.Attachments)
	}

	if _, err := f.svc.UploadAttachment(context.Background(), f.student, view.ID, "x.pdf", nil, 1, "application/pdf"); !errors.Is(err, app_errors.ErrForbidden) {
		t.Errorf("student upload: err = %v, want forbidden", err)
	}
}
