package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"ClassBridge/internal/notifier"
	"ClassBridge/pkg/logger"

	"github.com/google/uuid"
)

type fakeCourseRepo struct {
	courses map[uuid.UUID]models.Course
	order   []uuid.UUID
}

func (f *fakeCourseRepo) NewCourse(_ context.Context, c *models.Course) (uuid.UUID, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.courses[c.ID] = *c
	f.order = append(f.order, c.ID)
	return c.ID, nil
}

func (f *fakeCourseRepo) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return &c, nil
}

func (f *fakeCourseRepo) UpdateCourse(_ context.Context, c *models.Course) error {
	if _, ok := f.courses[c.ID]; !ok {
		return app_errors.ErrCourseNotFound
	}
	f.courses[c.ID] = *c
	return nil
}

func (f *fakeCourseRepo) DeleteCourse(_ context.Context, id uuid.UUID) error {
	if _, ok := f.courses[id]; !ok {
		return app_errors.ErrCourseNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) ListCourses(context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(f.courses))
	for _, id := range f.order {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListCoursesByInstructor(_ context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range f.order {
		if c, ok := f.courses[id]; ok && c.InstructorID == instructorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListPublishedCourses(context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, id := range f.order {
		if c, ok := f.courses[id]; ok && c.IsPublished {
			out = append(out, c)
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

type fakeEnrollmentRepo struct {
	enrolled map[uuid.UUID][]uuid.UUID // student -> courses
}

func (f *fakeEnrollmentRepo) Exists(_ context.Context, studentID, courseID uuid.UUID) (bool, error) {
	for _, id := range f.enrolled[studentID] {
		if id == courseID {
			return true, nil
		}
	}
	return false, nil
}

type fakeSearchRepo struct {
	indexed map[uuid.UUID]models.Course
	hits    []uuid.UUID
	err     error
}

func (f *fakeSearchRepo) Index(_ context.Context, c models.Course) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[c.ID] = c
	return nil
}

func (f *fakeSearchRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeSearchRepo) Search(context.Context, string, int) ([]uuid.UUID, error) {
	return f.hits, nil
}

type fixture struct {
	svc        *Service
	repo       *fakeCourseRepo
	search     *fakeSearchRepo
	admin      models.Principal
	instructor models.Principal
	student    models.Principal
	enrolls    *fakeEnrollmentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	instructorID := uuid.New()
	f := &fixture{
		repo:       &fakeCourseRepo{courses: map[uuid.UUID]models.Course{}},
		search:     &fakeSearchRepo{indexed: map[uuid.UUID]models.Course{}},
		admin:      models.Principal{ID: uuid.New(), Role: models.AdminRole},
		instructor: models.Principal{ID: instructorID, Role: models.InstructorRole},
		student:    models.Principal{ID: uuid.New(), Role: models.StudentRole},
		enrolls:    &fakeEnrollmentRepo{enrolled: map[uuid.UUID][]uuid.UUID{}},
	}

	users := &fakeUserRepo{users: map[uuid.UUID]models.User{
		instructorID: {ID: instructorID, Name: "Ada Teacher", Role: models.InstructorRole},
	}}

	f.svc = NewService(logger.New("local"), f.repo, users, f.enrolls, f.search, notifier.Noop{})
	f.svc.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) create(t *testing.T, title string, published bool) *models.CourseView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), f.admin, CreateInput{
		Title:        title,
		InstructorID: f.instructor.ID,
		Category:     "engineering",
		IsPublished:  published,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return view
}

func TestCreateAdminOnly(t *testing.T) {
	f := newFixture(t)

	view := f.create(t, "Go for Backend", true)
	if view.Instructor.Name != "Ada Teacher" {
		t.Errorf("instructor ref not resolved: %+v", view.Instructor)
	}
	if _, ok := f.search.indexed[view.ID]; !ok {
		t.Errorf("course not indexed for search")
	}

	for _, p := range []models.Principal{f.instructor, f.student} {
		_, err := f.svc.Create(context.Background(), p, CreateInput{Title: "x", InstructorID: f.instructor.ID})
		if !errors.Is(err, app_errors.ErrForbidden) {
			t.Errorf("%s: err = %v, want forbidden", p.Role, err)
		}
	}
}

func TestCreateUnknownInstructor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, CreateInput{Title: "x", InstructorID: uuid.New()})
	if !errors.Is(err, app_errors.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCreateSurvivesIndexFailure(t *testing.T) {
	f := newFixture(t)
	f.search.err = errors.New("cluster red")

	view := f.create(t, "Resilient", true)
	if _, ok := f.repo.courses[view.ID]; !ok {
		t.Fatalf("course must persist even when indexing fails")
	}
}

func TestUpdatePartialAndPublishToggle(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, "Draft Course", true)

	unpublish := false
	updated, err := f.svc.Update(context.Background(), f.instructor, view.ID, UpdateInput{
		Description: "now with labs",
		IsPublished: &unpublish,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Draft Course" {
		t.Errorf("untouched title changed: %q", updated.Title)
	}
	if updated.Description != "now with labs" {
		t.Errorf("description = %q", updated.Description)
	}
	if updated.IsPublished {
		t.Errorf("explicit false must unpublish")
	}
}

func TestUpdateForeignInstructor(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, "Owned", true)
	other := models.Principal{ID: uuid.New(), Role: models.InstructorRole}

	_, err := f.svc.Update(context.Background(), other, view.ID, UpdateInput{Title: "hijack"})
	if !errors.Is(err, app_errors.ErrNotCourseInstructor) {
		t.Fatalf("err = %v, want ErrNotCourseInstructor", err)
	}
}

func TestUpdateReassignInstructorAdminOnly(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, "Transferable", true)

	newInstructor := uuid.New()
	fakeUsers := f.svc.userRepo.(*fakeUserRepo)
	fakeUsers.users[newInstructor] = models.User{ID: newInstructor, Name: "New Owner", Role: models.InstructorRole}

	_, err := f.svc.Update(context.Background(), f.instructor, view.ID, UpdateInput{InstructorID: newInstructor})
	if !errors.Is(err, app_errors.ErrForbidden) {
		t.Fatalf("instructor reassign: err = %v, want forbidden", err)
	}

	updated, err := f.svc.Update(context.Background(), f.admin, view.ID, UpdateInput{InstructorID: newInstructor})
	if err != nil {
		t.Fatalf("admin reassign: %v", err)
	}
	if updated.InstructorID != newInstructor {
		t.Errorf("instructor not reassigned")
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	view := f.create(t, "Short-lived", true)

	if err := f.svc.Delete(context.Background(), f.instructor, view.ID); !errors.Is(err, app_errors.ErrForbidden) {
		t.Fatalf("instructor delete: err = %v, want forbidden", err)
	}
	if err := f.svc.Delete(context.Background(), f.admin, view.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, ok := f.search.indexed[view.ID]; ok {
		t.Errorf("course still in the search index")
	}
	if err := f.svc.Delete(context.Background(), f.admin, view.ID); !errors.Is(err, app_errors.ErrNotFound) {
		t.Errorf("double delete: err = %v, want not found", err)
	}
}

func TestListVisibility(t *testing.T) {
	f := newFixture(t)
	published := f.create(t, "Published", true)
	draft := f.create(t, "Draft", false)
	f.enrolls.enrolled[f.student.ID] = []uuid.UUID{draft.ID}

	adminViews, err := f.svc.List(context.Background(), f.admin)
	if err != nil || len(adminViews) != 2 {
		t.Fatalf("admin: %v, %d courses", err, len(adminViews))
	}

	instructorViews, err := f.svc.List(context.Background(), f.instructor)
	if err != nil || len(instructorViews) != 2 {
		t.Fatalf("instructor: %v, %d courses", err, len(instructorViews))
	}

	studentViews, err := f.svc.List(context.Background(), f.student)
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	if len(studentViews) != 2 {
		t.Fatalf("enrolled student sees published + enrolled draft, got %d", len(studentViews))
	}

	outsider := models.Principal{ID: uuid.New(), Role: models.StudentRole}
	outsiderViews, err := f.svc.List(context.Background(), outsider)
	if err != nil {
		t.Fatalf("outsider: %v", err)
	}
	if len(outsiderViews) != 1 || outsiderViews[0].ID != published.ID {
		t.Errorf("unenrolled student must see only published courses, got %d", len(outsiderViews))
	}
}

func TestSearchAppliesVisibility(t *testing.T) {
	f := newFixture(t)
	published := f.create(t, "Visible", true)
	draft := f.create(t, "Hidden", false)
	f.search.hits = []uuid.UUID{published.ID, draft.ID, uuid.New()}

	views, err := f.svc.Search(context.Background(), f.student, "course")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(views) != 1 || views[0].ID != published.ID {
		t.Errorf("student search must filter drafts and stale hits, got %d", len(views))
	}

	views, err = f.svc.Search(context.Background(), f.admin, "course")
	if err != nil {
		t.Fatalf("admin Search: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("admin search: got %d, want 2", len(views))
	}
}

func TestListPublished(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Public", true)
	f.create(t, "Draft", false)

	views, err := f.svc.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(views) != 1 || views[0].Title != "Public" {
		t.Errorf("got %d published courses", len(views))
	}
}
