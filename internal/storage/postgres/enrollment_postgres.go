package postgres

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

// CreateEnrollment races to the UNIQUE(student_id, course_id) index. Concurrent
// enrolls for the same pair end with exactly one row; the losers get
// ErrAlreadyEnrolled.
func (r *EnrollmentPostgres) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	query := `
		INSERT INTO enrollments (id, student_id, course_id, enrolled_at, progress, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		enrollment.ID,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.EnrolledAt,
		enrollment.Progress,
		enrollment.Status,
		enrollment.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentPostgres) listEnrollments(ctx context.Context, query string, args ...any) ([]models.Enrollment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrolledAt, &e.Progress, &e.Status, &e.CompletedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

const enrollmentColumns = `id, student_id, course_id, enrolled_at, progress, status, completed_at`

func (r *EnrollmentPostgres) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at DESC`
	return r.listEnrollments(ctx, query, studentID)
}

func (r *EnrollmentPostgres) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = $1 ORDER BY enrolled_at DESC`
	return r.listEnrollments(ctx, query, courseID)
}

func (r *EnrollmentPostgres) Exists(ctx context.Context, studentID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2
		)
	`, studentID, courseID).Scan(&exists)
	return exists, err
}
