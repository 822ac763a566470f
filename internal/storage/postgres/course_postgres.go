package postgres

import (
	"ClassBridge/internal/app_errors"
	"ClassBridge/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `id, title, description, instructor_id, category, duration, content, is_published, created_at, updated_at`

func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	var content []byte
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.InstructorID,
		&course.Category,
		&course.Duration,
		&content,
		&course.IsPublished,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &course.Content); err != nil {
			return nil, fmt.Errorf("failed to decode course content: %w", err)
		}
	}
	return course, nil
}

func (r *CoursePostgres) NewCourse(ctx context.Context, course *models.Course) (uuid.UUID, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if course.CreatedAt.IsZero() {
		now := time.Now().UTC()
		course.CreatedAt = now
		course.UpdatedAt = now
	}

	content, err := json.Marshal(course.Content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode course content: %w", err)
	}

	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = r.db.QueryRow(
		ctx,
		query,
		course.ID,
		course.Title,
		course.Description,
		course.InstructorID,
		course.Category,
		course.Duration,
		content,
		course.IsPublished,
		course.CreatedAt,
		course.UpdatedAt,
	).Scan(&course.ID)
	if err != nil {
		return uuid.Nil, err
	}
	return course.ID, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *CoursePostgres) UpdateCourse(ctx context.Context, course *models.Course) error {
	if course.UpdatedAt.IsZero() {
		course.UpdatedAt = time.Now().UTC()
	}

	content, err := json.Marshal(course.Content)
	if err != nil {
		return fmt.Errorf("failed to encode course content: %w", err)
	}

	query := `
		UPDATE courses
		   SET title = $2,
		       description = $3,
		       instructor_id = $4,
		       category = $5,
		       duration = $6,
		       content = $7,
		       is_published = $8,
		       updated_at = $9
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.InstructorID,
		course.Category,
		course.Duration,
		content,
		course.IsPublished,
		course.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) listCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func (r *CoursePostgres) ListCourses(ctx context.Context) ([]models.Course, error) {
	return r.listCourses(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
}

func (r *CoursePostgres) ListCoursesByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE instructor_id = $1 ORDER BY created_at DESC`
	return r.listCourses(ctx, query, instructorID)
}

func (r *CoursePostgres) ListPublishedCourses(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE is_published ORDER BY created_at DESC`
	return r.listCourses(ctx, query)
}
