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

type AssignmentPostgres struct {
	db *pgxpool.Pool
}

func NewAssignmentPostgres(db *pgxpool.Pool) *AssignmentPostgres {
	return &AssignmentPostgres{db: db}
}

const assignmentColumns = `id, title, description, course_id, instructor_id, due_date, total_points, attachments, created_at, updated_at`

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	a := &models.Assignment{}
	var attachments []byte
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.CourseID,
		&a.InstructorID,
		&a.DueDate,
		&a.TotalPoints,
		&attachments,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &a.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}
	return a, nil
}

func (r *AssignmentPostgres) NewAssignment(ctx context.Context, assignment *models.Assignment) (uuid.UUID, error) {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if assignment.CreatedAt.IsZero() {
		now := time.Now().UTC()
		assignment.CreatedAt = now
		assignment.UpdatedAt = now
	}

	attachments, err := json.Marshal(assignment.Attachments)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = r.db.QueryRow(ctx, query,
		assignment.ID,
		assignment.Title,
		assignment.Description,
		assignment.CourseID,
		assignment.InstructorID,
		assignment.DueDate,
		assignment.TotalPoints,
		attachments,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	).Scan(&assignment.ID)
	if err != nil {
		return uuid.Nil, err
	}
	return assignment.ID, nil
}

func (r *AssignmentPostgres) AssignmentByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	assignment, err := scanAssignment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (r *AssignmentPostgres) UpdateAssignment(ctx context.Context, assignment *models.Assignment) error {
	if assignment.UpdatedAt.IsZero() {
		assignment.UpdatedAt = time.Now().UTC()
	}

	attachments, err := json.Marshal(assignment.Attachments)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		UPDATE assignments
		   SET title = $2,
		       description = $3,
		       due_date = $4,
		       total_points = $5,
		       attachments = $6,
		       updated_at = $7
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		assignment.ID,
		assignment.Title,
		assignment.Description,
		assignment.DueDate,
		assignment.TotalPoints,
		attachments,
		assignment.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentPostgres) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentPostgres) listAssignments(ctx context.Context, query string, args ...any) ([]models.Assignment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}
	return assignments, rows.Err()
}

func (r *AssignmentPostgres) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	return r.listAssignments(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY due_date`)
}

func (r *AssignmentPostgres) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE instructor_id = $1 ORDER BY due_date`
	return r.listAssignments(ctx, query, instructorID)
}

func (r *AssignmentPostgres) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE course_id = $1 ORDER BY due_date`
	return r.listAssignments(ctx, query, courseID)
}

func (r *AssignmentPostgres) ListByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]models.Assignment, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE course_id = ANY($1) ORDER BY due_date`
	return r.listAssignments(ctx, query, courseIDs)
}
