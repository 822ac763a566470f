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

type SubmissionPostgres struct {
	db *pgxpool.Pool
}

func NewSubmissionPostgres(db *pgxpool.Pool) *SubmissionPostgres {
	return &SubmissionPostgres{db: db}
}

const submissionColumns = `id, assignment_id, student_id, content, attachments, submitted_at, grade, feedback, graded_at, graded_by, status`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	s := &models.Submission{}
	var attachments []byte
	err := row.Scan(
		&s.ID,
		&s.AssignmentID,
		&s.StudentID,
		&s.Content,
		&attachments,
		&s.SubmittedAt,
		&s.Grade,
		&s.Feedback,
		&s.GradedAt,
		&s.GradedByID,
		&s.Status,
	)
	if err != nil {
		return nil, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &s.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}
	return s, nil
}

// NewSubmission races to the UNIQUE(assignment_id, student_id) index; duplicate
// submits surface as ErrAlreadySubmitted.
func (r *SubmissionPostgres) NewSubmission(ctx context.Context, submission *models.Submission) (uuid.UUID, error) {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	attachments, err := json.Marshal(submission.Attachments)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = r.db.QueryRow(ctx, query,
		submission.ID,
		submission.AssignmentID,
		submission.StudentID,
		submission.Content,
		attachments,
		submission.SubmittedAt,
		submission.Grade,
		submission.Feedback,
		submission.GradedAt,
		submission.GradedByID,
		submission.Status,
	).Scan(&submission.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, app_errors.ErrAlreadySubmitted
		}
		return uuid.Nil, err
	}
	return submission.ID, nil
}

func (r *SubmissionPostgres) SubmissionByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	submission, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// UpdateContent is a single-row read-modify-write; a concurrent grade wins or
// loses by commit order (last writer wins, accepted).
func (r *SubmissionPostgres) UpdateContent(ctx context.Context, id uuid.UUID, content string, attachmentList []models.Attachment, submittedAt time.Time) error {
	attachments, err := json.Marshal(attachmentList)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}
	query := `
		UPDATE submissions
		   SET content = $2, attachments = $3, submitted_at = $4
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, id, content, attachments, submittedAt)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionPostgres) SetGrade(ctx context.Context, id uuid.UUID, grade int, feedback string, gradedBy uuid.UUID, gradedAt time.Time) error {
	query := `
		UPDATE submissions
		   SET grade = $2, feedback = $3, graded_by = $4, graded_at = $5, status = $6
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, id, grade, feedback, gradedBy, gradedAt, models.SubmissionGraded)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionPostgres) UpdateAttachments(ctx context.Context, id uuid.UUID, attachmentList []models.Attachment) error {
	attachments, err := json.Marshal(attachmentList)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, `UPDATE submissions SET attachments = $2 WHERE id = $1`, id, attachments)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionPostgres) listSubmissions(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *submission)
	}
	return submissions, rows.Err()
}

func (r *SubmissionPostgres) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	return r.listSubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at DESC`)
}

func (r *SubmissionPostgres) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC`
	return r.listSubmissions(ctx, query, studentID)
}

func (r *SubmissionPostgres) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at DESC`
	return r.listSubmissions(ctx, query, assignmentID)
}

func (r *SubmissionPostgres) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Submission, error) {
	query := `
		SELECT s.id, s.assignment_id, s.student_id, s.content, s.attachments, s.submitted_at,
		       s.grade, s.feedback, s.graded_at, s.graded_by, s.status
		  FROM submissions s
		 INNER JOIN assignments a ON a.id = s.assignment_id
		 WHERE a.instructor_id = $1
		 ORDER BY s.submitted_at DESC
	`
	return r.listSubmissions(ctx, query, instructorID)
}
