package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/logger"
)

const requestColumns = `id, request_code, student_name, student_id, course_name,
		request_type, description, status, feedback, submitted_at`

// RequestRepository handles database operations for student requests
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{
		db: db,
	}
}

// Create inserts a new student request in the pending state.
func (r *RequestRepository) Create(ctx context.Context, req *models.StudentRequest) error {
	query := `
		INSERT INTO student_requests
			(request_code, student_name, student_id, course_name, request_type, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, submitted_at
	`

	err := r.db.QueryRow(ctx, query,
		req.RequestCode,
		req.StudentName,
		req.StudentID,
		req.CourseName,
		req.RequestType,
		req.Description,
		req.Status,
	).Scan(&req.ID, &req.SubmittedAt)
	if err != nil {
		logger.Error().Err(err).Str("requestCode", req.RequestCode).Msg("Error creating student request")
		return fmt.Errorf("error creating request: %w", err)
	}

	return nil
}

// GetAll retrieves student requests, newest first. Empty filter values
// match everything.
func (r *RequestRepository) GetAll(ctx context.Context, status models.RequestStatus, requestType string) ([]*models.StudentRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM student_requests
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR request_type = $2)
		ORDER BY submitted_at DESC, id DESC
	`, requestColumns)

	rows, err := r.db.Query(ctx, query, string(status), requestType)
	if err != nil {
		return nil, fmt.Errorf("error retrieving requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.StudentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request rows: %w", err)
	}

	return requests, nil
}

// GetByID retrieves a student request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.StudentRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM student_requests
		WHERE id = $1
	`, requestColumns)

	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, err
	}

	return req, nil
}

// UpdateStatus applies a review decision in a single statement. The status
// column is only changed when the transition is already validated by the
// caller; feedback is always overwritten.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, feedback string) (*models.StudentRequest, error) {
	query := `
		UPDATE student_requests
		SET status = $2, feedback = $3
		WHERE id = $1
		RETURNING ` + requestColumns

	req, err := scanRequest(r.db.QueryRow(ctx, query, id, status, feedback))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestNotFound
		}
		logger.Error().Err(err).Int64("requestID", id).Msg("Error updating request status")
		return nil, err
	}

	return req, nil
}

// AddAttachments records the stored filenames of a request's supporting
// documents. The files themselves are already on disk at this point.
func (r *RequestRepository) AddAttachments(ctx context.Context, requestID int64, fileNames []string) error {
	query := `
		INSERT INTO request_attachments (request_id, file_name)
		VALUES ($1, $2)
	`

	for _, fileName := range fileNames {
		if _, err := r.db.Exec(ctx, query, requestID, fileName); err != nil {
			logger.Error().Err(err).Int64("requestID", requestID).Str("file", fileName).Msg("Error recording attachment")
			return fmt.Errorf("error recording attachment: %w", err)
		}
	}

	return nil
}

// GetAttachments retrieves a request's attachments in upload order.
func (r *RequestRepository) GetAttachments(ctx context.Context, requestID int64) ([]*models.RequestAttachment, error) {
	query := `
		SELECT id, request_id, file_name, uploaded_at
		FROM request_attachments
		WHERE request_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*models.RequestAttachment
	for rows.Next() {
		var att models.RequestAttachment
		if err := rows.Scan(&att.ID, &att.RequestID, &att.FileName, &att.UploadedAt); err != nil {
			return nil, fmt.Errorf("error scanning attachment row: %w", err)
		}
		attachments = append(attachments, &att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachment rows: %w", err)
	}

	return attachments, nil
}

// DistinctTypes returns the request types currently present, for dashboard
// filter dropdowns.
func (r *RequestRepository) DistinctTypes(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT request_type
		FROM student_requests
		ORDER BY request_type
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving request types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("error scanning request type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request type rows: %w", err)
	}

	return types, nil
}

func scanRequest(row rowScanner) (*models.StudentRequest, error) {
	var req models.StudentRequest
	err := row.Scan(
		&req.ID,
		&req.RequestCode,
		&req.StudentName,
		&req.StudentID,
		&req.CourseName,
		&req.RequestType,
		&req.Description,
		&req.Status,
		&req.Feedback,
		&req.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning request row: %w", err)
	}
	return &req, nil
}
