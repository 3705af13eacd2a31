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

const applicationColumns = `id, first_name, last_name, email, student_id, phone_number,
		department, car_type, car_number, license_image, revision, created_at, updated_at`

// ApplicationRepository handles database operations for parking applications
type ApplicationRepository struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
	}
}

// Create inserts a new application. The row always starts at revision 1.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.ParkingApplication) error {
	query := `
		INSERT INTO parking_applications
			(first_name, last_name, email, student_id, phone_number,
			 department, car_type, car_number, license_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, revision, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		app.FirstName,
		app.LastName,
		app.Email,
		app.StudentID,
		app.PhoneNumber,
		app.Department,
		app.CarType,
		app.CarNumber,
		app.LicenseImage,
	).Scan(&app.ID, &app.Revision, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Str("studentID", app.StudentID).Msg("Error creating parking application")
		return fmt.Errorf("error creating application: %w", err)
	}

	return nil
}

// GetAll retrieves every application ordered by ID.
func (r *ApplicationRepository) GetAll(ctx context.Context) ([]*models.ParkingApplication, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM parking_applications
		ORDER BY id
	`, applicationColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.ParkingApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}

	return apps, nil
}

// GetByStudentID retrieves the earliest application filed under a student
// number. The column is not unique so the lowest ID wins deterministically.
func (r *ApplicationRepository) GetByStudentID(ctx context.Context, studentID string) (*models.ParkingApplication, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM parking_applications
		WHERE student_id = $1
		ORDER BY id
		LIMIT 1
	`, applicationColumns)

	app, err := scanApplication(r.db.QueryRow(ctx, query, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}

	return app, nil
}

// ReplaceByStudentID overwrites the business fields of the application
// selected by GetByStudentID. When expectedRevision is positive the update
// only applies if the stored revision still matches; zero skips the check
// for clients that do not track revisions.
func (r *ApplicationRepository) ReplaceByStudentID(ctx context.Context, studentID string, app *models.ParkingApplication, expectedRevision int) (*models.ParkingApplication, error) {
	current, err := r.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE parking_applications
		SET first_name   = $2,
		    last_name    = $3,
		    email        = $4,
		    student_id   = $5,
		    phone_number = $6,
		    department   = $7,
		    car_type     = $8,
		    car_number   = $9,
		    revision     = revision + 1,
		    updated_at   = NOW()
		WHERE id = $1 AND ($10 = 0 OR revision = $10)
		RETURNING ` + applicationColumns

	updated, err := scanApplication(r.db.QueryRow(ctx, query,
		current.ID,
		app.FirstName,
		app.LastName,
		app.Email,
		app.StudentID,
		app.PhoneNumber,
		app.Department,
		app.CarType,
		app.CarNumber,
		expectedRevision,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row existed a moment ago, so the revision moved underneath us.
			return nil, apperrors.ErrRevisionMismatch
		}
		logger.Error().Err(err).Str("studentID", studentID).Msg("Error replacing parking application")
		return nil, fmt.Errorf("error replacing application: %w", err)
	}

	return updated, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.ParkingApplication, error) {
	var app models.ParkingApplication
	err := row.Scan(
		&app.ID,
		&app.FirstName,
		&app.LastName,
		&app.Email,
		&app.StudentID,
		&app.PhoneNumber,
		&app.Department,
		&app.CarType,
		&app.CarNumber,
		&app.LicenseImage,
		&app.Revision,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning application row: %w", err)
	}
	return &app, nil
}
