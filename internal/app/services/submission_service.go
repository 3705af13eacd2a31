package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/filestorage"
	"github.com/scedev/parkpermit/internal/pkg/logger"
	"github.com/scedev/parkpermit/internal/pkg/validation"
)

// submissionState tracks a single submission attempt through its lifecycle.
// A submission is accepted only after both the image write and the database
// insert succeed; any failure after the image write rolls the file back.
type submissionState int

const (
	submissionDraft submissionState = iota
	submissionSubmitting
	submissionAccepted
	submissionRejected
)

func (s submissionState) String() string {
	switch s {
	case submissionDraft:
		return "draft"
	case submissionSubmitting:
		return "submitting"
	case submissionAccepted:
		return "accepted"
	case submissionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// submissionTransitions encodes the legal moves: a draft either starts
// submitting or is rejected outright; a submission in flight is accepted or
// rejected. The terminal states have no exits.
var submissionTransitions = map[submissionState][]submissionState{
	submissionDraft:      {submissionSubmitting, submissionRejected},
	submissionSubmitting: {submissionAccepted, submissionRejected},
}

// advance moves the submission to the target state. An illegal move is a
// programming error; it leaves the state unchanged and is logged.
func (s submissionState) advance(to submissionState) submissionState {
	for _, allowed := range submissionTransitions[s] {
		if allowed == to {
			return to
		}
	}
	logger.Error().Str("from", s.String()).Str("to", to.String()).Msg("Illegal submission state transition")
	return s
}

// applicationStore is the slice of the application repository the service needs.
type applicationStore interface {
	Create(ctx context.Context, app *models.ParkingApplication) error
	GetAll(ctx context.Context) ([]*models.ParkingApplication, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.ParkingApplication, error)
	ReplaceByStudentID(ctx context.Context, studentID string, app *models.ParkingApplication, expectedRevision int) (*models.ParkingApplication, error)
}

// licenseStore persists decoded license images.
type licenseStore interface {
	SaveLicense(data []byte, studentID, extension string) (string, error)
	Remove(fileName string) error
}

// SubmissionService defines the interface for parking application operations
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.ApplicationPayload) (*models.ParkingApplication, error)
	ListApplications(ctx context.Context) ([]*models.ParkingApplication, error)
	GetApplication(ctx context.Context, studentID string) (*models.ParkingApplication, error)
	ReplaceApplication(ctx context.Context, studentID string, payload dto.ApplicationPayload, revision int) (*models.ParkingApplication, error)
}

// submissionServiceImpl implements the SubmissionService interface
type submissionServiceImpl struct {
	applications applicationStore
	licenses     licenseStore
}

// NewSubmissionService creates a new submission service instance
func NewSubmissionService(applications applicationStore, licenses licenseStore) SubmissionService {
	return &submissionServiceImpl{
		applications: applications,
		licenses:     licenses,
	}
}

// validatePayload checks the business fields shared by submit and replace.
// requireImage is false on replace, where the stored image is kept. Every
// empty field is reported at once so the form can flag them all in one pass.
func validatePayload(payload dto.ApplicationPayload, requireImage bool) error {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", payload.FirstName},
		{"last_name", payload.LastName},
		{"email", payload.Email},
		{"student_id", payload.StudentID},
		{"phone_number", payload.PhoneNumber},
		{"department", payload.Department},
		{"car_type", payload.CarType},
		{"car_number", payload.CarNumber},
	}

	missing := dto.NewValidationErrors()
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing.AddError(field.name, fmt.Sprintf("%s is required", field.name))
		}
	}
	if requireImage && strings.TrimSpace(payload.LicenseImage) == "" {
		missing.AddError("license_image", "license_image is required")
	}
	if missing.HasErrors() {
		return apperrors.NewValidationError("all fields are required").
			WithDetails(map[string]interface{}{"fields": missing.Errors})
	}

	if result := validation.ValidateStudentID(payload.StudentID); !result.Valid {
		return apperrors.NewValidationError(result.Message)
	}
	if result := validation.ValidateCampusEmail(payload.Email); !result.Valid {
		return apperrors.NewValidationError(result.Message)
	}

	return nil
}

// Submit validates a new application, stores its license image and persists
// the record. The image write happens first; if the insert then fails the
// saved file is removed so no orphan is left behind.
func (s *submissionServiceImpl) Submit(ctx context.Context, payload dto.ApplicationPayload) (*models.ParkingApplication, error) {
	state := submissionDraft

	if err := validatePayload(payload, true); err != nil {
		state = state.advance(submissionRejected)
		logger.Debug().Str("state", state.String()).Str("studentID", payload.StudentID).Msg("Submission rejected during validation")
		return nil, err
	}

	imageData, extension, err := filestorage.DecodeDataURI(payload.LicenseImage)
	if err != nil {
		state = state.advance(submissionRejected)
		logger.Debug().Str("state", state.String()).Msg("Submission rejected, license image not decodable")
		return nil, err
	}

	state = state.advance(submissionSubmitting)

	fileName, err := s.licenses.SaveLicense(imageData, payload.StudentID, extension)
	if err != nil {
		logger.Error().Err(err).Str("studentID", payload.StudentID).Msg("Failed to store license image")
		return nil, fmt.Errorf("error storing license image: %w", err)
	}

	app := &models.ParkingApplication{
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Email:        payload.Email,
		StudentID:    payload.StudentID,
		PhoneNumber:  payload.PhoneNumber,
		Department:   payload.Department,
		CarType:      payload.CarType,
		CarNumber:    payload.CarNumber,
		LicenseImage: fileName,
	}

	if err := s.applications.Create(ctx, app); err != nil {
		// Roll the image back so the uploads directory matches the database.
		if removeErr := s.licenses.Remove(fileName); removeErr != nil {
			logger.Error().Err(removeErr).Str("file", fileName).Msg("Failed to remove orphaned license image")
		}
		state = state.advance(submissionRejected)
		logger.Error().Err(err).Str("state", state.String()).Str("studentID", payload.StudentID).Msg("Submission failed to persist")
		return nil, err
	}

	state = state.advance(submissionAccepted)
	logger.Info().
		Str("state", state.String()).
		Int64("applicationID", app.ID).
		Str("studentID", app.StudentID).
		Msg("Parking application submitted")

	return app, nil
}

// ListApplications returns every stored application.
func (s *submissionServiceImpl) ListApplications(ctx context.Context) ([]*models.ParkingApplication, error) {
	return s.applications.GetAll(ctx)
}

// GetApplication returns the application filed under a student number.
func (s *submissionServiceImpl) GetApplication(ctx context.Context, studentID string) (*models.ParkingApplication, error) {
	return s.applications.GetByStudentID(ctx, studentID)
}

// ReplaceApplication overwrites the business fields of an existing
// application. The stored license image is untouched; a stale revision is
// rejected so concurrent editors cannot silently overwrite each other.
func (s *submissionServiceImpl) ReplaceApplication(ctx context.Context, studentID string, payload dto.ApplicationPayload, revision int) (*models.ParkingApplication, error) {
	if err := validatePayload(payload, false); err != nil {
		return nil, err
	}

	app := &models.ParkingApplication{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		StudentID:   payload.StudentID,
		PhoneNumber: payload.PhoneNumber,
		Department:  payload.Department,
		CarType:     payload.CarType,
		CarNumber:   payload.CarNumber,
	}

	return s.applications.ReplaceByStudentID(ctx, studentID, app, revision)
}
