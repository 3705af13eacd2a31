package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/dberrors"
	"github.com/scedev/parkpermit/internal/pkg/email"
	"github.com/scedev/parkpermit/internal/pkg/filestorage"
	"github.com/scedev/parkpermit/internal/pkg/logger"
)

// requestCodeAttempts bounds the retries on a request code collision.
const requestCodeAttempts = 3

// requestTypesCacheKey and its TTL cover the dashboard filter dropdown.
const (
	requestTypesCacheKey = "requests:types"
	requestTypesCacheTTL = time.Minute
)

// typeCache is a small string cache. A nil cache disables caching.
type typeCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// requestStore is the slice of the request repository the service needs.
type requestStore interface {
	Create(ctx context.Context, req *models.StudentRequest) error
	GetAll(ctx context.Context, status models.RequestStatus, requestType string) ([]*models.StudentRequest, error)
	GetByID(ctx context.Context, id int64) (*models.StudentRequest, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, feedback string) (*models.StudentRequest, error)
	AddAttachments(ctx context.Context, requestID int64, fileNames []string) error
	GetAttachments(ctx context.Context, requestID int64) ([]*models.RequestAttachment, error)
	DistinctTypes(ctx context.Context) ([]string, error)
}

// attachmentStore persists decoded supporting documents and resolves their
// public URLs.
type attachmentStore interface {
	SaveAttachment(data []byte, studentID, extension string) (string, error)
	Remove(fileName string) error
	URL(fileName string) string
}

// applicationFinder resolves a student's contact email for notifications.
type applicationFinder interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.ParkingApplication, error)
}

// ReviewService defines the interface for the student request review lifecycle
type ReviewService interface {
	CreateRequest(ctx context.Context, req dto.CreateStudentRequestRequest) (*models.StudentRequest, error)
	ListRequests(ctx context.Context, status, requestType string) ([]*models.StudentRequest, error)
	GetRequest(ctx context.Context, id int64) (*models.StudentRequest, error)
	UpdateStatus(ctx context.Context, id int64, rawStatus, feedback string) (*models.StudentRequest, error)
	RequestTypes(ctx context.Context) ([]string, error)
}

// reviewServiceImpl implements the ReviewService interface
type reviewServiceImpl struct {
	requests     requestStore
	applications applicationFinder
	files        attachmentStore
	notifier     email.NotificationService
	cache        typeCache
}

// NewReviewService creates a new review service instance
func NewReviewService(requests requestStore, applications applicationFinder, files attachmentStore, notifier email.NotificationService, cache typeCache) ReviewService {
	return &reviewServiceImpl{
		requests:     requests,
		applications: applications,
		files:        files,
		notifier:     notifier,
		cache:        cache,
	}
}

// CreateRequest registers a new student request in the pending state and
// assigns it a display code. Codes are random, so a collision with the
// unique index is retried a few times. Supporting documents are decoded and
// written to disk first; if the request then fails to persist the files are
// removed, mirroring the license image compensation on submission.
func (s *reviewServiceImpl) CreateRequest(ctx context.Context, payload dto.CreateStudentRequestRequest) (*models.StudentRequest, error) {
	if result := validateRequestPayload(payload); result != nil {
		return nil, result
	}

	// All attachments must decode before anything touches disk.
	type decoded struct {
		data []byte
		ext  string
	}
	var docs []decoded
	for _, uri := range payload.Attachments {
		data, ext, err := filestorage.DecodeDataURI(uri)
		if err != nil {
			return nil, err
		}
		docs = append(docs, decoded{data: data, ext: ext})
	}

	var fileNames []string
	for _, doc := range docs {
		fileName, err := s.files.SaveAttachment(doc.data, payload.StudentID, doc.ext)
		if err != nil {
			s.removeFiles(fileNames)
			return nil, fmt.Errorf("error storing attachment: %w", err)
		}
		fileNames = append(fileNames, fileName)
	}

	req := &models.StudentRequest{
		StudentName: payload.StudentName,
		StudentID:   payload.StudentID,
		CourseName:  payload.CourseName,
		RequestType: payload.RequestType,
		Description: payload.Description,
		Status:      models.StatusPending,
	}

	var err error
	for attempt := 0; attempt < requestCodeAttempts; attempt++ {
		req.RequestCode = fmt.Sprintf("REQ-%06d", rand.Intn(1000000))
		err = s.requests.Create(ctx, req)
		if err == nil {
			if attachErr := s.requests.AddAttachments(ctx, req.ID, fileNames); attachErr != nil {
				s.removeFiles(fileNames)
				return nil, attachErr
			}
			req.Attachments = s.attachmentList(req.ID, fileNames)

			if s.cache != nil {
				// A new type may have appeared; let the dropdown refresh.
				if cacheErr := s.cache.Delete(ctx, requestTypesCacheKey); cacheErr != nil {
					logger.Debug().Err(cacheErr).Msg("Could not invalidate request type cache")
				}
			}
			logger.Info().
				Str("requestCode", req.RequestCode).
				Str("requestType", req.RequestType).
				Int("attachments", len(fileNames)).
				Msg("Student request created")
			return req, nil
		}
		if !dberrors.IsUniqueViolation(err) {
			s.removeFiles(fileNames)
			return nil, err
		}
	}
	s.removeFiles(fileNames)
	return nil, fmt.Errorf("could not allocate a request code: %w", err)
}

// removeFiles rolls saved attachments back so the uploads directory matches
// the database. Failures are logged; an orphaned file is acceptable.
func (s *reviewServiceImpl) removeFiles(fileNames []string) {
	for _, fileName := range fileNames {
		if err := s.files.Remove(fileName); err != nil {
			logger.Error().Err(err).Str("file", fileName).Msg("Failed to remove orphaned attachment")
		}
	}
}

func (s *reviewServiceImpl) attachmentList(requestID int64, fileNames []string) []*models.RequestAttachment {
	var out []*models.RequestAttachment
	for _, fileName := range fileNames {
		out = append(out, &models.RequestAttachment{
			RequestID: requestID,
			FileName:  fileName,
			FileURL:   s.files.URL(fileName),
		})
	}
	return out
}

func validateRequestPayload(payload dto.CreateStudentRequestRequest) error {
	if payload.StudentName == "" || payload.StudentID == "" || payload.CourseName == "" ||
		payload.RequestType == "" || payload.Description == "" {
		return apperrors.NewValidationError("all request fields are required")
	}
	return nil
}

// ListRequests returns requests newest first, optionally narrowed by status
// and request type.
func (s *reviewServiceImpl) ListRequests(ctx context.Context, status, requestType string) ([]*models.StudentRequest, error) {
	var parsed models.RequestStatus
	if status != "" {
		var err error
		parsed, err = models.ParseRequestStatus(status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	return s.requests.GetAll(ctx, parsed, requestType)
}

// GetRequest returns a single request by ID with its attachments hydrated,
// for the detail view.
func (s *reviewServiceImpl) GetRequest(ctx context.Context, id int64) (*models.StudentRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attachments, err := s.requests.GetAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, att := range attachments {
		att.FileURL = s.files.URL(att.FileName)
	}
	req.Attachments = attachments

	return req, nil
}

// UpdateStatus applies a review decision. The transition must be allowed
// from the request's current status; the feedback text is overwritten on
// every decision. When the student has a parking application on file, a
// status notification is sent to its email on a best effort basis.
func (s *reviewServiceImpl) UpdateStatus(ctx context.Context, id int64, rawStatus, feedback string) (*models.StudentRequest, error) {
	target, err := models.ParseRequestStatus(rawStatus)
	if err != nil {
		return nil, apperrors.ErrInvalidStatus
	}

	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(target) {
		logger.Warn().
			Int64("requestID", id).
			Str("from", string(current.Status)).
			Str("to", string(target)).
			Msg("Rejected status transition")
		return nil, apperrors.ErrTransitionNotAllowed
	}

	updated, err := s.requests.UpdateStatus(ctx, id, target, feedback)
	if err != nil {
		return nil, err
	}

	s.notifyStudent(ctx, updated)

	return updated, nil
}

func (s *reviewServiceImpl) notifyStudent(ctx context.Context, req *models.StudentRequest) {
	app, err := s.applications.GetByStudentID(ctx, req.StudentID)
	if err != nil {
		// No application on file means no address to notify. Not an error.
		if !errors.Is(err, apperrors.ErrApplicationNotFound) {
			logger.Warn().Err(err).Str("studentID", req.StudentID).Msg("Could not resolve student email for notification")
		}
		return
	}

	if err := s.notifier.SendStatusEmail(app.Email, req.StudentName, req.RequestCode, string(req.Status), req.Feedback); err != nil {
		logger.Warn().Err(err).Str("requestCode", req.RequestCode).Msg("Failed to send status notification")
	}
}

// RequestTypes lists the distinct request types on file. The list feeds a
// filter dropdown, so a short cache is fine.
func (s *reviewServiceImpl) RequestTypes(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, requestTypesCacheKey); err == nil && cached != "" {
			var types []string
			if err := json.Unmarshal([]byte(cached), &types); err == nil {
				return types, nil
			}
		}
	}

	types, err := s.requests.DistinctTypes(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(types) > 0 {
		if encoded, err := json.Marshal(types); err == nil {
			if cacheErr := s.cache.Set(ctx, requestTypesCacheKey, string(encoded), requestTypesCacheTTL); cacheErr != nil {
				logger.Debug().Err(cacheErr).Msg("Could not cache request types")
			}
		}
	}

	return types, nil
}
