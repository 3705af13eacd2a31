package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
)

// fakeApplicationStore is an in-memory applicationStore.
type fakeApplicationStore struct {
	apps      []*models.ParkingApplication
	nextID    int64
	createErr error
}

func (f *fakeApplicationStore) Create(_ context.Context, app *models.ParkingApplication) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	app.ID = f.nextID
	app.Revision = 1
	f.apps = append(f.apps, app)
	return nil
}

func (f *fakeApplicationStore) GetAll(_ context.Context) ([]*models.ParkingApplication, error) {
	return f.apps, nil
}

func (f *fakeApplicationStore) GetByStudentID(_ context.Context, studentID string) (*models.ParkingApplication, error) {
	for _, app := range f.apps {
		if app.StudentID == studentID {
			return app, nil
		}
	}
	return nil, apperrors.ErrApplicationNotFound
}

func (f *fakeApplicationStore) ReplaceByStudentID(_ context.Context, studentID string, in *models.ParkingApplication, expectedRevision int) (*models.ParkingApplication, error) {
	app, err := f.GetByStudentID(context.Background(), studentID)
	if err != nil {
		return nil, err
	}
	if expectedRevision != 0 && expectedRevision != app.Revision {
		return nil, apperrors.ErrRevisionMismatch
	}
	app.FirstName = in.FirstName
	app.LastName = in.LastName
	app.Email = in.Email
	app.StudentID = in.StudentID
	app.PhoneNumber = in.PhoneNumber
	app.Department = in.Department
	app.CarType = in.CarType
	app.CarNumber = in.CarNumber
	app.Revision++
	return app, nil
}

// fakeLicenseStore records saves and removals.
type fakeLicenseStore struct {
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeLicenseStore) SaveLicense(data []byte, studentID, extension string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	name := fmt.Sprintf("license-%s-%d.%s", studentID, len(f.saved), extension)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeLicenseStore) Remove(fileName string) error {
	f.removed = append(f.removed, fileName)
	return nil
}

func validApplicationPayload() dto.ApplicationPayload {
	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
	return dto.ApplicationPayload{
		FirstName:    "Idan",
		LastName:     "Levi",
		Email:        "idanle1@sce.edu",
		StudentID:    "123456789",
		PhoneNumber:  "0501234567",
		Department:   "Software Engineering",
		CarType:      "Mazda 3",
		CarNumber:    "12-345-67",
		LicenseImage: image,
	}
}

func TestSubmitStoresImageAndRecord(t *testing.T) {
	store := &fakeApplicationStore{}
	files := &fakeLicenseStore{}
	svc := NewSubmissionService(store, files)

	app, err := svc.Submit(context.Background(), validApplicationPayload())
	require.NoError(t, err)

	assert.Equal(t, int64(1), app.ID)
	assert.Equal(t, 1, app.Revision)
	assert.Len(t, files.saved, 1)
	assert.Equal(t, files.saved[0], app.LicenseImage)
	assert.Empty(t, files.removed)
}

func TestSubmitMissingFieldDoesNotPersist(t *testing.T) {
	fields := []func(*dto.ApplicationPayload){
		func(p *dto.ApplicationPayload) { p.FirstName = "" },
		func(p *dto.ApplicationPayload) { p.LastName = "" },
		func(p *dto.ApplicationPayload) { p.Email = "" },
		func(p *dto.ApplicationPayload) { p.StudentID = "" },
		func(p *dto.ApplicationPayload) { p.PhoneNumber = "" },
		func(p *dto.ApplicationPayload) { p.Department = "" },
		func(p *dto.ApplicationPayload) { p.CarType = "" },
		func(p *dto.ApplicationPayload) { p.CarNumber = "" },
		func(p *dto.ApplicationPayload) { p.LicenseImage = "" },
	}

	for i, blank := range fields {
		store := &fakeApplicationStore{}
		files := &fakeLicenseStore{}
		svc := NewSubmissionService(store, files)

		payload := validApplicationPayload()
		blank(&payload)

		_, err := svc.Submit(context.Background(), payload)
		require.Error(t, err, "field %d", i)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "field %d", i)
		assert.Empty(t, store.apps, "field %d", i)
		assert.Empty(t, files.saved, "field %d", i)
	}
}

func TestSubmitReportsEveryMissingField(t *testing.T) {
	svc := NewSubmissionService(&fakeApplicationStore{}, &fakeLicenseStore{})

	_, err := svc.Submit(context.Background(), dto.ApplicationPayload{})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	require.NotNil(t, custom.Details)

	fields, ok := custom.Details["fields"].([]dto.ErrorDetail)
	require.True(t, ok)
	require.Len(t, fields, 9)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "first_name")
	assert.Contains(t, names, "car_number")
	assert.Contains(t, names, "license_image")
}

func TestSubmissionStateAdvance(t *testing.T) {
	state := submissionDraft

	state = state.advance(submissionSubmitting)
	assert.Equal(t, submissionSubmitting, state)

	state = state.advance(submissionAccepted)
	assert.Equal(t, submissionAccepted, state)

	// Terminal states have no exits.
	assert.Equal(t, submissionAccepted, state.advance(submissionRejected))

	// A draft cannot be accepted without passing through submitting.
	assert.Equal(t, submissionDraft, submissionDraft.advance(submissionAccepted))
	assert.Equal(t, submissionRejected, submissionDraft.advance(submissionRejected))
}

func TestSubmitRejectsInvalidStudentID(t *testing.T) {
	svc := NewSubmissionService(&fakeApplicationStore{}, &fakeLicenseStore{})

	payload := validApplicationPayload()
	payload.StudentID = "12345"

	_, err := svc.Submit(context.Background(), payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmitRejectsNonCampusEmail(t *testing.T) {
	svc := NewSubmissionService(&fakeApplicationStore{}, &fakeLicenseStore{})

	payload := validApplicationPayload()
	payload.Email = "idan@gmail.com"

	_, err := svc.Submit(context.Background(), payload)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSubmitRejectsBadImageEncoding(t *testing.T) {
	store := &fakeApplicationStore{}
	files := &fakeLicenseStore{}
	svc := NewSubmissionService(store, files)

	payload := validApplicationPayload()
	payload.LicenseImage = "not a data uri"

	_, err := svc.Submit(context.Background(), payload)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEncoding)
	assert.Empty(t, files.saved)
	assert.Empty(t, store.apps)
}

func TestSubmitRemovesImageWhenInsertFails(t *testing.T) {
	store := &fakeApplicationStore{createErr: errors.New("connection lost")}
	files := &fakeLicenseStore{}
	svc := NewSubmissionService(store, files)

	_, err := svc.Submit(context.Background(), validApplicationPayload())
	require.Error(t, err)

	require.Len(t, files.saved, 1)
	require.Len(t, files.removed, 1)
	assert.Equal(t, files.saved[0], files.removed[0])
}

func TestReplaceApplicationBumpsRevision(t *testing.T) {
	store := &fakeApplicationStore{}
	svc := NewSubmissionService(store, &fakeLicenseStore{})

	created, err := svc.Submit(context.Background(), validApplicationPayload())
	require.NoError(t, err)

	payload := validApplicationPayload()
	payload.CarType = "Toyota Corolla"
	payload.LicenseImage = ""

	updated, err := svc.ReplaceApplication(context.Background(), created.StudentID, payload, created.Revision)
	require.NoError(t, err)

	assert.Equal(t, "Toyota Corolla", updated.CarType)
	assert.Equal(t, 2, updated.Revision)
	assert.Equal(t, created.LicenseImage, updated.LicenseImage, "replace must keep the stored image")
}

func TestReplaceApplicationStaleRevision(t *testing.T) {
	store := &fakeApplicationStore{}
	svc := NewSubmissionService(store, &fakeLicenseStore{})

	created, err := svc.Submit(context.Background(), validApplicationPayload())
	require.NoError(t, err)

	payload := validApplicationPayload()
	payload.LicenseImage = ""

	_, err = svc.ReplaceApplication(context.Background(), created.StudentID, payload, created.Revision+5)
	assert.ErrorIs(t, err, apperrors.ErrRevisionMismatch)
}

func TestReplaceApplicationUnknownStudent(t *testing.T) {
	svc := NewSubmissionService(&fakeApplicationStore{}, &fakeLicenseStore{})

	payload := validApplicationPayload()
	payload.LicenseImage = ""

	_, err := svc.ReplaceApplication(context.Background(), "987654321", payload, 0)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}
