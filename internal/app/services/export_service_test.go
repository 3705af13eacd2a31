package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
)

func TestExportEmptyRosterIsAnError(t *testing.T) {
	svc := NewExportService(&fakeApplicationStore{})

	_, err := svc.ExportApplicationsExcel(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoApplications)
}

func TestExportWorkbookContents(t *testing.T) {
	store := &fakeApplicationStore{}
	for i := 0; i < 3; i++ {
		store.apps = append(store.apps, &models.ParkingApplication{
			ID:           int64(i + 1),
			FirstName:    fmt.Sprintf("First%d", i),
			LastName:     fmt.Sprintf("Last%d", i),
			Email:        fmt.Sprintf("student%d@sce.edu", i),
			StudentID:    fmt.Sprintf("10000000%d", i),
			PhoneNumber:  "0501234567",
			Department:   "Software Engineering",
			CarType:      "Mazda 3",
			CarNumber:    "12-345-67",
			LicenseImage: fmt.Sprintf("license-10000000%d-1.png", i),
		})
	}
	svc := NewExportService(store)

	data, err := svc.ExportApplicationsExcel(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{exportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per application")

	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{
		"First1", "Last1", "student1@sce.edu", "100000001",
		"0501234567", "Software Engineering", "Mazda 3", "12-345-67",
		"license-100000001-1.png",
	}, rows[2])
}
