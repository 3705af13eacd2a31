package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/logger"
)

const exportSheetName = "Documents"

var exportHeaders = []string{
	"First Name",
	"Last Name",
	"Email",
	"Student ID",
	"Phone Number",
	"Study Department",
	"Car Type",
	"Car Number",
	"License Image",
}

// ExportService defines the interface for roster export operations
type ExportService interface {
	ExportApplicationsExcel(ctx context.Context) ([]byte, error)
}

// exportServiceImpl implements the ExportService interface
type exportServiceImpl struct {
	applications applicationStore
}

// NewExportService creates a new export service instance
func NewExportService(applications applicationStore) ExportService {
	return &exportServiceImpl{
		applications: applications,
	}
}

// ExportApplicationsExcel renders every stored application into a single
// worksheet. An empty roster is an error so the handler can answer 404
// instead of serving an empty workbook.
func (s *exportServiceImpl) ExportApplicationsExcel(ctx context.Context) ([]byte, error) {
	apps, err := s.applications.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, apperrors.ErrNoApplications
	}

	workbook, err := buildWorkbook(apps)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build Excel export")
		return nil, err
	}

	return workbook, nil
}

func buildWorkbook(apps []*models.ParkingApplication) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("error removing default sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("error writing header: %w", err)
		}
	}

	for i, app := range apps {
		row := []interface{}{
			app.FirstName,
			app.LastName,
			app.Email,
			app.StudentID,
			app.PhoneNumber,
			app.Department,
			app.CarType,
			app.CarNumber,
			app.LicenseImage,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
