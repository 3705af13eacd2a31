package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/app/services"
	"github.com/scedev/parkpermit/internal/middleware"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApplicationController handles parking application operations
type ApplicationController struct {
	submissionService services.SubmissionService
	exportService     services.ExportService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(submissionService services.SubmissionService, exportService services.ExportService) *ApplicationController {
	return &ApplicationController{
		submissionService: submissionService,
		exportService:     exportService,
	}
}

// SubmitApplication handles a new parking application
// @Summary Submit a parking application
// @Description Validates the application, stores the license image and persists the record
// @Tags documents
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Application form"
// @Success 201 {object} dto.ApplicationCreatedResponse "Application saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid application data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /documents [post]
func (c *ApplicationController) SubmitApplication(ctx *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	app, err := c.submissionService.Submit(ctx, req.ParkingApplication)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ApplicationCreatedResponse{
		Message:  "Data received and saved successfully!",
		Document: app,
	})
}

// ListApplications returns every stored application
// @Summary List parking applications
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Applications retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /documents [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	apps, err := c.submissionService.ListApplications(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      apps,
		Timestamp: time.Now(),
	})
}

// ExportApplications streams the roster as an Excel workbook
// @Summary Export applications to Excel
// @Tags documents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Excel workbook"
// @Failure 404 {object} dto.ErrorResponse "No applications to export"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /documents/excel [get]
func (c *ApplicationController) ExportApplications(ctx *gin.Context) {
	workbook, err := c.exportService.ExportApplicationsExcel(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="Documents.xlsx"`)
	ctx.Header("Content-Length", fmt.Sprintf("%d", len(workbook)))
	ctx.Data(http.StatusOK, excelContentType, workbook)
}

// GetApplication returns the application filed under a student number
// @Summary Get an application by student ID
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param student_id path string true "Student ID"
// @Success 200 {object} dto.APIResponse "Application retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /documents/{student_id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	app, err := c.submissionService.GetApplication(ctx, ctx.Param("student_id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      app,
		Timestamp: time.Now(),
	})
}

// ReplaceApplication overwrites an application's business fields
// @Summary Replace an application by student ID
// @Description Overwrites the record; the stored license image is kept. A stale revision is rejected with 409.
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student_id path string true "Student ID"
// @Param request body dto.ReplaceApplicationRequest true "Replacement fields"
// @Success 200 {object} dto.APIResponse "Application replaced successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid application data"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Revision conflict"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /documents/{student_id} [put]
func (c *ApplicationController) ReplaceApplication(ctx *gin.Context) {
	var req dto.ReplaceApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	app, err := c.submissionService.ReplaceApplication(ctx, ctx.Param("student_id"), req.ApplicationPayload, req.Revision)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      app,
		Timestamp: time.Now(),
	})
}
