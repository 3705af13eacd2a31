package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/app/services"
	"github.com/scedev/parkpermit/internal/middleware"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
)

// RequestController handles student request review operations
type RequestController struct {
	reviewService services.ReviewService
}

// NewRequestController creates a new RequestController
func NewRequestController(reviewService services.ReviewService) *RequestController {
	return &RequestController{
		reviewService: reviewService,
	}
}

// CreateRequest registers a new student request
// @Summary Create a student request
// @Tags requests
// @Accept json
// @Produce json
// @Param request body dto.CreateStudentRequestRequest true "Request details"
// @Success 201 {object} dto.APIResponse "Request created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /requests [post]
func (c *RequestController) CreateRequest(ctx *gin.Context) {
	var req dto.CreateStudentRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	created, err := c.reviewService.CreateRequest(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      created,
		Timestamp: time.Now(),
	})
}

// ListRequests returns requests for the review dashboard
// @Summary List student requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, approved, rejected, needs_info)
// @Param type query string false "Filter by request type"
// @Success 200 {object} dto.APIResponse "Requests retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Unknown status filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /requests [get]
func (c *RequestController) ListRequests(ctx *gin.Context) {
	requests, err := c.reviewService.ListRequests(ctx, ctx.Query("status"), ctx.Query("type"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      requests,
		Timestamp: time.Now(),
	})
}

// RequestTypes lists the distinct request types on file
// @Summary List request types
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Types retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /requests/types [get]
func (c *RequestController) RequestTypes(ctx *gin.Context) {
	types, err := c.reviewService.RequestTypes(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      types,
		Timestamp: time.Now(),
	})
}

// GetRequest returns a single request
// @Summary Get a student request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse "Request retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /requests/{id} [get]
func (c *RequestController) GetRequest(ctx *gin.Context) {
	id, ok := c.requestID(ctx)
	if !ok {
		return
	}

	req, err := c.reviewService.GetRequest(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      req,
		Timestamp: time.Now(),
	})
}

// GetRequestLegacy serves the older dashboard route, which expects the bare
// request object without the response envelope.
func (c *RequestController) GetRequestLegacy(ctx *gin.Context) {
	id, ok := c.requestID(ctx)
	if !ok {
		return
	}

	req, err := c.reviewService.GetRequest(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, req)
}

// UpdateStatus applies a review decision posted by the dashboard form. The
// dashboard only reads the success flag, so failures answer in the same
// shape instead of the usual error envelope.
func (c *RequestController) UpdateStatus(ctx *gin.Context) {
	id, ok := c.requestID(ctx)
	if !ok {
		return
	}

	var form dto.UpdateStatusForm
	if err := ctx.ShouldBind(&form); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.UpdateStatusResponse{Success: false, Error: "status is required"})
		return
	}

	_, err := c.reviewService.UpdateStatus(ctx, id, form.Status, form.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRequestNotFound):
			ctx.JSON(http.StatusNotFound, dto.UpdateStatusResponse{Success: false, Error: "request not found"})
		case errors.Is(err, apperrors.ErrInvalidStatus):
			ctx.JSON(http.StatusBadRequest, dto.UpdateStatusResponse{Success: false, Error: "unknown status"})
		case errors.Is(err, apperrors.ErrTransitionNotAllowed):
			ctx.JSON(http.StatusConflict, dto.UpdateStatusResponse{Success: false, Error: "status transition not allowed"})
		default:
			ctx.JSON(http.StatusInternalServerError, dto.UpdateStatusResponse{Success: false, Error: "internal error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, dto.UpdateStatusResponse{Success: true})
}

func (c *RequestController) requestID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request ID")
		errorDetail = errorDetail.WithDetails("Request ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
