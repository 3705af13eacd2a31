package dto

// CreateStudentRequestRequest represents a new reviewable student request.
// Attachments are optional supporting documents, each a base64 data URI.
type CreateStudentRequestRequest struct {
	StudentName string   `json:"student_name" binding:"required"`
	StudentID   string   `json:"student_id" binding:"required"`
	CourseName  string   `json:"course_name" binding:"required"`
	RequestType string   `json:"request_type" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Attachments []string `json:"attachments"`
}

// UpdateStatusForm is the form-encoded body of the status transition endpoint.
type UpdateStatusForm struct {
	Status   string `form:"status" binding:"required"`
	Feedback string `form:"feedback"`
}

// UpdateStatusResponse mirrors the dashboard's expected `{success: bool}` shape.
type UpdateStatusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
