package models

import (
	"fmt"
	"time"
)

// RequestStatus is the review lifecycle state of a student request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusNeedsInfo RequestStatus = "needs_info"
)

// statusTransitions encodes the allowed review transitions. A request leaves
// "pending" exactly once; "needs_info" re-enters review; a final decision may be
// overwritten by the opposite decision (last write wins, no history is kept).
var statusTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:   {StatusApproved, StatusRejected, StatusNeedsInfo},
	StatusNeedsInfo: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusRejected},
	StatusRejected:  {StatusApproved},
}

// ParseRequestStatus validates a raw status string.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	switch s := RequestStatus(raw); s {
	case StatusPending, StatusApproved, StatusRejected, StatusNeedsInfo:
		return s, nil
	default:
		return "", fmt.Errorf("unknown request status %q", raw)
	}
}

// CanTransitionTo reports whether a request in status s may move to target.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// StudentRequest defines the reviewable request model based on the
// 'student_requests' table (the second, review-dashboard module).
type StudentRequest struct {
	ID          int64         `json:"id" db:"id"`
	RequestCode string        `json:"request_code" db:"request_code" example:"REQ-483920"` // Human-readable code, display only
	StudentName string        `json:"student_name" db:"student_name"`
	StudentID   string        `json:"student_id" db:"student_id"`
	CourseName  string        `json:"course_name" db:"course_name"`
	RequestType string        `json:"request_type" db:"request_type"`
	Description string        `json:"description" db:"description"`
	Status      RequestStatus `json:"status" db:"status" example:"pending"`
	Feedback    string        `json:"feedback" db:"feedback"` // Reviewer feedback, overwritten on each transition
	SubmittedAt time.Time     `json:"submitted_at" db:"submitted_at"`

	// Attachments are hydrated on detail reads only, never on list queries.
	Attachments []*RequestAttachment `json:"attachments,omitempty" db:"-"`
}

// RequestAttachment is a file uploaded alongside a student request, based on
// the 'request_attachments' table. The bytes live on disk next to the license
// images; only the generated filename is stored.
type RequestAttachment struct {
	ID         int64     `json:"id" db:"id"`
	RequestID  int64     `json:"-" db:"request_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	FileURL    string    `json:"file_url,omitempty" db:"-"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}
