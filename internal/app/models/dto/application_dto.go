package dto

// ApplicationPayload carries the nine business fields of a parking application.
// On submission license_image is a base64 data URI; on reads it is the stored
// filename under the uploads directory.
type ApplicationPayload struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	StudentID    string `json:"student_id"`
	PhoneNumber  string `json:"phone_number"`
	Department   string `json:"department"`
	CarType      string `json:"car_type"`
	CarNumber    string `json:"car_number"`
	LicenseImage string `json:"license_image"`
}

// CreateApplicationRequest wraps the payload the way the browser form posts it.
type CreateApplicationRequest struct {
	ParkingApplication ApplicationPayload `json:"parking_application" binding:"required"`
}

// ReplaceApplicationRequest is a full-record replace keyed by student_id. The
// revision must match the stored record or the replace is rejected with a
// conflict; a zero revision skips the check for legacy clients.
type ReplaceApplicationRequest struct {
	ApplicationPayload
	Revision int `json:"revision"`
}

// ApplicationCreatedResponse mirrors the original submission response shape.
type ApplicationCreatedResponse struct {
	Message  string      `json:"message"`
	Document interface{} `json:"document"`
}
