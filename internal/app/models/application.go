package models

import (
	"time"
)

// ParkingApplication defines the parking permit application model based on the
// 'parking_applications' table. The license image itself lives on disk; only the
// generated filename is stored here.
//
// student_id is deliberately not unique at the database level: a repeated
// submission creates a second application rather than failing.
type ParkingApplication struct {
	ID           int64     `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name" example:"Idan"`
	LastName     string    `json:"last_name" db:"last_name" example:"Levi"`
	Email        string    `json:"email" db:"email" example:"idanle1@sce.edu"`
	StudentID    string    `json:"student_id" db:"student_id" example:"123456789"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number" example:"0501234567"`
	Department   string    `json:"department" db:"department" example:"Software Engineering"`
	CarType      string    `json:"car_type" db:"car_type" example:"Mazda 3"`
	CarNumber    string    `json:"car_number" db:"car_number" example:"12-345-67"`
	LicenseImage string    `json:"license_image" db:"license_image" example:"license-123456789-1714917600000.png"`
	Revision     int       `json:"revision" db:"revision"` // Optimistic concurrency token, bumped on every replace
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
