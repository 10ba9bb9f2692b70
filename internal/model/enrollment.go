package model

import "time"

// EnrollmentStatus represents the state of a user's course membership
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment links a user to a course with progress tracking
type Enrollment struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"user_id"`
	CourseID    int64            `json:"course_id"`
	Status      EnrollmentStatus `json:"status"`
	Progress    float64          `json:"progress"` // 0..100
	EnrolledAt  time.Time        `json:"enrolled_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Certificate records a course completion. PDFGenerated tracks whether the
// rendered document exists; rendering is optional at runtime.
type Certificate struct {
	ID                int64     `json:"id"`
	CertificateNumber string    `json:"certificate_number"`
	UserID            int64     `json:"user_id"`
	CourseID          int64     `json:"course_id"`
	IssuedAt          time.Time `json:"issued_at"`
	PDFGenerated      bool      `json:"pdf_generated"`
}
