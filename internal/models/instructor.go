package models

import "time"

// Instructor is the teaching record attached to a user.
type Instructor struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Bio            string    `db:"bio" json:"bio"`
	Specialization string    `db:"specialization" json:"specialization"`
	Website        *string   `db:"website" json:"website,omitempty"`
	LinkedIn       *string   `db:"linkedin" json:"linkedin,omitempty"`
	IsApproved     bool      `db:"is_approved" json:"is_approved"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// InstructorDetail joins the instructor with its account.
type InstructorDetail struct {
	Instructor
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// InstructorStats aggregates an instructor's catalog.
type InstructorStats struct {
	TotalCourses  int `db:"total_courses" json:"total_courses"`
	TotalStudents int `db:"total_students" json:"total_students"`
	TotalLessons  int `db:"total_lessons" json:"total_lessons"`
}

// InstructorListItem is a row in the admin instructor listing.
type InstructorListItem struct {
	InstructorDetail
	TotalCourses  int `db:"total_courses" json:"total_courses"`
	TotalStudents int `db:"total_students" json:"total_students"`
}

// InstructorFilter narrows the admin instructor listing.
type InstructorFilter struct {
	Search   string
	Approved *bool
	Page     int
	PageSize int
}

// BecomeInstructorRequest registers the caller as an instructor.
type BecomeInstructorRequest struct {
	Bio            string  `json:"bio" form:"bio" validate:"required"`
	Specialization string  `json:"specialization" form:"specialization" validate:"required,max=100"`
	Website        *string `json:"website" form:"website" validate:"omitempty,url"`
	LinkedIn       *string `json:"linkedin" form:"linkedin" validate:"omitempty,url"`
}

// InstructorApprovalRequest toggles the approval flag.
type InstructorApprovalRequest struct {
	Approved *bool `json:"approved" form:"approved" validate:"required"`
}
