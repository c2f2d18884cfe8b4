package models

import "time"

// Student is the learning record attached to a user.
type Student struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentListItem is a row in the admin student listing.
type StudentListItem struct {
	ID                   string    `db:"id" json:"id"`
	UserID               string    `db:"user_id" json:"user_id"`
	Username             string    `db:"username" json:"username"`
	Email                string    `db:"email" json:"email"`
	Phone                *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	EnrolledCoursesCount int       `db:"enrolled_courses_count" json:"enrolled_courses_count"`
}

// StudentFilter narrows the admin student listing.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
