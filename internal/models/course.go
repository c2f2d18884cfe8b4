package models

import (
	"math"
	"time"
)

// DefaultCourseCategory is applied when a course is created without a category.
const DefaultCourseCategory = "Development"

// Course messages surfaced on the price field.
const (
	MsgPaidCourseNeedsPrice = "Paid courses must have a price greater than 0."
	MsgFreeCourseZeroPrice  = "Free courses must have a price of 0."
	MsgPriceWholeCents      = "Price must have at most two decimal places."
	MsgPriceTooHigh         = "Price must be at most 99999999.99."
)

// MaxCoursePrice is the largest value the NUMERIC(10,2) price column holds.
const MaxCoursePrice = 99999999.99

// Course is a catalog entry owned by an instructor.
type Course struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Price        float64   `db:"price" json:"price"`
	IsPaid       bool      `db:"is_paid" json:"is_paid"`
	Category     string    `db:"category" json:"category"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsFeatured   bool      `db:"is_featured" json:"is_featured"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PricingError returns the message for a price that disagrees with the paid flag, or "".
func (c Course) PricingError() string {
	if c.Price > MaxCoursePrice {
		return MsgPriceTooHigh
	}
	if math.Round(c.Price*100)/100 != c.Price {
		return MsgPriceWholeCents
	}
	if c.IsPaid && c.Price <= 0 {
		return MsgPaidCourseNeedsPrice
	}
	if !c.IsPaid && c.Price != 0 {
		return MsgFreeCourseZeroPrice
	}
	return ""
}

// CourseListItem is a course with its owner and counters.
type CourseListItem struct {
	Course
	InstructorUsername string `db:"instructor_username" json:"instructor_username"`
	LessonCount        int    `db:"lesson_count" json:"lesson_count"`
	EnrollmentCount    int    `db:"enrollment_count" json:"enrollment_count"`
}

// CourseFilter narrows course listings. Active and Featured are plain display filters.
type CourseFilter struct {
	Category     string
	Search       string
	InstructorID string
	Active       *bool
	Featured     *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// CreateCourseRequest creates a course. InstructorID is only honoured for admins.
type CreateCourseRequest struct {
	InstructorID string  `json:"instructor_id" form:"instructor_id" validate:"omitempty,uuid"`
	Title        string  `json:"title" form:"title" validate:"required,max=200"`
	Description  string  `json:"description" form:"description"`
	Price        float64 `json:"price" form:"price" validate:"gte=0,max=99999999.99"`
	IsPaid       bool    `json:"is_paid" form:"is_paid"`
	Category     string  `json:"category" form:"category" validate:"max=100"`
	ThumbnailURL *string `json:"thumbnail_url" form:"thumbnail_url" validate:"omitempty,url"`
	IsActive     *bool   `json:"is_active" form:"is_active"`
	IsFeatured   *bool   `json:"is_featured" form:"is_featured"`
}

// UpdateCourseRequest is a partial update; nil fields keep their stored value.
type UpdateCourseRequest struct {
	InstructorID *string  `json:"instructor_id" form:"instructor_id" validate:"omitempty,uuid"`
	Title        *string  `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description" form:"description"`
	Price        *float64 `json:"price" form:"price" validate:"omitempty,gte=0,max=99999999.99"`
	IsPaid       *bool    `json:"is_paid" form:"is_paid"`
	Category     *string  `json:"category" form:"category" validate:"omitempty,min=1,max=100"`
	ThumbnailURL *string  `json:"thumbnail_url" form:"thumbnail_url" validate:"omitempty,url"`
	IsActive     *bool    `json:"is_active" form:"is_active"`
	IsFeatured   *bool    `json:"is_featured" form:"is_featured"`
}

// Apply merges the request onto c.
func (r UpdateCourseRequest) Apply(c *Course) {
	if r.InstructorID != nil {
		c.InstructorID = *r.InstructorID
	}
	if r.Title != nil {
		c.Title = *r.Title
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.Price != nil {
		c.Price = *r.Price
	}
	if r.IsPaid != nil {
		c.IsPaid = *r.IsPaid
	}
	if r.Category != nil {
		c.Category = *r.Category
	}
	if r.ThumbnailURL != nil {
		c.ThumbnailURL = r.ThumbnailURL
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	if r.IsFeatured != nil {
		c.IsFeatured = *r.IsFeatured
	}
}

// TouchesAdminFields reports whether the update changes fields reserved for admins.
func (r UpdateCourseRequest) TouchesAdminFields(c Course) bool {
	if r.InstructorID != nil && *r.InstructorID != c.InstructorID {
		return true
	}
	if r.IsActive != nil && *r.IsActive != c.IsActive {
		return true
	}
	return r.IsFeatured != nil && *r.IsFeatured != c.IsFeatured
}
