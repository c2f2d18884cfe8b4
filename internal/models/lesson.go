package models

import "time"

// Lesson is one ordered unit of a course.
type Lesson struct {
	ID              string    `db:"id" json:"id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	Title           string    `db:"title" json:"title"`
	Content         string    `db:"content" json:"content"`
	VideoURL        string    `db:"video_url" json:"video_url"`
	Order           int       `db:"order" json:"order"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// CreateLessonRequest adds a lesson to a course.
type CreateLessonRequest struct {
	Title           string `json:"title" form:"title" validate:"required,max=200"`
	Content         string `json:"content" form:"content"`
	VideoURL        string `json:"video_url" form:"video_url" validate:"omitempty,url"`
	Order           int    `json:"order" form:"order" validate:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" form:"duration_minutes" validate:"gte=0"`
}

// UpdateLessonRequest is a partial update; nil fields keep their stored value.
type UpdateLessonRequest struct {
	Title           *string `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Content         *string `json:"content" form:"content"`
	VideoURL        *string `json:"video_url" form:"video_url" validate:"omitempty,url"`
	Order           *int    `json:"order" form:"order" validate:"omitempty,gte=0"`
	DurationMinutes *int    `json:"duration_minutes" form:"duration_minutes" validate:"omitempty,gte=0"`
}

// Apply merges the request onto l.
func (r UpdateLessonRequest) Apply(l *Lesson) {
	if r.Title != nil {
		l.Title = *r.Title
	}
	if r.Content != nil {
		l.Content = *r.Content
	}
	if r.VideoURL != nil {
		l.VideoURL = *r.VideoURL
	}
	if r.Order != nil {
		l.Order = *r.Order
	}
	if r.DurationMinutes != nil {
		l.DurationMinutes = *r.DurationMinutes
	}
}
