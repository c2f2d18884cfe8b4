package dto

import "github.com/noah-isme/elearn-api/internal/models"

// CourseDetailResponse is a course with its lessons. Progress is set for enrolled students only.
type CourseDetailResponse struct {
	Course     models.CourseListItem   `json:"course"`
	Instructor models.InstructorDetail `json:"instructor"`
	Lessons    []models.Lesson         `json:"lessons"`
	IsEnrolled bool                    `json:"is_enrolled"`
	Progress   *models.CourseProgress  `json:"progress,omitempty"`
}

// InstructorProfileResponse is the public instructor page.
type InstructorProfileResponse struct {
	Instructor models.InstructorDetail `json:"instructor"`
	Stats      models.InstructorStats  `json:"stats"`
	Courses    []models.CourseListItem `json:"courses"`
}

// LessonCompletionResponse is returned after marking a lesson complete.
type LessonCompletionResponse struct {
	LessonID    string                `json:"lesson_id"`
	LessonTitle string                `json:"lesson_title"`
	Progress    models.CourseProgress `json:"progress"`
}

// MeResponse describes the caller with their profile.
type MeResponse struct {
	User    models.UserInfo `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}
