package dto

import (
	"time"

	"github.com/noah-isme/elearn-api/internal/models"
)

// PlatformTotals counts the main catalog entities.
type PlatformTotals struct {
	Courses     int `db:"total_courses" json:"total_courses"`
	Students    int `db:"total_students" json:"total_students"`
	Instructors int `db:"total_instructors" json:"total_instructors"`
	Enrollments int `db:"total_enrollments" json:"total_enrollments"`
}

// AdminDashboardResponse is the admin landing payload.
type AdminDashboardResponse struct {
	Totals        PlatformTotals          `json:"totals"`
	RecentCourses []models.CourseListItem `json:"recent_courses"`
	GeneratedAt   time.Time               `json:"generated_at"`
}

// InstructorDashboardResponse lists an instructor's own catalog.
type InstructorDashboardResponse struct {
	Instructor models.InstructorDetail `json:"instructor"`
	Stats      models.InstructorStats  `json:"stats"`
	Courses    []models.CourseListItem `json:"courses"`
}

// HomeResponse is the public landing payload.
type HomeResponse struct {
	Totals          PlatformTotals          `json:"totals"`
	FeaturedCourses []models.CourseListItem `json:"featured_courses"`
	GeneratedAt     time.Time               `json:"generated_at"`
}
