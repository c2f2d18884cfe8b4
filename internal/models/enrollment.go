package models

import "time"

// Enrollment links a student to a course. It is the only record of course membership.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrolledCourse is a course from a student's point of view.
type EnrolledCourse struct {
	Course
	InstructorUsername string    `db:"instructor_username" json:"instructor_username"`
	EnrolledAt         time.Time `db:"enrolled_at" json:"enrolled_at"`
	TotalLessons       int       `db:"total_lessons" json:"total_lessons"`
	CompletedLessons   int       `db:"completed_lessons" json:"completed_lessons"`
	ProgressPercentage int       `db:"-" json:"progress_percentage"`
}

// EnrollResult reports the outcome of an enroll call.
type EnrollResult struct {
	Course          Course `json:"course"`
	AlreadyEnrolled bool   `json:"already_enrolled"`
}
