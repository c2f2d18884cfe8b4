package models

import "time"

// LessonProgress marks a lesson as completed by a student. Completion never reverts.
type LessonProgress struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	LessonID    string     `db:"lesson_id" json:"lesson_id"`
	Completed   bool       `db:"completed" json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// CourseProgress summarises a student's completion of one course.
type CourseProgress struct {
	CourseID           string   `json:"course_id"`
	CompletedLessons   int      `json:"completed_lessons"`
	TotalLessons       int      `json:"total_lessons"`
	ProgressPercentage int      `json:"progress_percentage"`
	CompletedLessonIDs []string `json:"completed_lesson_ids"`
}

// ProgressPercent truncates completed/total to a whole percentage. A course without lessons is 0%.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return completed * 100 / total
}

// NewCourseProgress builds the summary from the completed lesson ids and the lesson count.
func NewCourseProgress(courseID string, completedIDs []string, total int) CourseProgress {
	if completedIDs == nil {
		completedIDs = []string{}
	}
	return CourseProgress{
		CourseID:           courseID,
		CompletedLessons:   len(completedIDs),
		TotalLessons:       total,
		ProgressPercentage: ProgressPercent(len(completedIDs), total),
		CompletedLessonIDs: completedIDs,
	}
}
