package models

import "time"

// Audit actions.
const (
	AuditActionSignup             = "SIGNUP"
	AuditActionLogin              = "LOGIN"
	AuditActionLogout             = "LOGOUT"
	AuditActionProfileUpdate      = "PROFILE_UPDATE"
	AuditActionRoleChange         = "ROLE_CHANGE"
	AuditActionBecomeInstructor   = "BECOME_INSTRUCTOR"
	AuditActionInstructorApproval = "INSTRUCTOR_APPROVAL"
	AuditActionCreate             = "CREATE"
	AuditActionUpdate             = "UPDATE"
	AuditActionDelete             = "DELETE"
	AuditActionEnroll             = "ENROLL"
	AuditActionExport             = "EXPORT"
)

// Audit resources.
const (
	AuditResourceUser       = "user"
	AuditResourceCourse     = "course"
	AuditResourceLesson     = "lesson"
	AuditResourceInstructor = "instructor"
	AuditResourceEnrollment = "enrollment"
	AuditResourceStudent    = "student"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
