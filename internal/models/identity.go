package models

// Capability names a permission set evaluated by the access policy.
type Capability string

const (
	CapabilityAdmin      Capability = "admin"
	CapabilityInstructor Capability = "instructor"
	CapabilityStudent    Capability = "student"
)

// Identity is the authenticated caller resolved once per request.
type Identity struct {
	UserID       string   `db:"user_id" json:"user_id"`
	Username     string   `db:"username" json:"username"`
	Email        string   `db:"email" json:"email"`
	Role         UserRole `db:"role" json:"role"`
	Superuser    bool     `db:"is_superuser" json:"is_superuser"`
	Active       bool     `db:"active" json:"active"`
	StudentID    *string  `db:"student_id" json:"student_id,omitempty"`
	InstructorID *string  `db:"instructor_id" json:"instructor_id,omitempty"`
}

// Can reports whether the identity holds the capability. A nil identity holds none.
//
// admin: superuser or role admin.
// instructor: an instructor record, role instructor, or admin.
// student: a student record.
func (i *Identity) Can(c Capability) bool {
	if i == nil {
		return false
	}
	switch c {
	case CapabilityAdmin:
		return i.Superuser || i.Role == RoleAdmin
	case CapabilityInstructor:
		return i.InstructorID != nil || i.Role == RoleInstructor || i.Can(CapabilityAdmin)
	case CapabilityStudent:
		return i.StudentID != nil
	}
	return false
}

// Capabilities lists every capability the identity holds.
func (i *Identity) Capabilities() []Capability {
	out := make([]Capability, 0, 3)
	for _, c := range []Capability{CapabilityAdmin, CapabilityInstructor, CapabilityStudent} {
		if i.Can(c) {
			out = append(out, c)
		}
	}
	return out
}

// OwnsInstructor reports whether the identity is the given instructor.
func (i *Identity) OwnsInstructor(instructorID string) bool {
	return i != nil && i.InstructorID != nil && *i.InstructorID == instructorID
}
