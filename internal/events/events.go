package events

import (
	"time"
)

// Event types published on the domain topic.
const (
	TypeApplicationSubmitted     = "application.submitted"
	TypeApplicationStatusChanged = "application.status_changed"
	TypeBadgeAwarded             = "badge.awarded"
	TypeUserVerified             = "user.verified"
)

// Envelope wraps every published event payload.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type ApplicationSubmitted struct {
	InternshipID  string `json:"internship_id"`
	ApplicationID string `json:"application_id"`
	ApplicantID   string `json:"applicant_id"`
	Company       string `json:"company"`
	Title         string `json:"title"`
}

type ApplicationStatusChanged struct {
	InternshipID  string `json:"internship_id"`
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	ChangedBy     string `json:"changed_by"`
}

type BadgeAwarded struct {
	UserID string `json:"user_id"`
	Badge  string `json:"badge"`
}

type UserVerified struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	SetBy    string `json:"set_by"`
}
