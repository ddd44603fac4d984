package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationStatus string

const (
	StatusApplied  ApplicationStatus = "applied"
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// ValidApplicationStatus reports whether s is a known status. Transitions are
// deliberately free-form: any status may follow any other, and accepted or
// rejected are not terminal.
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case StatusApplied, StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

type FormInputType string

const (
	InputText     FormInputType = "text"
	InputTextarea FormInputType = "textarea"
	InputSelect   FormInputType = "select"
	InputCheckbox FormInputType = "checkbox"
)

func ValidFormInputType(t FormInputType) bool {
	switch t {
	case InputText, InputTextarea, InputSelect, InputCheckbox:
		return true
	}
	return false
}

// FormQuestion is one entry of an internship's custom application form.
type FormQuestion struct {
	Question  string        `json:"question" bson:"question"`
	InputType FormInputType `json:"input_type" bson:"input_type"`
	Options   []string      `json:"options" bson:"options,omitempty"`
}

// Application is embedded in its parent Internship document. It is keyed by a
// stable ID so status changes can target it with a positional update instead
// of a read-modify-write round trip. Applicant can be nil on legacy records.
type Application struct {
	ID        string              `json:"id" bson:"id"`
	Applicant *primitive.ObjectID `json:"applicant" bson:"applicant,omitempty"`

	// Profile snapshot taken at application time.
	University  string   `json:"university" bson:"university,omitempty"`
	Degree      string   `json:"degree" bson:"degree,omitempty"`
	Major       string   `json:"major" bson:"major,omitempty"`
	CurrentYear string   `json:"current_year" bson:"current_year,omitempty"`
	Skills      []string `json:"skills" bson:"skills,omitempty"`

	Status      ApplicationStatus `json:"status" bson:"status"`
	ResumeURL   string            `json:"resume_url" bson:"resume_url,omitempty"`
	Message     string            `json:"message" bson:"message,omitempty"`
	FormAnswers map[string]any    `json:"form_answers" bson:"form_answers,omitempty"`
	AppliedAt   time.Time         `json:"applied_at" bson:"applied_at"`
}

// Internship is a posting owned by exactly one employer. Applications live in
// the embedded applicants array; takedown flips Active without touching them.
type Internship struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title,omitempty"`
	Company     string             `json:"company" bson:"company"`
	Description string             `json:"description" bson:"description,omitempty"`
	Field       string             `json:"field" bson:"field,omitempty"`
	Location    string             `json:"location" bson:"location,omitempty"`
	Remote      bool               `json:"remote" bson:"remote"`
	Paid        bool               `json:"paid" bson:"paid"`

	// Active is the soft-delete flag. Inactive postings stay in storage.
	Active bool `json:"active" bson:"active"`

	PostedBy        primitive.ObjectID `json:"posted_by" bson:"posted_by"`
	ApplicationForm []FormQuestion     `json:"application_form" bson:"application_form,omitempty"`
	Applicants      []Application      `json:"applicants" bson:"applicants"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (Internship) CollectionName() string {
	return "internships"
}

// ApplicationByUser returns the embedded application submitted by userID, or nil.
func (i *Internship) ApplicationByUser(userID primitive.ObjectID) *Application {
	for idx := range i.Applicants {
		a := &i.Applicants[idx]
		if a.Applicant != nil && *a.Applicant == userID {
			return a
		}
	}
	return nil
}
