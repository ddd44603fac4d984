package validator

// Request DTOs shared between handlers and services.

// ===== AUTH =====

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	Role     string `json:"role" validate:"omitempty,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ExchangeRequest trades an external identity token for a local session
// token. Role is an optional proposal; admin proposals are rejected.
type ExchangeRequest struct {
	IDToken string `json:"id_token" validate:"required"`
	Role    string `json:"role" validate:"omitempty,user_role"`
}

// ===== INTERNSHIPS =====

type FormQuestionRequest struct {
	Question  string   `json:"question" validate:"required,max=500"`
	InputType string   `json:"input_type" validate:"omitempty,form_input_type"`
	Options   []string `json:"options" validate:"omitempty,max=20,dive,max=200"`
}

type CreateInternshipRequest struct {
	Title           string                `json:"title" validate:"omitempty,max=200"`
	Company         string                `json:"company" validate:"required,max=200"`
	Description     string                `json:"description" validate:"omitempty,max=5000"`
	Field           string                `json:"field" validate:"omitempty,max=100"`
	Location        string                `json:"location" validate:"omitempty,max=200"`
	Remote          bool                  `json:"remote"`
	Paid            bool                  `json:"paid"`
	ApplicationForm []FormQuestionRequest `json:"application_form" validate:"omitempty,max=50,dive"`
}

type UpdateInternshipRequest struct {
	Title           *string                `json:"title" validate:"omitempty,max=200"`
	Company         *string                `json:"company" validate:"omitempty,max=200"`
	Description     *string                `json:"description" validate:"omitempty,max=5000"`
	Field           *string                `json:"field" validate:"omitempty,max=100"`
	Location        *string                `json:"location" validate:"omitempty,max=200"`
	Remote          *bool                  `json:"remote"`
	Paid            *bool                  `json:"paid"`
	ApplicationForm *[]FormQuestionRequest `json:"application_form" validate:"omitempty,max=50,dive"`
}

// ListInternshipsRequest binds the listing query parameters. Pointer fields
// distinguish "not filtered" from an explicit false.
type ListInternshipsRequest struct {
	Field    string `form:"field" validate:"omitempty,max=100"`
	Location string `form:"location" validate:"omitempty,max=200"`
	Remote   *bool  `form:"remote"`
	Paid     *bool  `form:"paid"`
	Active   *bool  `form:"active"`
	PostedBy string `form:"posted_by" validate:"omitempty,max=64"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" validate:"omitempty,min=0"`
}

type ApplyRequest struct {
	University  string         `json:"university" validate:"omitempty,max=200"`
	Degree      string         `json:"degree" validate:"omitempty,max=200"`
	Major       string         `json:"major" validate:"omitempty,max=200"`
	CurrentYear string         `json:"current_year" validate:"omitempty,max=50"`
	Skills      []string       `json:"skills" validate:"omitempty,max=50,dive,max=100"`
	ResumeURL   string         `json:"resume_url" validate:"omitempty,max=1000"`
	Message     string         `json:"message" validate:"omitempty,max=5000"`
	FormAnswers map[string]any `json:"form_answers"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,application_status"`
}

// ===== USERS =====

type UpdateProfileRequest struct {
	Skills         []string           `json:"skills" validate:"omitempty,max=50,dive,max=100"`
	Education      []EducationRequest `json:"education" validate:"omitempty,max=20,dive"`
	Certifications []string           `json:"certifications" validate:"omitempty,max=50,dive,max=200"`
	Projects       []ProjectRequest   `json:"projects" validate:"omitempty,max=50,dive"`
}

type EducationRequest struct {
	Institution string `json:"institution" validate:"required,max=200"`
	Degree      string `json:"degree" validate:"omitempty,max=200"`
	Year        string `json:"year" validate:"omitempty,max=20"`
}

type ProjectRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Link        string `json:"link" validate:"omitempty,max=1000"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ===== UNIVERSITY / ADMIN =====

type VerifyStudentRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

// BulkStudentsRequest selects students by explicit emails or by email domain.
// Exactly one selector must be provided; the service enforces that.
type BulkStudentsRequest struct {
	Emails []string `json:"emails" validate:"omitempty,max=500,dive,email"`
	Domain string   `json:"domain" validate:"omitempty,max=200"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

type ToggleVerifiedRequest struct {
	Email string `json:"email" validate:"required,email"`
}
