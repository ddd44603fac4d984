package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleEmployer   UserRole = "employer"
	RoleUniversity UserRole = "university"
	RoleAdmin      UserRole = "admin"
)

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleEmployer, RoleUniversity, RoleAdmin:
		return true
	}
	return false
}

// NormalizeEmail lowercases and trims an address. Every path that stores or
// looks up a user by email goes through this, so case variants of the same
// address always resolve to one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is one account in the local directory. Accounts are created either by
// local signup (passwordHash set) or lazily on first reconciliation of an
// external identity (passwordHash empty until a local credential is set).
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash,omitempty"`
	Name         string             `json:"name" bson:"name,omitempty"`
	Role         UserRole           `json:"role" bson:"role"`

	// Verified caches the identity provider's email-verification state.
	// Provider sync only ever promotes it to true; demotion requires an
	// explicit university or admin action.
	Verified bool `json:"verified" bson:"verified"`

	Profile      Profile      `json:"profile" bson:"profile"`
	Gamification Gamification `json:"gamification" bson:"gamification"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type Profile struct {
	Skills         []string    `json:"skills" bson:"skills,omitempty"`
	Education      []Education `json:"education" bson:"education,omitempty"`
	Certifications []string    `json:"certifications" bson:"certifications,omitempty"`
	Projects       []Project   `json:"projects" bson:"projects,omitempty"`
}

type Education struct {
	Institution string `json:"institution" bson:"institution"`
	Degree      string `json:"degree" bson:"degree"`
	Year        string `json:"year" bson:"year"`
}

type Project struct {
	Title       string `json:"title" bson:"title"`
	Link        string `json:"link" bson:"link,omitempty"`
	Description string `json:"description" bson:"description,omitempty"`
}

// Gamification counters. Points and the application streak only ever grow,
// both via atomic $inc updates on the user document.
type Gamification struct {
	Points            int     `json:"points" bson:"points"`
	Badges            []Badge `json:"badges" bson:"badges,omitempty"`
	ApplicationStreak int     `json:"application_streak" bson:"application_streak"`
}

type Badge struct {
	Key       string    `json:"key" bson:"key"`
	AwardedAt time.Time `json:"awarded_at" bson:"awarded_at"`
}

func (User) CollectionName() string {
	return "users"
}

// PublicUser is the representation safe to embed in other callers' responses.
type PublicUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
	Verified bool     `json:"verified"`
	Profile  Profile  `json:"profile"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Verified: u.Verified,
		Profile:  u.Profile,
	}
}
