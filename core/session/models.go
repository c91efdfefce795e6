package session

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var NowFunc = time.Now // mockable

// User is the authenticated identity as the backend reports it, normalized so
// display code never sees an empty name or email.
type User struct {
	ID        int         `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      string      `json:"role"`
	ClassName null.String `json:"class_name,omitempty"`
}

func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

// Credentials is a login attempt. Email accepts a real username too; the
// backend resolves either.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewAccount is a registration request.
type NewAccount struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData is a successful response from the login endpoint. User may be
// nil: older backend versions only return tokens.
type LoginData struct {
	Access  string
	Refresh string
	User    *User
	Message string
}

// Result is the outcome handed back to submit handlers. Auth failures are
// values, not thrown errors, so rendering code needs no error handling.
type Result struct {
	Success bool
	Error   string
}

// LocalPart returns the part of an email address before the '@'.
func LocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// normalizeUser guarantees a minimum viable identity whether or not the
// backend returned a user record. Name falls back to username, then to the
// local part of the email; a missing record is fabricated entirely.
func normalizeUser(usr *User, creds Credentials) User {
	if usr == nil {
		return User{
			ID:    int(NowFunc().Unix()), // temporary until a profile fetch supplies the real one
			Email: creds.Email,
			Name:  LocalPart(creds.Email),
			Role:  RoleStudent,
		}
	}
	normalized := *usr
	if normalized.Email == "" {
		normalized.Email = creds.Email
	}
	if normalized.Name == "" {
		normalized.Name = normalized.Username
	}
	if normalized.Name == "" {
		normalized.Name = LocalPart(normalized.Email)
	}
	if normalized.Role == "" {
		normalized.Role = RoleStudent
	}
	return normalized
}
