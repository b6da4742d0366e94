package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
)

type User struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Credential is a bearer token together with the role it was issued for.
// It is passed explicitly into every backend call.
type Credential struct {
	Token string
	Role  Role
}

func (c Credential) Empty() bool { return strings.TrimSpace(c.Token) == "" }

// LoginRequest accepts either an email address or a username.
type LoginRequest struct {
	EmailOrUsername string
	Password        string
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.EmailOrUsername) == "" {
		return &ValidationError{Field: "email or username", Reason: "is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Reason: "is required"}
	}
	return nil
}

// SignupRequest carries the fields of the registration form.
type SignupRequest struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	DateOfBirth     string // YYYY-MM-DD
	Address         string
	Phone           string
	Country         string
	Password        string
	ConfirmPassword string
}

func (r SignupRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Username) == "":
		return &ValidationError{Field: "username", Reason: "is required"}
	case len(strings.TrimSpace(r.Username)) < 3:
		return &ValidationError{Field: "username", Reason: "must be at least 3 characters"}
	case strings.TrimSpace(r.FirstName) == "":
		return &ValidationError{Field: "first name", Reason: "is required"}
	case strings.TrimSpace(r.LastName) == "":
		return &ValidationError{Field: "last name", Reason: "is required"}
	case !emailPattern.MatchString(strings.TrimSpace(r.Email)):
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	case r.DateOfBirth == "":
		return &ValidationError{Field: "date of birth", Reason: "is required"}
	case strings.TrimSpace(r.Address) == "":
		return &ValidationError{Field: "address", Reason: "is required"}
	case !phonePattern.MatchString(strings.TrimSpace(r.Phone)):
		return &ValidationError{Field: "phone", Reason: "invalid phone number"}
	case strings.TrimSpace(r.Country) == "":
		return &ValidationError{Field: "country", Reason: "is required"}
	}
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		return &ValidationError{Field: "date of birth", Reason: "must be YYYY-MM-DD"}
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirm password", Reason: "passwords do not match"}
	}
	return nil
}

// ValidatePassword requires 8+ characters with an uppercase letter, a digit
// and one of !@#$%^&*.
func ValidatePassword(p string) error {
	if len(p) < 8 {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	var upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("!@#$%^&*", r):
			special = true
		}
	}
	if !upper || !digit || !special {
		return &ValidationError{
			Field:  "password",
			Reason: "must contain at least one uppercase letter, one number, and one special character",
		}
	}
	return nil
}

// ProfileUpdate is the payload of PUT /users/profile. Empty fields are left unchanged.
type ProfileUpdate struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// PasswordChange is the payload of PUT /users/password.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

func (p PasswordChange) Validate() error {
	if p.Current == "" {
		return &ValidationError{Field: "current password", Reason: "is required"}
	}
	if err := ValidatePassword(p.New); err != nil {
		return err
	}
	if p.New != p.Confirm {
		return &ValidationError{Field: "confirm password", Reason: "passwords do not match"}
	}
	return nil
}
