package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"videoquiz/internal/domain"
	"videoquiz/internal/dto"
)

const (
	maxUsernameLength = 150
	maxTitleLength    = 255
	maxURLLength      = 2048
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegisterRequest validates the registration body
func (v *Validator) ValidateRegisterRequest(req *dto.RegisterRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		errors = append(errors, domain.NewBlankFieldError("username"))
	case utf8.RuneCountInString(username) > maxUsernameLength:
		errors = append(errors, domain.NewOutOfRangeError("username", utf8.RuneCountInString(username), 1, maxUsernameLength))
	case !usernamePattern.MatchString(username):
		errors = append(errors, domain.NewFieldError("username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."))
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errors = append(errors, domain.NewBlankFieldError("email"))
	} else if !isValidEmail(email) {
		errors = append(errors, domain.NewFieldError("email", "Enter a valid email address."))
	}

	if req.Password == "" {
		errors = append(errors, domain.NewBlankFieldError("password"))
	}

	return errors
}

// ValidateLoginRequest validates the login body
func (v *Validator) ValidateLoginRequest(req *dto.LoginRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.Username) == "" {
		errors = append(errors, domain.NewBlankFieldError("username"))
	}
	if req.Password == "" {
		errors = append(errors, domain.NewBlankFieldError("password"))
	}
	return errors
}

// ValidateCreateQuizRequest reports a message for a missing or oversized url.
// An empty string means the request is acceptable.
func (v *Validator) ValidateCreateQuizRequest(req *dto.CreateQuizRequest) string {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return "URL is required."
	}
	if len(url) > maxURLLength {
		return "URL is too long."
	}
	return ""
}

// ValidateUpdateQuizRequest validates a partial quiz update
func (v *Validator) ValidateUpdateQuizRequest(req *dto.UpdateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			errors = append(errors, domain.NewBlankFieldError("title"))
		} else if n := utf8.RuneCountInString(title); n > maxTitleLength {
			errors = append(errors, domain.NewOutOfRangeError("title", n, 1, maxTitleLength))
		}
	}
	if req.Description != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*req.Description)); n > domain.MaxDescriptionLength {
			errors = append(errors, domain.NewOutOfRangeError("description", n, 0, domain.MaxDescriptionLength))
		}
	}
	return errors
}

// isValidEmail accepts bare addresses only, no display names.
func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
