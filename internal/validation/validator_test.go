package validation

import (
	"strings"
	"testing"

	"videoquiz/internal/dto"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestValidateRegisterRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		req        dto.RegisterRequest
		wantFields []string
	}{
		{"valid", dto.RegisterRequest{Username: "a", Email: "a@x.com", Password: "p1"}, nil},
		{"all blank", dto.RegisterRequest{}, []string{"username", "email", "password"}},
		{"bad email", dto.RegisterRequest{Username: "a", Email: "not-an-email", Password: "p"}, []string{"email"}},
		{"display name email", dto.RegisterRequest{Username: "a", Email: "A <a@x.com>", Password: "p"}, []string{"email"}},
		{"bad username", dto.RegisterRequest{Username: "a b", Email: "a@x.com", Password: "p"}, []string{"username"}},
		{"long username", dto.RegisterRequest{Username: strings.Repeat("u", 151), Email: "a@x.com", Password: "p"}, []string{"username"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateRegisterRequest(&tt.req)
			if tt.wantFields == nil {
				assert.Empty(t, errs)
				return
			}
			fields := errs.Fields()
			assert.Len(t, fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestValidateLoginRequest(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.ValidateLoginRequest(&dto.LoginRequest{Username: "a", Password: "p"}))

	errs := v.ValidateLoginRequest(&dto.LoginRequest{Username: "  "})
	assert.Equal(t, []string{"This field may not be blank."}, errs.Fields()["username"])
	assert.Contains(t, errs.Fields(), "password")
}

func TestValidateCreateQuizRequest(t *testing.T) {
	v := NewValidator()
	assert.Equal(t, "URL is required.", v.ValidateCreateQuizRequest(&dto.CreateQuizRequest{}))
	assert.Equal(t, "URL is too long.", v.ValidateCreateQuizRequest(&dto.CreateQuizRequest{URL: "https://" + strings.Repeat("a", 2048)}))
	assert.Empty(t, v.ValidateCreateQuizRequest(&dto.CreateQuizRequest{URL: "https://youtu.be/abc"}))
}

func TestValidateUpdateQuizRequest(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{}))
	assert.Empty(t, v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{Title: strPtr("New"), Description: strPtr("")}))

	errs := v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{Title: strPtr(" ")})
	assert.Contains(t, errs.Fields(), "title")

	errs = v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{Description: strPtr(strings.Repeat("d", 151))})
	assert.Contains(t, errs.Fields(), "description")
}
