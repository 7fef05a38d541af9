package validation

import (
	"strings"
	"testing"

	"invoice-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignUp(t *testing.T) {
	ok := &models.SignUpRequest{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com",
		Password:     "analytical",
		BusinessName: "Engines Ltd",
		TOS:          true,
	}
	assert.False(t, ValidateSignUp(ok).HasErrors())

	errs := ValidateSignUp(&models.SignUpRequest{FullName: "A", Email: "ada", Password: "short", BusinessName: "E"})
	assert.Len(t, errs, 5)
	assert.Contains(t, errs, "tos")
}

func TestValidateSignIn(t *testing.T) {
	assert.False(t, ValidateSignIn(&models.SignInRequest{Email: "a@b.co", Password: "x"}).HasErrors())

	errs := ValidateSignIn(&models.SignInRequest{})
	assert.Equal(t, []string{"Email is required"}, errs["email"])
	assert.Equal(t, []string{"Password is required"}, errs["password"])
}

func TestValidateProfileOnlyChecksPresentFields(t *testing.T) {
	assert.False(t, ValidateProfile(&models.UpdateProfileRequest{}).HasErrors())

	short, bad := "A", "nope"
	errs := ValidateProfile(&models.UpdateProfileRequest{Name: &short, Email: &bad})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.NotContains(t, errs, "businessName")
}

func TestAccountStorageLimits(t *testing.T) {
	long := strings.Repeat("x", MaxNameLength+1)
	email := strings.Repeat("a", MaxEmailLength) + "@example.com"

	errs := ValidateSignUp(&models.SignUpRequest{
		FullName:     long,
		Email:        email,
		Password:     strings.Repeat("p", MaxPasswordBytes+1),
		BusinessName: long,
		TOS:          true,
	})
	assert.Equal(t, []string{"Must be at most 255 characters"}, errs["fullName"])
	assert.Equal(t, []string{"Must be at most 255 characters"}, errs["email"])
	assert.Equal(t, []string{"Password is too long"}, errs["password"])
	assert.Equal(t, []string{"Must be at most 255 characters"}, errs["businessName"])

	errs = ValidateProfile(&models.UpdateProfileRequest{Name: &long, Email: &email, BusinessName: &long})
	assert.Len(t, errs, 3)
}

func TestIsEmail(t *testing.T) {
	for _, s := range []string{"a@acme.com", "first.last+tag@sub.example.org"} {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range []string{"", "acme.com", "a@acme", "Ada <a@acme.com>", "a @acme.com", "a@acme.com."} {
		assert.False(t, IsEmail(s), s)
	}
}
