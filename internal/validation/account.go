package validation

import (
	"unicode/utf8"

	"invoice-backend/internal/models"
)

// MinPasswordLength applies to sign-up passwords
const MinPasswordLength = 8

// MaxPasswordBytes is the most bcrypt will hash
const MaxPasswordBytes = 72

// ValidateSignUp checks a sign-up request. The returned FieldErrors is empty
// when the request is acceptable.
func ValidateSignUp(req *models.SignUpRequest) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(req.FullName) < 2 {
		errs.Add("fullName", "Full Name must be at least 2 characters")
	} else if utf8.RuneCountInString(req.FullName) > MaxNameLength {
		errs.Add("fullName", tooLong(MaxNameLength))
	}
	checkEmail(errs, req.Email)
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		errs.Add("password", "Password must be at least 8 characters")
	} else if len(req.Password) > MaxPasswordBytes {
		errs.Add("password", "Password is too long")
	}
	if utf8.RuneCountInString(req.BusinessName) < 2 {
		errs.Add("businessName", "Business Name must be at least 2 characters")
	} else if utf8.RuneCountInString(req.BusinessName) > MaxNameLength {
		errs.Add("businessName", tooLong(MaxNameLength))
	}
	if !req.TOS {
		errs.Add("tos", "You must agree to the terms and conditions in order to proceed")
	}
	return errs
}

// ValidateSignIn only checks presence; credential checks happen against the store
func ValidateSignIn(req *models.SignInRequest) FieldErrors {
	errs := FieldErrors{}
	if req.Email == "" {
		errs.Add("email", "Email is required")
	} else if !IsEmail(req.Email) {
		errs.Add("email", "Invalid email address!")
	}
	if req.Password == "" {
		errs.Add("password", "Password is required")
	}
	return errs
}

// ValidateProfile checks only the fields present in a profile update
func ValidateProfile(req *models.UpdateProfileRequest) FieldErrors {
	errs := FieldErrors{}
	if req.Name != nil {
		if n := utf8.RuneCountInString(*req.Name); n < 2 {
			errs.Add("name", "Name must be at least 2 characters")
		} else if n > MaxNameLength {
			errs.Add("name", tooLong(MaxNameLength))
		}
	}
	if req.Email != nil {
		checkEmail(errs, *req.Email)
	}
	if req.BusinessName != nil {
		if n := utf8.RuneCountInString(*req.BusinessName); n < 2 {
			errs.Add("businessName", "Business Name must be at least 2 characters")
		} else if n > MaxNameLength {
			errs.Add("businessName", tooLong(MaxNameLength))
		}
	}
	return errs
}

func checkEmail(errs FieldErrors, email string) {
	if !IsEmail(email) {
		errs.Add("email", "Invalid email address!")
	} else if utf8.RuneCountInString(email) > MaxEmailLength {
		errs.Add("email", tooLong(MaxEmailLength))
	}
}
