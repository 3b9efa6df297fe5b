// Package contact normalizes lead contact details and looks for leads that
// share them.
//
// The duplicate check runs over a snapshot of leads the caller already
// holds. It is not atomic with the write that follows it, so two requests
// racing with the same email can both pass.
package contact

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/pkg/apperror"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var validate = validator.New()

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FindDuplicate returns the first lead, in slice order, whose email or phone
// matches the given ones after normalization. The lead with excludeID is
// skipped so a record never collides with itself on update. It returns nil
// when both email and phone are empty or nothing matches.
func FindDuplicate(leads []entity.Lead, email, phone, excludeID string) *entity.Lead {
	email = NormalizeEmail(email)
	phone = NormalizePhone(phone)
	if email == "" && phone == "" {
		return nil
	}

	for i := range leads {
		lead := &leads[i]
		if excludeID != "" && lead.ID == excludeID {
			continue
		}
		if email != "" && matchesEmail(lead, email) {
			return lead
		}
		if phone != "" && matchesPhone(lead, phone) {
			return lead
		}
	}
	return nil
}

func matchesEmail(lead *entity.Lead, email string) bool {
	if NormalizeEmail(lead.Email) == email {
		return true
	}
	return lead.ContactInfo != "" && NormalizeEmail(lead.ContactInfo) == email
}

func matchesPhone(lead *entity.Lead, phone string) bool {
	if NormalizePhone(lead.PhoneNumber) == phone {
		return true
	}
	if lead.ContactInfo == "" || isEmailLike(lead.ContactInfo) {
		return false
	}
	return NormalizePhone(lead.ContactInfo) == phone
}

// StandardizeContactInfo moves a legacy free-form ContactInfo value into the
// Email or PhoneNumber field when that field is still empty, normalizes the
// email and trims the phone. ContactInfo is cleared once its value has a
// home. The input lead is not modified.
func StandardizeContactInfo(lead entity.Lead) entity.Lead {
	out := lead
	legacy := strings.TrimSpace(out.ContactInfo)

	if legacy != "" {
		switch {
		case isEmailLike(legacy) && out.Email == "":
			out.Email = legacy
			out.ContactInfo = ""
		case !isEmailLike(legacy) && out.PhoneNumber == "":
			out.PhoneNumber = legacy
			out.ContactInfo = ""
		case isEmailLike(legacy) && NormalizeEmail(out.Email) == NormalizeEmail(legacy):
			out.ContactInfo = ""
		case !isEmailLike(legacy) && NormalizePhone(out.PhoneNumber) == NormalizePhone(legacy):
			out.ContactInfo = ""
		}
	}

	out.Email = NormalizeEmail(out.Email)
	out.PhoneNumber = strings.TrimSpace(out.PhoneNumber)
	return out
}

// NeedsStandardizing reports whether StandardizeContactInfo would change lead.
func NeedsStandardizing(lead entity.Lead) bool {
	std := StandardizeContactInfo(lead)
	return std.Email != lead.Email || std.PhoneNumber != lead.PhoneNumber || std.ContactInfo != lead.ContactInfo
}

// ValidateContact checks the format of the optional email and phone fields.
func ValidateContact(email, phone string) []apperror.FieldError {
	var errs []apperror.FieldError

	if email = strings.TrimSpace(email); email != "" {
		if err := validate.Var(email, "email"); err != nil {
			errs = append(errs, apperror.FieldError{Field: "email", Message: "Invalid email address"})
		}
	}

	if phone = strings.TrimSpace(phone); phone != "" {
		if !validPhone(phone) {
			errs = append(errs, apperror.FieldError{Field: "phone_number", Message: "Invalid phone number"})
		}
	}

	return errs
}

func validPhone(phone string) bool {
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r), r == ' ', r == '-', r == '(', r == ')', r == '.':
		case r == '+' && i == 0:
		default:
			return false
		}
	}
	n := len(NormalizePhone(phone))
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

func isEmailLike(s string) bool {
	return strings.Contains(s, "@")
}
