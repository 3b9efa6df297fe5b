package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/domain/entity"
)

func lead(id, email, phone, legacy string) entity.Lead {
	return entity.Lead{
		Base:        entity.Base{ID: id},
		CompanyName: "Company " + id,
		Email:       email,
		PhoneNumber: phone,
		ContactInfo: legacy,
	}
}

func TestFindDuplicate(t *testing.T) {
	leads := []entity.Lead{
		lead("1", "a@x.com", "", ""),
		lead("2", "", "5551234567", ""),
		lead("3", "", "", "legacy@Y.com"),
		lead("4", "", "", "+254 700 111 222"),
	}

	tests := []struct {
		name      string
		email     string
		phone     string
		excludeID string
		wantID    string
	}{
		{name: "email is case insensitive", email: "A@X.com", wantID: "1"},
		{name: "email is trimmed", email: "  a@x.com ", wantID: "1"},
		{name: "formatted phone matches digits", phone: "(555) 123-4567", wantID: "2"},
		{name: "excluded lead is skipped", phone: "(555) 123-4567", excludeID: "2"},
		{name: "legacy email", email: "LEGACY@y.com", wantID: "3"},
		{name: "legacy phone", phone: "254700111222", wantID: "4"},
		{name: "no inputs", wantID: ""},
		{name: "no match", email: "b@x.com", phone: "000"},
		{name: "either field may match", email: "nobody@x.com", phone: "555-123-4567", wantID: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDuplicate(leads, tt.email, tt.phone, tt.excludeID)
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestFindDuplicateFirstMatchWins(t *testing.T) {
	leads := []entity.Lead{
		lead("b", "", "0711000000", ""),
		lead("a", "dup@x.com", "", ""),
		lead("c", "dup@x.com", "0711000000", ""),
	}

	got := FindDuplicate(leads, "dup@x.com", "0711 000 000", "")
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestFindDuplicateIgnoresEmptyFields(t *testing.T) {
	leads := []entity.Lead{lead("1", "", "", "")}
	assert.Nil(t, FindDuplicate(leads, "a@x.com", "", ""))
	assert.Nil(t, FindDuplicate(leads, "", "0711000000", ""))
}

func TestStandardizeContactInfo(t *testing.T) {
	tests := []struct {
		name      string
		in        entity.Lead
		wantEmail string
		wantPhone string
		wantInfo  string
	}{
		{
			name:      "legacy email moves over",
			in:        lead("1", "", "", " Info@Acme.com "),
			wantEmail: "info@acme.com",
		},
		{
			name:      "legacy phone moves over",
			in:        lead("1", "", "", " 0711 222 333 "),
			wantPhone: "0711 222 333",
		},
		{
			name:      "existing email is kept and legacy stays",
			in:        lead("1", "sales@acme.com", "", "other@acme.com"),
			wantEmail: "sales@acme.com",
			wantInfo:  "other@acme.com",
		},
		{
			name:      "legacy equal to existing value is cleared",
			in:        lead("1", "", "0711222333", "0711-222-333"),
			wantPhone: "0711222333",
		},
		{
			name:      "plain fields are normalized",
			in:        lead("1", " Sales@ACME.com", " 0711 ", ""),
			wantEmail: "sales@acme.com",
			wantPhone: "0711",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.in
			got := StandardizeContactInfo(tt.in)
			assert.Equal(t, tt.wantEmail, got.Email)
			assert.Equal(t, tt.wantPhone, got.PhoneNumber)
			assert.Equal(t, tt.wantInfo, got.ContactInfo)
			assert.Equal(t, original, tt.in)
		})
	}
}

func TestNeedsStandardizing(t *testing.T) {
	assert.True(t, NeedsStandardizing(lead("1", "", "", "a@x.com")))
	assert.False(t, NeedsStandardizing(lead("1", "a@x.com", "0711", "")))
}

func TestValidateContact(t *testing.T) {
	assert.Empty(t, ValidateContact("", ""))
	assert.Empty(t, ValidateContact("a@x.com", "+254 (700) 111-222"))

	errs := ValidateContact("not-an-email", "12ab")
	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "phone_number", errs[1].Field)

	assert.Len(t, ValidateContact("", "123"), 1, "too few digits")
	assert.Len(t, ValidateContact("", "1234567890123456"), 1, "too many digits")
}
