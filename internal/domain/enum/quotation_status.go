package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// QuotationStatus represents the status of a quotation
type QuotationStatus int

const (
	QuotationStatusDraft    QuotationStatus = 0
	QuotationStatusSent     QuotationStatus = 1
	QuotationStatusAccepted QuotationStatus = 2
	QuotationStatusDeclined QuotationStatus = 3
)

func (s QuotationStatus) String() string {
	names := [...]string{"Draft", "Sent", "Accepted", "Declined"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Draft"
	}
	return names[s]
}

// ParseQuotationStatus parses a status name in any casing.
func ParseQuotationStatus(str string) (QuotationStatus, error) {
	switch normalizeName(str) {
	case "draft":
		return QuotationStatusDraft, nil
	case "sent":
		return QuotationStatusSent, nil
	case "accepted":
		return QuotationStatusAccepted, nil
	case "declined":
		return QuotationStatusDeclined, nil
	}
	return QuotationStatusDraft, fmt.Errorf("unknown quotation status %q", str)
}

func (s QuotationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *QuotationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = QuotationStatus(i)
		return nil
	}
	parsed, err := ParseQuotationStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s QuotationStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *QuotationStatus) Scan(value interface{}) error {
	if value == nil {
		*s = QuotationStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = QuotationStatus(v)
	case int:
		*s = QuotationStatus(v)
	}
	return nil
}
