package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentStatus represents where an invoice stands in its payment lifecycle
type PaymentStatus int

const (
	PaymentStatusUnpaid        PaymentStatus = 0
	PaymentStatusPartiallyPaid PaymentStatus = 1
	PaymentStatusPaid          PaymentStatus = 2
	PaymentStatusOverdue       PaymentStatus = 3
)

var paymentStatusNames = [...]string{"Unpaid", "Partially Paid", "Paid", "Overdue"}

// PaymentStatuses lists every payment status in declaration order.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusUnpaid,
		PaymentStatusPartiallyPaid,
		PaymentStatusPaid,
		PaymentStatusOverdue,
	}
}

func (s PaymentStatus) String() string {
	if int(s) < 0 || int(s) >= len(paymentStatusNames) {
		return "Unpaid"
	}
	return paymentStatusNames[s]
}

// IsValid reports whether s is one of the declared statuses.
func (s PaymentStatus) IsValid() bool {
	return int(s) >= 0 && int(s) < len(paymentStatusNames)
}

// ParsePaymentStatus accepts the display name, the compact name
// ("PartiallyPaid") or the snake form ("partially_paid").
func ParsePaymentStatus(str string) (PaymentStatus, error) {
	switch normalizeName(str) {
	case "unpaid":
		return PaymentStatusUnpaid, nil
	case "partiallypaid":
		return PaymentStatusPartiallyPaid, nil
	case "paid":
		return PaymentStatusPaid, nil
	case "overdue":
		return PaymentStatusOverdue, nil
	}
	return PaymentStatusUnpaid, fmt.Errorf("unknown payment status %q", str)
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	parsed, err := ParsePaymentStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}

// normalizeName folds case and drops separators so "In Progress",
// "InProgress" and "in_progress" compare equal.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
