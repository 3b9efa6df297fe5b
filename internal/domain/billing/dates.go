package billing

import "time"

// DefaultDueDays is the payment term given to new invoices.
const DefaultDueDays = 30

// DateOf truncates t to midnight in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DueDate is the calendar date days after issued.
func DueDate(issued time.Time, days int) time.Time {
	return DateOf(issued).AddDate(0, 0, days)
}
