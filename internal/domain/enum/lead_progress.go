package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LeadProgress represents how far a sales lead has moved
type LeadProgress int

const (
	LeadProgressUntouched  LeadProgress = 0
	LeadProgressKnocked    LeadProgress = 1
	LeadProgressInProgress LeadProgress = 2
	LeadProgressConfirm    LeadProgress = 3
	LeadProgressCanceled   LeadProgress = 4
)

func (p LeadProgress) String() string {
	names := [...]string{"Untouched", "Knocked", "In Progress", "Confirm", "Canceled"}
	if int(p) < 0 || int(p) >= len(names) {
		return "Untouched"
	}
	return names[p]
}

// LeadProgresses lists every progress value in declaration order.
func LeadProgresses() []LeadProgress {
	return []LeadProgress{
		LeadProgressUntouched,
		LeadProgressKnocked,
		LeadProgressInProgress,
		LeadProgressConfirm,
		LeadProgressCanceled,
	}
}

// ParseLeadProgress parses a progress name in any casing.
func ParseLeadProgress(str string) (LeadProgress, error) {
	switch normalizeName(str) {
	case "untouched":
		return LeadProgressUntouched, nil
	case "knocked":
		return LeadProgressKnocked, nil
	case "inprogress":
		return LeadProgressInProgress, nil
	case "confirm", "confirmed":
		return LeadProgressConfirm, nil
	case "canceled", "cancelled":
		return LeadProgressCanceled, nil
	}
	return LeadProgressUntouched, fmt.Errorf("unknown lead progress %q", str)
}

func (p LeadProgress) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *LeadProgress) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*p = LeadProgress(i)
		return nil
	}
	parsed, err := ParseLeadProgress(str)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p LeadProgress) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *LeadProgress) Scan(value interface{}) error {
	if value == nil {
		*p = LeadProgressUntouched
		return nil
	}
	switch v := value.(type) {
	case int64:
		*p = LeadProgress(v)
	case int:
		*p = LeadProgress(v)
	}
	return nil
}
