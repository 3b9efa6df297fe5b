package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ClientStatus represents whether a client account is active
type ClientStatus int

const (
	ClientStatusActive   ClientStatus = 0
	ClientStatusInactive ClientStatus = 1
)

func (s ClientStatus) String() string {
	if s == ClientStatusInactive {
		return "Inactive"
	}
	return "Active"
}

func ParseClientStatus(str string) (ClientStatus, error) {
	switch normalizeName(str) {
	case "active":
		return ClientStatusActive, nil
	case "inactive":
		return ClientStatusInactive, nil
	}
	return ClientStatusActive, fmt.Errorf("unknown client status %q", str)
}

func (s ClientStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ClientStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ClientStatus(i)
		return nil
	}
	parsed, err := ParseClientStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ClientStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ClientStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ClientStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ClientStatus(v)
	case int:
		*s = ClientStatus(v)
	}
	return nil
}
