package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DiscountType selects how a document discount value is interpreted
type DiscountType int

const (
	DiscountTypePercentage DiscountType = 0
	DiscountTypeFixed      DiscountType = 1
)

func (t DiscountType) String() string {
	if t == DiscountTypeFixed {
		return "fixed"
	}
	return "percentage"
}

func ParseDiscountType(str string) (DiscountType, error) {
	switch normalizeName(str) {
	case "percentage", "percent", "":
		return DiscountTypePercentage, nil
	case "fixed", "amount":
		return DiscountTypeFixed, nil
	}
	return DiscountTypePercentage, fmt.Errorf("unknown discount type %q", str)
}

func (t DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = DiscountType(i)
		return nil
	}
	parsed, err := ParseDiscountType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t DiscountType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *DiscountType) Scan(value interface{}) error {
	if value == nil {
		*t = DiscountTypePercentage
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = DiscountType(v)
	case int:
		*t = DiscountType(v)
	}
	return nil
}
