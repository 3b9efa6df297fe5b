package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextNumber(t *testing.T) {
	existing := []string{
		"INV-2024-0001",
		"INV-2024-0002",
		"INV-2023-0009",
		"QT-2024-0001",
		"INV-1712345678901",
	}

	assert.Equal(t, "INV-2024-0003", NextNumber(existing, "INV", 2024))
	assert.Equal(t, "INV-2023-0002", NextNumber(existing, "INV", 2023))
	assert.Equal(t, "QT-2024-0002", NextNumber(existing, "QT", 2024))
	assert.Equal(t, "INV-2025-0001", NextNumber(existing, "INV", 2025))
	assert.Equal(t, "QT-2024-0001", NextNumber(nil, "QT", 2024))
}

func TestNextNumberIsSequentialWithinYear(t *testing.T) {
	var issued []string
	for n := 1; n <= 12; n++ {
		next := NextNumber(issued, "INV", 2024)
		assert.Equal(t, fmt.Sprintf("INV-2024-%04d", n), next)
		issued = append(issued, next)
	}
}

func TestGenerateNumberFallsBackOnError(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	ok := func(context.Context) ([]string, error) { return []string{"QT-2024-0001"}, nil }
	assert.Equal(t, "QT-2024-0002", GenerateNumber(context.Background(), ok, "QT", now))

	failing := func(context.Context) ([]string, error) { return nil, errors.New("offline") }
	assert.Equal(t, fmt.Sprintf("QT-%d", now.UnixMilli()), GenerateNumber(context.Background(), failing, "QT", now))
}
