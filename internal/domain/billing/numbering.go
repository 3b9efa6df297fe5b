package billing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NumberSource lists the numbers already issued for a document type.
type NumberSource func(ctx context.Context) ([]string, error)

// NextNumber returns the next sequential number for prefix and year, e.g.
// INV-2024-0007 when six INV-2024- numbers exist. Numbers of other years
// or prefixes do not count.
//
// The count is taken from a snapshot, so two concurrent callers can be
// handed the same number.
func NextNumber(existing []string, prefix string, year int) string {
	scope := fmt.Sprintf("%s-%d-", prefix, year)
	count := 0
	for _, n := range existing {
		if strings.HasPrefix(n, scope) {
			count++
		}
	}
	return fmt.Sprintf("%s%04d", scope, count+1)
}

// FallbackNumber is used when the existing numbers cannot be read. It is
// unique per millisecond but not sequential.
func FallbackNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
}

// GenerateNumber asks src for the issued numbers and returns the next one,
// or the fallback form if src fails.
func GenerateNumber(ctx context.Context, src NumberSource, prefix string, now time.Time) string {
	existing, err := src(ctx)
	if err != nil {
		return FallbackNumber(prefix, now)
	}
	return NextNumber(existing, prefix, now.Year())
}
