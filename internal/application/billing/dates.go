package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/factures-api/internal/domain"
)

// ParseDate acepta "YYYY-MM-DD" (medianoche UTC) o RFC3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: fecha %q, formato esperado YYYY-MM-DD", domain.ErrInvalidInput, s)
}
