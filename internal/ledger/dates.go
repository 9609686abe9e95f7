package ledger

import (
	"fmt"
	"strings"
	"time"

	"shopledger-backend/internal/domain"
)

// Record dates travel as DD.MM.YYYY and are held as YYYY-MM-DD. These two functions are the
// only place where one form becomes the other.
const (
	externalDateLayout = "02.01.2006"
	internalDateLayout = "2006-01-02"
)

// ParseDate converts day-first text such as "26.09.2025" into its sortable form.
func ParseDate(s string) (domain.Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(externalDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q must be DD.MM.YYYY", domain.ErrInvalidDate, s)
	}
	return domain.Date(t.Format(internalDateLayout)), nil
}

// FormatDate converts a sortable date back to day-first text.
func FormatDate(d domain.Date) string {
	t, err := time.Parse(internalDateLayout, string(d))
	if err != nil {
		return string(d)
	}
	return t.Format(externalDateLayout)
}

