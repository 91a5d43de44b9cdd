package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("invalid date", field)
}

// Amount is a number that may arrive as a JSON number or a numeric string.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	*a = Amount(f)
	return nil
}

// checkText rejects text no store can hold.
func checkText(field string, p *string) error {
	if p != nil && strings.ContainsRune(*p, 0) {
		return domain.NewValidationError("must not contain NUL characters", field)
	}
	return nil
}

func blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}

func requireUser(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}
