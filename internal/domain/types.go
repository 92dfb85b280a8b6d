package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// IndexList is an ordered list of work part indices. It is stored as a
// comma-delimited string; the delimiter never leaves this file.
type IndexList []int

func (l IndexList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "", nil
	}
	parts := make([]string, len(l))
	for i, n := range l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ","), nil
}

func (l *IndexList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var s string
	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into IndexList", value)
	}

	if s == "" {
		*l = nil
		return nil
	}

	parts := strings.Split(s, ",")
	out := make(IndexList, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("invalid part index %q: %w", p, err)
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

// Intersects reports whether any of the given indices appears in the list.
func (l IndexList) Intersects(indices []int) bool {
	for _, want := range indices {
		for _, have := range l {
			if have == want {
				return true
			}
		}
	}
	return false
}
