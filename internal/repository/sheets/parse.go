package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse(dateLayout, value)
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(value)
}

// parseFloat accepts a decimal comma, which locale-formatted sheets emit.
func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
}

// optionalFloat returns nil for an empty cell.
func optionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	v, err := parseFloat(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optionalInt returns 0 for an empty cell.
func optionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return parseInt(value)
}

// parseSamples splits a ";" separated list of individual bird weights.
func parseSamples(value string) ([]float64, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ";")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := parseFloat(p)
		if err != nil {
			return nil, fmt.Errorf("weight sample %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
