package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"masarif/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseYearMonth reads year and month query parameters, defaulting to
// the current UTC month.
func parseYearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}

	return year, time.Month(month), nil
}

// parseDateParam reads an optional YYYY-MM-DD query parameter. A
// missing parameter yields the zero date, leaving the range open.
func parseDateParam(r *http.Request, name string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid %s date %q", name, v)
	}
	return d, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseAmount converts a decimal amount string to cents. allowZero
// admits "0" for budget ceilings; expenses stay strictly positive.
func parseAmount(s string, allowZero bool) (core.Money, error) {
	s = strings.TrimSpace(s)
	if allowZero && isZeroDecimal(s) {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func isZeroDecimal(s string) bool {
	if s == "" {
		return false
	}
	seenDigit := false
	seenSep := false
	for _, r := range s {
		switch {
		case r == '0':
			seenDigit = true
		case (r == '.' || r == ',') && !seenSep:
			seenSep = true
		default:
			return false
		}
	}
	return seenDigit
}
