package core

// validation.go checks uploads against the student schema.
//
// Validation happens at two levels:
//  1. Header validation: the reported header must equal the schema position by position
//  2. Row validation: each cell is converted by its column rule, first failure wins
//
// Rules run in schema order and stop at the first failure, so the reported
// error always names the leftmost bad column of the row.

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/JonMunkholm/csvrelay/internal/schema"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z]+$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9]+@[A-Za-z0-9]+\.[A-Za-z]{2,4}$`)
)

// WholeNumber is an integer of arbitrary magnitude in canonical decimal form.
// It encodes to JSON as a bare number.
type WholeNumber string

func (n WholeNumber) String() string { return string(n) }

// MarshalJSON emits the digits unquoted.
func (n WholeNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return []byte(n), nil
}

// CheckHeader compares the tokenizer's header with the schema positionally.
// Matching is exact: no trimming and no case folding. Extra or missing
// trailing columns are a mismatch.
func CheckHeader(reported []string) error {
	if len(reported) != schema.Len {
		return &Error{Kind: KindHeaderMismatch}
	}
	for i, got := range reported {
		want, _ := schema.At(i)
		if got != want {
			return &Error{Kind: KindHeaderMismatch}
		}
	}
	return nil
}

// ValidateRow converts a raw row into a ValidatedRecord.
// It returns a *Error of KindFieldValidation for the first rule that fails.
func ValidateRow(raw RawRow) (ValidatedRecord, error) {
	var rec ValidatedRecord

	if raw.Columns != schema.Len {
		return rec, fieldError("", raw.Row)
	}

	var ok bool
	if rec.StudentID, ok = parseWholeNumber(raw.Values[schema.StudentID]); !ok {
		return rec, fieldError(schema.StudentID, raw.Row)
	}
	if rec.FirstName, ok = parseName(raw.Values[schema.FirstName]); !ok {
		return rec, fieldError(schema.FirstName, raw.Row)
	}
	if rec.LastName, ok = parseName(raw.Values[schema.LastName]); !ok {
		return rec, fieldError(schema.LastName, raw.Row)
	}
	if rec.Email, ok = parseEmail(raw.Values[schema.Email]); !ok {
		return rec, fieldError(schema.Email, raw.Row)
	}
	if rec.UploadDate, ok = parseUploadDate(raw.Values[schema.UploadDate]); !ok {
		return rec, fieldError(schema.UploadDate, raw.Row)
	}
	if rec.TitleCode, ok = parseWholeNumber(raw.Values[schema.TitleCode]); !ok {
		return rec, fieldError(schema.TitleCode, raw.Row)
	}
	if rec.Percentage, ok = parsePercentage(raw.Values[schema.Percentage]); !ok {
		return rec, fieldError(schema.Percentage, raw.Row)
	}

	return rec, nil
}

// parseWholeNumber accepts an optionally signed run of decimal digits.
// A decimal point is never allowed, even in "12.0".
func parseWholeNumber(s string) (WholeNumber, bool) {
	if s == "" || strings.Contains(s, ".") {
		return "", false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return "", false
	}
	return WholeNumber(n.String()), true
}

func parseName(s string) (string, bool) {
	return s, namePattern.MatchString(s)
}

func parseEmail(s string) (string, bool) {
	return s, emailPattern.MatchString(s)
}

// parseUploadDate accepts any layout dateparse recognizes and keeps the
// calendar date only. Layouts without a year ("3/5", "Mar 5") come back as
// year 0 and are rejected.
func parseUploadDate(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// parsePercentage requires exactly two decimals of input precision and a
// value in [0.00, 1.00]. The two-decimal rendering of the parsed value must
// reproduce the input, which rejects "1", "0.5" and "1.005". A sign is never
// allowed, so "-0.00" fails too.
func parsePercentage(s string) (float64, bool) {
	if strings.HasPrefix(s, "-") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatFloat(v, 'f', 2, 64) != s {
		return 0, false
	}
	if !(v >= 0 && v <= 1) {
		return 0, false
	}
	return v, true
}
