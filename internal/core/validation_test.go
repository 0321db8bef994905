package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/csvrelay/internal/schema"
)

func validValues() map[string]string {
	return map[string]string{
		schema.StudentID:  "42",
		schema.FirstName:  "Grace",
		schema.LastName:   "Hopper",
		schema.Email:      "grace@navy.mil",
		schema.UploadDate: "2024-02-29",
		schema.TitleCode:  "7",
		schema.Percentage: "0.95",
	}
}

func rawRow(row int, values map[string]string) RawRow {
	return RawRow{Row: row, Columns: schema.Len, Values: values}
}

func TestCheckHeader(t *testing.T) {
	cols := schema.Columns()

	swapped := schema.Columns()
	swapped[0], swapped[1] = swapped[1], swapped[0]

	renamed := schema.Columns()
	renamed[3] = "E-mail"

	tests := []struct {
		name   string
		header []string
		ok     bool
	}{
		{"exact", cols, true},
		{"swapped first two", swapped, false},
		{"renamed column", renamed, false},
		{"missing column", cols[:schema.Len-1], false},
		{"extra column", append(schema.Columns(), "Notes"), false},
		{"case differs", append([]string{"student_id"}, cols[1:]...), false},
		{"padded", append([]string{" Student_Id"}, cols[1:]...), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckHeader(tt.header)
			if tt.ok && err != nil {
				t.Fatalf("CheckHeader() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrHeaderMismatch) {
				t.Fatalf("CheckHeader() error = %v, want HeaderMismatch", err)
			}
		})
	}
}

func TestCheckHeader_EveryTransposition(t *testing.T) {
	for i := 0; i < schema.Len; i++ {
		for j := i + 1; j < schema.Len; j++ {
			h := schema.Columns()
			h[i], h[j] = h[j], h[i]
			if err := CheckHeader(h); !errors.Is(err, ErrHeaderMismatch) {
				t.Errorf("swap(%d,%d): error = %v, want HeaderMismatch", i, j, err)
			}
		}
	}
}

func TestValidateRow_Valid(t *testing.T) {
	rec, err := ValidateRow(rawRow(1, validValues()))
	if err != nil {
		t.Fatalf("ValidateRow() error = %v", err)
	}

	if rec.StudentID != "42" || rec.TitleCode != "7" {
		t.Errorf("ids = %s/%s, want 42/7", rec.StudentID, rec.TitleCode)
	}
	if rec.FirstName != "Grace" || rec.LastName != "Hopper" || rec.Email != "grace@navy.mil" {
		t.Errorf("strings not preserved: %+v", rec)
	}
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if !rec.UploadDate.Equal(want) {
		t.Errorf("UploadDate = %v, want %v", rec.UploadDate, want)
	}
	if rec.Percentage != 0.95 {
		t.Errorf("Percentage = %v, want 0.95", rec.Percentage)
	}
}

func TestValidateRow_FieldFailures(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{schema.StudentID, "12.0"},
		{schema.StudentID, "abc"},
		{schema.StudentID, ""},
		{schema.FirstName, "Mary-Ann"},
		{schema.FirstName, ""},
		{schema.LastName, "O'Neil"},
		{schema.Email, "grace@navy"},
		{schema.Email, "grace.h@navy.mil"},
		{schema.UploadDate, "not a date"},
		{schema.UploadDate, ""},
		{schema.TitleCode, "3.5"},
		{schema.Percentage, "1.005"},
		{schema.Percentage, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			values := validValues()
			values[tt.field] = tt.value

			_, err := ValidateRow(rawRow(2, values))
			want := "Invalid " + tt.field + " at row 2"
			if err == nil || err.Error() != want {
				t.Fatalf("ValidateRow() error = %v, want %q", err, want)
			}
			var e *Error
			if !errors.As(err, &e) || e.Field != tt.field || e.Row != 2 {
				t.Errorf("error context = %+v", e)
			}
		})
	}
}

func TestValidateRow_FirstFailureWins(t *testing.T) {
	values := validValues()
	values[schema.Email] = "bad"
	values[schema.Percentage] = "2.00"
	values[schema.FirstName] = "123"

	_, err := ValidateRow(rawRow(7, values))
	if err == nil || err.Error() != "Invalid First_Name at row 7" {
		t.Fatalf("error = %v, want first failing column in schema order", err)
	}
}

func TestValidateRow_ColumnCount(t *testing.T) {
	raw := rawRow(3, validValues())
	raw.Columns = schema.Len + 1

	_, err := ValidateRow(raw)
	if err == nil || err.Error() != "Invalid number of columns at row 3" {
		t.Fatalf("error = %v", err)
	}
	if KindOf(err) != KindFieldValidation {
		t.Errorf("kind = %v, want FieldValidation", KindOf(err))
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"0.00", true},
		{"1.00", true},
		{"0.05", true},
		{"0.99", true},
		{"1.01", false},
		{"-0.00", false},
		{"-0.01", false},
		{"0.5", false},
		{"1", false},
		{"1.005", false},
		{"0.050", false},
		{".50", false},
		{" 0.50", false},
		{"NaN", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if _, ok := parsePercentage(tt.in); ok != tt.ok {
				t.Errorf("parsePercentage(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}

func TestParseWholeNumber(t *testing.T) {
	huge := strings.Repeat("9", 40)

	tests := []struct {
		in   string
		want WholeNumber
		ok   bool
	}{
		{"0", "0", true},
		{"123", "123", true},
		{"-15", "-15", true},
		{"+8", "8", true},
		{"007", "7", true},
		{huge, WholeNumber(huge), true},
		{"12.0", "", false},
		{"1e3", "", false},
		{"1,000", "", false},
		{" 1", "", false},
		{"", "", false},
		{"-", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseWholeNumber(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseWholeNumber(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWholeNumber(t *testing.T) {
	b, err := WholeNumber("123").MarshalJSON()
	if err != nil || string(b) != "123" {
		t.Errorf("MarshalJSON() = %s, %v", b, err)
	}
	b, _ = WholeNumber("").MarshalJSON()
	if string(b) != "null" {
		t.Errorf("MarshalJSON(empty) = %s, want null", b)
	}
}

func TestParseUploadDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15T13:45:00Z", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"January 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"   ", time.Time{}, false},
		{"yesterday-ish", time.Time{}, false},
		{"3.5", time.Time{}, false},
		{"12.31", time.Time{}, false},
		{"3/5", time.Time{}, false},
		{"Mar 5", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseUploadDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseUploadDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("parseUploadDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseEmail(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"a@b.io", true},
		{"user1@host2.info", true},
		{"a@b.museum", false},
		{"a@b.c", false},
		{"first.last@b.io", false},
		{"a@sub.b.io", false},
		{"@b.io", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if _, ok := parseEmail(tt.in); ok != tt.ok {
				t.Errorf("parseEmail(%q) = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}
