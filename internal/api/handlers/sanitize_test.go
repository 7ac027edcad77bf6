package handlers

import (
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../etc/passwd", "etc_passwd"},
		{"..\\..\\windows\\system.ini", "windows_system.ini"},
		{"spaced   out.txt", "spaced_out.txt"},
		{"über-plan.txt", "ber-plan.txt"},
		{"...", ""},
		{"", ""},
		{"a/b/c.txt", "a_b_c.txt"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	if d, err := parseDueDate(""); err != nil || d != nil {
		t.Errorf("empty due date should be nil, got %v, %v", d, err)
	}

	d, err := parseDueDate("2026-09-15")
	if err != nil || d == nil {
		t.Fatalf("bare date should parse, got %v, %v", d, err)
	}
	if d.Year() != 2026 || d.Month() != time.September || d.Day() != 15 {
		t.Errorf("unexpected date %v", d)
	}

	if _, err := parseDueDate("2026-09-15T10:30:00Z"); err != nil {
		t.Errorf("RFC3339 should parse, got %v", err)
	}
	if _, err := parseDueDate("next tuesday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestCombineDateTime(t *testing.T) {
	got, err := combineDateTime("2026-03-01", "14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Errorf("unexpected time %v", got)
	}

	got, err = combineDateTime("2026-03-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 0 {
		t.Errorf("all-day event should start at midnight, got %v", got)
	}

	if _, err := combineDateTime("01.03.2026", "14:30"); err == nil {
		t.Error("expected error for unsupported date format")
	}
}
