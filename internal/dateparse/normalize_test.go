package dateparse

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"qui., 15 de mai.", "15 m5"},
		{"sáb., 20 de junio", "20 m6"},
		{"El 3 de Março", "3 m3"},
		{"Mon, Jun 1", "m6 1"},
		{"20 de jun. – 22 de jun.", "20 m6"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripLeadingWeekdayOnlyAtHead(t *testing.T) {
	// "mar" is both a Spanish weekday abbreviation and a month prefix;
	// stripping must only happen in leading position.
	if got := stripLeadingWeekday("mar., 3 de marzo"); got != "3 de marzo" {
		t.Errorf("leading weekday not stripped: %q", got)
	}
	if got := stripLeadingWeekday("3 de mar."); got != "3 de mar." {
		t.Errorf("non-leading token stripped: %q", got)
	}
}

func TestExtractTimePrefersTwelveHourForm(t *testing.T) {
	hour, minute, found, _ := extractTime("jun 5 7:30 pm")
	if !found || hour != 19 || minute != 30 {
		t.Errorf("got %02d:%02d found=%v, want 19:30", hour, minute, found)
	}

	hour, _, found, remainder := extractTime("jun 5 19h")
	if !found || hour != 19 {
		t.Errorf("24h form not extracted: hour=%d found=%v", hour, found)
	}
	if contains := Normalize(remainder); contains == "" {
		t.Errorf("remainder lost the date tokens")
	}
}

func TestFold(t *testing.T) {
	if got := fold("SÁB, Março"); got != "sab, marco" {
		t.Errorf("fold = %q", got)
	}
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		in        string
		hour, min int
		ok        bool
	}{
		{"Fri, May 15, 8:00 – 11:00 PM", 23, 0, true},
		{"qui., 15 de mai., 20:00 – 23:30", 23, 30, true},
		{"May 15, 7 PM", 0, 0, false},
		{"May 15 to May 16", 0, 0, false},
	}

	for _, tt := range tests {
		hour, minute, ok := EndTime(tt.in)
		if ok != tt.ok || hour != tt.hour || minute != tt.min {
			t.Errorf("EndTime(%q) = %02d:%02d ok=%v, want %02d:%02d ok=%v",
				tt.in, hour, minute, ok, tt.hour, tt.min, tt.ok)
		}
	}
}

func TestResolveRangeCopiesTrailingMeridiem(t *testing.T) {
	// Only the right side of "7 – 9 pm" carries the marker; the rewrite
	// must copy it onto the left side, not drop it from both.
	tests := []struct {
		in   string
		want string
	}{
		{"may 15, 7 – 9 pm", "may 15, 7 pm"},
		{"8:00 – 11:00 pm", "8:00 pm"},
	}

	for _, tt := range tests {
		if got := resolveRange(tt.in); got != tt.want {
			t.Errorf("resolveRange(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
