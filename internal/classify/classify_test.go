package classify

import (
	"testing"
)

func TestClassifyPassesFilter(t *testing.T) {
	c := New()

	tests := []struct {
		name   string
		in     Input
		passes bool
	}{
		{
			name: "strong indicator rescues performance venue",
			in: Input{
				Title:       "Salsa Night at the Opera House",
				Description: "Weekly salsa social dance with beginner lesson at 8pm.",
				Venue:       "Grand Opera House",
			},
			passes: true,
		},
		{
			name: "ambiguous style alone is rejected",
			in: Input{
				Title:       "House Party Downtown",
				Description: "DJs all night, drinks and good vibes.",
			},
			passes: false,
		},
		{
			name: "noise pattern without strong indicator is rejected",
			in: Input{
				Title:       "Swan Lake",
				Description: "A classical ballet performance by the national company.",
			},
			passes: false,
		},
		{
			name: "noise pattern with workshop is rescued",
			in: Input{
				Title:       "Tango in Concert",
				Description: "Live orquesta tipica followed by a milonga and a tango workshop.",
			},
			passes: true,
		},
		{
			name: "unambiguous style keyword passes on its own",
			in: Input{
				Title:       "Bachata Sensual Night",
				Description: "Doors open at 9.",
			},
			passes: true,
		},
		{
			name: "performance venue without corroboration is rejected",
			in: Input{
				Title: "Salsa Spectacular",
				Venue: "Riverside Theatre",
			},
			passes: false,
		},
		{
			name: "performance venue with provider confirmation passes",
			in: Input{
				Title:             "Salsa Spectacular",
				Venue:             "Riverside Theatre",
				ProviderConfirmed: true,
			},
			passes: true,
		},
		{
			name: "provider confirmation passes with no style keywords",
			in: Input{
				Title:             "Friday Night Social",
				ProviderConfirmed: true,
			},
			passes: true,
		},
		{
			name:   "no signals at all is rejected",
			in:     Input{Title: "Food Truck Festival"},
			passes: false,
		},
		{
			name: "ambiguous style with activity word passes",
			in: Input{
				Title:       "House Dance Class",
				Description: "Footwork fundamentals for all levels.",
			},
			passes: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.Classify(tt.in)
			if out.PassesFilter != tt.passes {
				t.Errorf("Classify(%q) passes = %v, want %v", tt.in.Title, out.PassesFilter, tt.passes)
			}
		})
	}
}

func TestClassifyStyles(t *testing.T) {
	c := New()

	out := c.Classify(Input{
		Title:       "Salsa y Bachata Social",
		Description: "Clases de kizomba antes del social.",
	})
	want := map[string]bool{"Salsa": true, "Bachata": true, "Kizomba": true}
	for _, s := range out.Styles {
		if !want[s] {
			t.Errorf("unexpected style %q", s)
		}
		delete(want, s)
	}
	for s := range want {
		t.Errorf("missing style %q", s)
	}
	if !out.PassesFilter {
		t.Error("expected multi-style social to pass the filter")
	}
}

func TestClassifyStyleOrderStable(t *testing.T) {
	c := New()
	a := c.Classify(Input{Title: "West Coast Swing and Zouk night"})
	b := c.Classify(Input{Title: "West Coast Swing and Zouk night"})
	if len(a.Styles) != len(b.Styles) {
		t.Fatalf("style counts differ: %d vs %d", len(a.Styles), len(b.Styles))
	}
	for i := range a.Styles {
		if a.Styles[i] != b.Styles[i] {
			t.Errorf("style order differs at %d: %q vs %q", i, a.Styles[i], b.Styles[i])
		}
	}
}
