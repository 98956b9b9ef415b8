package service

import (
	"strings"
	"testing"
)

func TestProfanityFilterContains(t *testing.T) {
	filter := NewProfanityFilter(nil)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean text", "selling 3 star fragments for 500 bells", false},
		{"plain word", "you are a scammer", true},
		{"uppercase", "SCAMMER alert", true},
		{"mixed case", "ScAmMeR", true},
		{"dot separated", "s.c.a.m.m.e.r", true},
		{"dash separated", "s-c-a-m-m-e-r", true},
		{"star separated", "f*u*c*k", true},
		{"space separated", "f u c k", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Contains(tt.text); got != tt.want {
				t.Fatalf("Contains(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestProfanityFilterMask(t *testing.T) {
	filter := NewProfanityFilter([]string{"scam"})

	got := filter.Mask("that deal is a scam, do not pay")
	if got != "that deal is a ****, do not pay" {
		t.Fatalf("Mask = %q", got)
	}

	// Separator-padded matches are masked over their full span.
	got = filter.Mask("s.c.a.m")
	if got != strings.Repeat("*", 7) {
		t.Fatalf("Mask(separated) = %q", got)
	}

	// Clean text passes through untouched.
	clean := "meet at the airport in 5 minutes"
	if got := filter.Mask(clean); got != clean {
		t.Fatalf("Mask(clean) = %q", got)
	}
}

func TestProfanityFilterCustomWords(t *testing.T) {
	filter := NewProfanityFilter([]string{"turnip", "  ", ""})

	if !filter.Contains("TURNIP prices are fake") {
		t.Fatal("custom word not matched")
	}
	if filter.Contains("scammer") {
		t.Fatal("default words should not apply with a custom list")
	}
}
