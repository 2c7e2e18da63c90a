package repository

import "testing"

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		got, ok := ParseCategory(string(c))
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, ok)
		}
	}

	for _, invalid := range []string{"", "Sports", "cybersecurity", "Cybersecurity "} {
		if _, ok := ParseCategory(invalid); ok {
			t.Errorf("ParseCategory(%q) unexpectedly valid", invalid)
		}
	}
}

func TestFallbackCategoryIsValid(t *testing.T) {
	t.Parallel()

	if _, ok := ParseCategory(string(FallbackCategory)); !ok {
		t.Fatal("fallback category must be part of the fixed set")
	}
}
