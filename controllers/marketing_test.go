package controllers

import "testing"

func TestNormalizeOrigem(t *testing.T) {
	cases := map[string]string{
		"google_ads":        "google_ads",
		"linkedin":          "linkedin",
		"organico_linkedin": "organico_linkedin",
		"facebook":          "direto",
		"":                  "direto",
		"GOOGLE_ADS":        "direto",
	}
	for in, want := range cases {
		if got := normalizeOrigem(in); got != want {
			t.Errorf("normalizeOrigem(%q) = %q, want %q", in, got, want)
		}
	}
}
