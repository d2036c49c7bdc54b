package utils

import (
	"strings"
	"testing"
)

func TestGenerateTransactionRefFormat(t *testing.T) {
	ref := GenerateTransactionRef(42)
	if !strings.HasPrefix(ref, "DCM-") {
		t.Fatalf("unexpected prefix: %s", ref)
	}
	if !strings.HasSuffix(ref, "42") {
		t.Fatalf("reference should end with the user id: %s", ref)
	}
}

func TestGenerateTransactionRefDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := GenerateTransactionRef(7)
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %s", ref)
		}
		seen[ref] = true
	}
}
