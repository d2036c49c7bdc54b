package models

import "testing"

func TestJSONMapScan(t *testing.T) {
	var m JSONMap
	if err := m.Scan([]byte(`{"xp":10,"titulo":"Onboarding"}`)); err != nil {
		t.Fatalf("scan []byte: %v", err)
	}
	if m["xp"].(float64) != 10 {
		t.Errorf("expected xp 10, got %v", m["xp"])
	}
	if err := m.Scan(`{"nivel":"assessor"}`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if m["nivel"] != "assessor" {
		t.Errorf("expected nivel assessor, got %v", m["nivel"])
	}
	if err := m.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil map after scanning NULL, got %v", m)
	}
	if err := m.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

func TestStringListRoundTrip(t *testing.T) {
	v, err := StringList{"design", "urgente"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var l StringList
	if err := l.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(l) != 2 || l[0] != "design" || l[1] != "urgente" {
		t.Errorf("unexpected list after round trip: %v", l)
	}

	nv, err := StringList(nil).Value()
	if err != nil || nv != nil {
		t.Errorf("expected NULL for nil list, got %v, %v", nv, err)
	}
}
