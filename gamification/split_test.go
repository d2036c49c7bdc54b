package gamification

import "testing"

func TestContribuicaoPercentual(t *testing.T) {
	cases := []struct{ n, want int }{
		{1, 100},
		{2, 50},
		{3, 33}, // 33+33+33 = 99, remainder dropped on purpose
		{4, 25},
		{7, 14},
		{0, 0},
		{-2, 0},
	}
	for _, c := range cases {
		if got := ContribuicaoPercentual(c.n); got != c.want {
			t.Errorf("ContribuicaoPercentual(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestApprovalFanOutArithmetic(t *testing.T) {
	// Task worth 100 XP split between two members at 50% each:
	// each earns 50 XP and 25 DiCoins.
	share := ContribuicaoPercentual(2)
	xp := XPGain(100, share)
	if xp != 50 {
		t.Fatalf("expected 50 xp per member, got %d", xp)
	}
	if dc := DicoinGain(xp); dc != 25 {
		t.Fatalf("expected 25 dicoins per member, got %d", dc)
	}
}

func TestXPGainFloors(t *testing.T) {
	if got := XPGain(10, 33); got != 3 {
		t.Fatalf("expected floor(10*0.33)=3, got %d", got)
	}
	if got := DicoinGain(3); got != 1 {
		t.Fatalf("expected floor(3*0.5)=1, got %d", got)
	}
}
