package gamification

import (
	"testing"

	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
)

func TestNivelForXPThresholds(t *testing.T) {
	cases := []struct {
		xp   int
		want models.Nivel
	}{
		{0, models.NivelTrainee},
		{99, models.NivelTrainee},
		{100, models.NivelAssessor},
		{299, models.NivelAssessor},
		{300, models.NivelCoordenador},
		{599, models.NivelCoordenador},
		{600, models.NivelMaestro},
		{999, models.NivelMaestro},
		{1000, models.NivelVirtuoso},
		{5000, models.NivelVirtuoso},
	}
	for _, c := range cases {
		if got := NivelForXP(c.xp); got != c.want {
			t.Errorf("NivelForXP(%d) = %s, want %s", c.xp, got, c.want)
		}
	}
}

func TestNivelForXPMonotonic(t *testing.T) {
	prev := -1
	for xp := 0; xp <= 1200; xp++ {
		idx := NivelIndex(NivelForXP(xp))
		if idx < prev {
			t.Fatalf("tier order regressed at xp=%d", xp)
		}
		prev = idx
	}
}

func TestProgressMidTier(t *testing.T) {
	p := Progress(150)
	if p.Nivel != models.NivelAssessor {
		t.Fatalf("expected assessor, got %s", p.Nivel)
	}
	if p.Titulo != "Assessor Orc" {
		t.Fatalf("unexpected title %q", p.Titulo)
	}
	if p.ProximoTitulo == nil || *p.ProximoTitulo != "Coordenador Orc" {
		t.Fatalf("unexpected next title %v", p.ProximoTitulo)
	}
	// 150 sits 50/200 into the assessor band
	if p.Percentual != 25 {
		t.Fatalf("expected 25%%, got %v", p.Percentual)
	}
	if p.XPParaProximo != 150 {
		t.Fatalf("expected 150 xp remaining, got %d", p.XPParaProximo)
	}
}

func TestProgressTopTier(t *testing.T) {
	p := Progress(4321)
	if p.Nivel != models.NivelVirtuoso {
		t.Fatalf("expected virtuoso, got %s", p.Nivel)
	}
	if p.ProximoTitulo != nil {
		t.Fatalf("top tier must have no next title, got %v", *p.ProximoTitulo)
	}
	if p.Percentual != 100 || p.XPParaProximo != 0 {
		t.Fatalf("top tier progress should be 100/0, got %v/%d", p.Percentual, p.XPParaProximo)
	}
}

func TestProgressTierFloor(t *testing.T) {
	p := Progress(300)
	if p.Nivel != models.NivelCoordenador || p.Percentual != 0 {
		t.Fatalf("expected 0%% at tier floor, got %s %v", p.Nivel, p.Percentual)
	}
}

func TestNivelIndexUnknown(t *testing.T) {
	if NivelIndex(models.Nivel("grao-mestre")) != -1 {
		t.Fatal("unknown tier should index to -1")
	}
}
