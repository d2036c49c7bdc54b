package gamification

import (
	"math"

	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
)

type levelInfo struct {
	Nivel  models.Nivel
	Titulo string
	MinXP  int
}

// Ordered ascending by MinXP. NivelForXP picks the highest entry whose
// threshold is <= the given XP.
var levels = []levelInfo{
	{models.NivelTrainee, "Trainee Orc", 0},
	{models.NivelAssessor, "Assessor Orc", 100},
	{models.NivelCoordenador, "Coordenador Orc", 300},
	{models.NivelMaestro, "Maestro Orc", 600},
	{models.NivelVirtuoso, "Virtuoso Orc", 1000},
}

// LevelProgress describes where a user sits inside the tier ladder.
type LevelProgress struct {
	Nivel         models.Nivel `json:"nivel"`
	Titulo        string       `json:"titulo"`
	ProximoTitulo *string      `json:"proximo_titulo"`
	Percentual    float64      `json:"percentual"`
	XPParaProximo int          `json:"xp_para_proximo"`
}

// NivelForXP maps cumulative XP to a tier. Negative XP clamps to the
// bottom tier.
func NivelForXP(xp int) models.Nivel {
	nivel := levels[0].Nivel
	for _, l := range levels {
		if xp >= l.MinXP {
			nivel = l.Nivel
		}
	}
	return nivel
}

// NivelIndex returns the position of a tier in the fixed ordering, or -1 for
// an unknown value.
func NivelIndex(n models.Nivel) int {
	for i, l := range levels {
		if l.Nivel == n {
			return i
		}
	}
	return -1
}

// Progress computes tier, titles, progress percentage within the tier and XP
// remaining to the next one. At the top tier progress is 100 and remaining 0.
func Progress(xp int) LevelProgress {
	idx := NivelIndex(NivelForXP(xp))
	cur := levels[idx]
	p := LevelProgress{
		Nivel:  cur.Nivel,
		Titulo: cur.Titulo,
	}
	if idx == len(levels)-1 {
		p.Percentual = 100
		p.XPParaProximo = 0
		return p
	}
	next := levels[idx+1]
	p.ProximoTitulo = &next.Titulo
	span := float64(next.MinXP - cur.MinXP)
	pct := float64(xp-cur.MinXP) / span * 100
	p.Percentual = math.Min(100, math.Max(0, pct))
	p.XPParaProximo = next.MinXP - xp
	if p.XPParaProximo < 0 {
		p.XPParaProximo = 0
	}
	return p
}
