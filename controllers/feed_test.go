package controllers

import (
	"testing"

	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
)

func TestAggregateReactions(t *testing.T) {
	reactions := []models.FeedReaction{
		{EventoID: 1, UserID: 10, Emoji: "🔥"},
		{EventoID: 1, UserID: 11, Emoji: "👏"},
		{EventoID: 1, UserID: 12, Emoji: "🔥"},
		{EventoID: 1, UserID: 10, Emoji: "👏"},
	}

	out := aggregateReactions(reactions, 10)
	if len(out) != 2 {
		t.Fatalf("expected 2 emoji groups, got %d", len(out))
	}
	if out[0].Emoji != "🔥" || out[0].Count != 2 || !out[0].Reacted {
		t.Errorf("unexpected first group: %+v", out[0])
	}
	if out[1].Emoji != "👏" || out[1].Count != 2 || !out[1].Reacted {
		t.Errorf("unexpected second group: %+v", out[1])
	}

	// viewer without reactions
	out = aggregateReactions(reactions, 99)
	for _, g := range out {
		if g.Reacted {
			t.Errorf("viewer 99 should not have reacted with %s", g.Emoji)
		}
	}
}

func TestAggregateReactionsEmpty(t *testing.T) {
	out := aggregateReactions(nil, 1)
	if len(out) != 0 {
		t.Fatalf("expected empty summary, got %d entries", len(out))
	}
}
