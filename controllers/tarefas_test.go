package controllers

import (
	"testing"

	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
)

func TestCanMemberTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.TarefaTodo, models.TarefaInProgress},
		{models.TarefaInProgress, models.TarefaTodo},
		{models.TarefaInProgress, models.TarefaReview},
		{models.TarefaReview, models.TarefaInProgress},
		{models.TarefaRejected, models.TarefaInProgress},
	}
	for _, c := range allowed {
		if !canMemberTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to string }{
		{models.TarefaTodo, models.TarefaReview},
		{models.TarefaTodo, models.TarefaDone},
		{models.TarefaInProgress, models.TarefaDone},
		{models.TarefaReview, models.TarefaDone},
		{models.TarefaReview, models.TarefaRejected},
		{models.TarefaDone, models.TarefaInProgress},
		{models.TarefaDone, models.TarefaTodo},
		{models.TarefaRejected, models.TarefaReview},
		{models.TarefaTodo, models.TarefaTodo},
	}
	for _, c := range denied {
		if canMemberTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be denied", c.from, c.to)
		}
	}
}
