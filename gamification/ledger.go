package gamification

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

var ErrSaldoInsuficiente = errors.New("saldo de dicoins insuficiente")

// Credit adds valor DiCoins to the user's balance and cumulative earnings and
// appends the ledger row. Must run inside the caller's transaction so the
// balance update and the ledger row commit together.
func Credit(tx *gorm.DB, userID uint, valor int, motivo string, tarefaID *uint) error {
	if valor <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", valor)
	}
	res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"dicoins_saldo":       gorm.Expr("dicoins_saldo + ?", valor),
		"dicoins_total_ganho": gorm.Expr("dicoins_total_ganho + ?", valor),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	trx := models.DicoinTransaction{
		UserID:     userID,
		Tipo:       models.DicoinGanho,
		Valor:      valor,
		Motivo:     motivo,
		TarefaID:   tarefaID,
		Referencia: utils.GenerateTransactionRef(userID),
	}
	return tx.Create(&trx).Error
}

// Debit removes valor DiCoins. The decrement is conditional on the balance
// covering the amount, so two concurrent debits can never drive the balance
// negative; the loser sees ErrSaldoInsuficiente.
func Debit(tx *gorm.DB, userID uint, valor int, motivo string) error {
	if valor <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", valor)
	}
	res := tx.Model(&models.User{}).
		Where("id = ? AND dicoins_saldo >= ?", userID, valor).
		Updates(map[string]interface{}{
			"dicoins_saldo":       gorm.Expr("dicoins_saldo - ?", valor),
			"dicoins_total_gasto": gorm.Expr("dicoins_total_gasto + ?", valor),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSaldoInsuficiente
	}
	trx := models.DicoinTransaction{
		UserID:     userID,
		Tipo:       models.DicoinGasto,
		Valor:      valor,
		Motivo:     motivo,
		Referencia: utils.GenerateTransactionRef(userID),
	}
	return tx.Create(&trx).Error
}

// GrantXP adds xp to the user's lifetime and sprint totals under a row lock
// and recomputes the tier. Returns whether the user climbed a tier and the
// tier after the grant; the caller decides whether to emit a feed event.
func GrantXP(tx *gorm.DB, userID uint, xp int) (bool, models.Nivel, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		return false, "", err
	}
	novoNivel := NivelForXP(user.XPTotal + xp)
	updates := map[string]interface{}{
		"xp_total":        gorm.Expr("xp_total + ?", xp),
		"xp_sprint_atual": gorm.Expr("xp_sprint_atual + ?", xp),
	}
	subiu := NivelIndex(novoNivel) > NivelIndex(user.Nivel)
	if subiu {
		updates["nivel"] = novoNivel
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return false, "", err
	}
	return subiu, novoNivel, nil
}

// EmitEvento appends a social feed event.
func EmitEvento(tx *gorm.DB, userID uint, tipo string, conteudo models.JSONMap) error {
	return tx.Create(&models.FeedEvento{
		UserID:   userID,
		Tipo:     tipo,
		Conteudo: conteudo,
	}).Error
}
