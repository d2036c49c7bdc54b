package models

import "time"

const (
	DicoinGanho = "ganho"
	DicoinGasto = "gasto"
	DicoinPerda = "perda"
)

// DicoinTransaction is the append-only ledger. Rows are never updated or
// deleted; the user's saldo must equal total_ganho - total_gasto at all times.
type DicoinTransaction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Tipo       string    `gorm:"type:enum('ganho','gasto','perda');not null" json:"tipo"`
	Valor      int       `gorm:"not null" json:"valor"`
	Motivo     string    `gorm:"size:255;not null" json:"motivo"`
	TarefaID   *uint     `json:"tarefa_id,omitempty"`
	Referencia string    `gorm:"size:64;uniqueIndex;not null" json:"referencia"`
	Timestamp  time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (DicoinTransaction) TableName() string {
	return "dicoin_transactions"
}
