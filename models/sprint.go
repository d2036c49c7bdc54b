package models

import "time"

const (
	SprintPlanejamento = "planejamento"
	SprintAtiva        = "ativa"
	SprintConcluida    = "concluida"
)

type Sprint struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	NumeroSprint int       `gorm:"not null" json:"numero_sprint"`
	DataInicio   time.Time `gorm:"not null" json:"data_inicio"`
	DataFim      time.Time `gorm:"not null" json:"data_fim"`
	Status       string    `gorm:"type:enum('planejamento','ativa','concluida');default:'planejamento';not null" json:"status"`
	Meta         *string   `gorm:"type:text" json:"meta,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

func (Sprint) TableName() string {
	return "sprints"
}
