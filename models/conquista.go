package models

import "time"

type Conquista struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Nome              string    `gorm:"size:100;not null" json:"nome"`
	Descricao         *string   `gorm:"type:text" json:"descricao,omitempty"`
	Categoria         string    `gorm:"type:enum('valor','comunicacao','estruturacao');not null" json:"categoria"`
	Raridade          string    `gorm:"type:enum('bronze','prata','ouro');default:'bronze';not null" json:"raridade"`
	IconeURL          *string   `gorm:"size:500" json:"icone_url,omitempty"`
	Criterio          JSONMap   `gorm:"type:json" json:"criterio,omitempty"`
	RecompensaDicoins int       `gorm:"not null;default:10" json:"recompensa_dicoins"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Conquista) TableName() string {
	return "conquistas"
}

type UserConquista struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index:idx_user_conquista,unique" json:"user_id"`
	ConquistaID     uint      `gorm:"not null;index:idx_user_conquista,unique" json:"conquista_id"`
	DataDesbloqueio time.Time `gorm:"autoCreateTime" json:"data_desbloqueio"`
}

func (UserConquista) TableName() string {
	return "user_conquistas"
}
