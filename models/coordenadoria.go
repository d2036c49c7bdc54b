package models

import "time"

type Coordenadoria struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"size:100;uniqueIndex;not null" json:"nome"`
	Descricao *string   `gorm:"type:text" json:"descricao,omitempty"`
	Icone     *string   `gorm:"size:50" json:"icone,omitempty"`
	CorTema   *string   `gorm:"size:7" json:"cor_tema,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Coordenadoria) TableName() string {
	return "coordenadorias"
}
