package models

import "time"

const (
	FeedTarefaCompleta = "tarefa_completa"
	FeedNivelSubiu     = "nivel_subiu"
	FeedConquista      = "conquista"
	FeedMetaColetiva   = "meta_coletiva"
	FeedItemComprado   = "item_comprado"
)

type FeedEvento struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Tipo      string    `gorm:"type:enum('tarefa_completa','nivel_subiu','conquista','meta_coletiva','item_comprado');not null" json:"tipo"`
	Conteudo  JSONMap   `gorm:"type:json" json:"conteudo,omitempty"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (FeedEvento) TableName() string {
	return "feed_eventos"
}

type FeedReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventoID  uint      `gorm:"not null;index" json:"evento_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Emoji     string    `gorm:"size:10;not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

func (FeedReaction) TableName() string {
	return "feed_reactions"
}
