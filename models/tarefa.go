package models

import "time"

const (
	TarefaTodo       = "todo"
	TarefaInProgress = "in_progress"
	TarefaReview     = "review"
	TarefaDone       = "done"
	TarefaRejected   = "rejected"
)

type Tarefa struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SprintID        uint       `gorm:"not null;index" json:"sprint_id"`
	Titulo          string     `gorm:"size:255;not null" json:"titulo"`
	Descricao       *string    `gorm:"type:text" json:"descricao,omitempty"`
	CoordenadoriaID *uint      `json:"coordenadoria_id,omitempty"`
	PontosXP        int        `gorm:"column:pontos_xp;not null;default:10" json:"pontos_xp"`
	Prazo           *time.Time `json:"prazo,omitempty"`
	Status          string     `gorm:"type:enum('todo','in_progress','review','done','rejected');default:'todo';not null" json:"status"`
	CreatedBy       uint       `gorm:"not null" json:"created_by"`
	FeedbackRejeicao *string   `gorm:"type:text" json:"feedback_rejeicao,omitempty"`
	Tags            StringList `gorm:"type:json" json:"tags,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"-"`
}

func (Tarefa) TableName() string {
	return "tarefas"
}

// TarefaMembro links a task to an assigned user with a contribution share.
// Shares are floor(100/n) at assignment time and may not sum to 100.
type TarefaMembro struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	TarefaID               uint       `gorm:"not null;index" json:"tarefa_id"`
	UserID                 uint       `gorm:"not null;index" json:"user_id"`
	ContribuicaoPercentual int        `gorm:"not null;default:100" json:"contribuicao_percentual"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
}

func (TarefaMembro) TableName() string {
	return "tarefas_membros"
}
