package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Nivel is the progression tier, ordered trainee -> virtuoso.
// Thresholds and titles live in the gamification package.
type Nivel string

const (
	NivelTrainee     Nivel = "trainee"
	NivelAssessor    Nivel = "assessor"
	NivelCoordenador Nivel = "coordenador"
	NivelMaestro     Nivel = "maestro"
	NivelVirtuoso    Nivel = "virtuoso"
)

// AvatarConfig is stored as a json column on users.
type AvatarConfig struct {
	SkinTone      string `json:"skin_tone,omitempty"`
	HairStyle     string `json:"hair_style,omitempty"`
	HairColor     string `json:"hair_color,omitempty"`
	EquippedItems []uint `json:"equipped_items,omitempty"`
}

func (a AvatarConfig) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AvatarConfig) Scan(value interface{}) error {
	if value == nil {
		*a = AvatarConfig{}
		return nil
	}
	b, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, a)
}

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:100;not null" json:"name"`
	Email    string  `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Password string  `gorm:"size:255;not null" json:"-"`
	GoogleID *string `gorm:"size:128;uniqueIndex" json:"-"`
	Role     string  `gorm:"type:enum('user','admin','director');default:'user'" json:"role"`

	CoordenadoriaID *uint `gorm:"index" json:"coordenadoria_id"`

	Nivel             Nivel        `gorm:"type:enum('trainee','assessor','coordenador','maestro','virtuoso');default:'trainee'" json:"nivel"`
	XPTotal           int          `gorm:"column:xp_total;not null;default:0" json:"xp_total"`
	XPSprintAtual     int          `gorm:"column:xp_sprint_atual;not null;default:0" json:"xp_sprint_atual"`
	DicoinsSaldo      int          `gorm:"not null;default:0" json:"dicoins_saldo"`
	DicoinsTotalGanho int          `gorm:"not null;default:0" json:"dicoins_total_ganho"`
	DicoinsTotalGasto int          `gorm:"not null;default:0" json:"dicoins_total_gasto"`
	StreakAtual       int          `gorm:"not null;default:0" json:"streak_atual"`
	StreakRecorde     int          `gorm:"not null;default:0" json:"streak_recorde"`
	TemEscudo         bool         `gorm:"not null;default:false" json:"tem_escudo"`
	SegundaChance     bool         `gorm:"column:segunda_chance_disponivel;not null;default:true" json:"segunda_chance_disponivel"`
	AvatarConfig      AvatarConfig `gorm:"type:json" json:"avatar_config"`

	LastSignedIn time.Time `json:"last_signed_in"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
