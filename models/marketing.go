package models

import "time"

const (
	LeadProspecto   = "prospecto"
	LeadQualificado = "qualificado"
	LeadProposta    = "proposta"
	LeadCliente     = "cliente"
	LeadPerdido     = "perdido"
)

// CanaisOrigem lists the accepted lead acquisition channels. Webhook payloads
// with anything else are normalized to "direto".
var CanaisOrigem = []string{
	"google_ads", "linkedin", "instagram", "ebook", "organico_linkedin", "referral", "direto",
}

type Lead struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Nome        string    `gorm:"size:255;not null" json:"nome"`
	Email       string    `gorm:"size:320;not null;index" json:"email"`
	Telefone    *string   `gorm:"size:20" json:"telefone,omitempty"`
	Empresa     *string   `gorm:"size:255" json:"empresa,omitempty"`
	Cargo       *string   `gorm:"size:100" json:"cargo,omitempty"`
	Linkedin    *string   `gorm:"size:500" json:"linkedin,omitempty"`
	Origem      string    `gorm:"type:enum('google_ads','linkedin','instagram','ebook','organico_linkedin','referral','direto');not null" json:"origem"`
	UTMSource   *string   `gorm:"column:utm_source;size:100" json:"utm_source,omitempty"`
	UTMMedium   *string   `gorm:"column:utm_medium;size:100" json:"utm_medium,omitempty"`
	UTMCampaign *string   `gorm:"column:utm_campaign;size:100" json:"utm_campaign,omitempty"`
	Status      string    `gorm:"type:enum('prospecto','qualificado','proposta','cliente','perdido');default:'prospecto';not null" json:"status"`
	DataCaptura time.Time `gorm:"autoCreateTime" json:"data_captura"`
	CampanhaID  *uint     `json:"campanha_id,omitempty"`
	Observacoes *string   `gorm:"type:text" json:"observacoes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

func (Lead) TableName() string {
	return "leads"
}

type Campanha struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Nome        string     `gorm:"size:255;not null" json:"nome"`
	Descricao   *string    `gorm:"type:text" json:"descricao,omitempty"`
	Tipo        string     `gorm:"type:enum('google_ads','linkedin','email','ebook','evento','organico');not null" json:"tipo"`
	DataInicio  time.Time  `gorm:"not null" json:"data_inicio"`
	DataFim     *time.Time `json:"data_fim,omitempty"`
	BudgetTotal *float64   `gorm:"type:decimal(10,2)" json:"budget_total,omitempty"`
	Objetivo    *string    `gorm:"size:255" json:"objetivo,omitempty"`
	Status      string     `gorm:"size:50;default:'ativa';not null" json:"status"`
	Metricas    JSONMap    `gorm:"type:json" json:"metricas,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
}

func (Campanha) TableName() string {
	return "campanhas"
}

type MetricaDiaria struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Data         time.Time `gorm:"not null;index" json:"data"`
	Canal        string    `gorm:"type:enum('google_ads','linkedin','instagram','ebook','organico_linkedin','referral','direto');not null" json:"canal"`
	CampanhaID   *uint     `json:"campanha_id,omitempty"`
	LeadsGerados int       `gorm:"not null;default:0" json:"leads_gerados"`
	Impressoes   int       `gorm:"not null;default:0" json:"impressoes"`
	Cliques      int       `gorm:"not null;default:0" json:"cliques"`
	Conversoes   int       `gorm:"not null;default:0" json:"conversoes"`
	Gasto        float64   `gorm:"type:decimal(10,2);not null;default:0" json:"gasto"`
	Receita      float64   `gorm:"type:decimal(10,2);default:0" json:"receita"`
	Observacoes  *string   `gorm:"type:text" json:"observacoes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MetricaDiaria) TableName() string {
	return "metricas_diarias"
}

type Conversao struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LeadID         uint      `gorm:"not null;index" json:"lead_id"`
	TipoConversao  string    `gorm:"size:100;not null" json:"tipo_conversao"`
	StatusPipeline string    `gorm:"size:50;not null" json:"status_pipeline"`
	ValorEstimado  *float64  `gorm:"type:decimal(12,2)" json:"valor_estimado,omitempty"`
	Observacoes    *string   `gorm:"type:text" json:"observacoes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

func (Conversao) TableName() string {
	return "conversoes"
}

type Conteudo struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Titulo         string     `gorm:"size:255;not null" json:"titulo"`
	Tipo           string     `gorm:"size:50;not null" json:"tipo"`
	URLSlug        string     `gorm:"column:url_slug;size:255;uniqueIndex;not null" json:"url_slug"`
	Descricao      *string    `gorm:"type:text" json:"descricao,omitempty"`
	EbookDownloads int        `gorm:"default:0" json:"ebook_downloads"`
	Views          int        `gorm:"default:0" json:"views"`
	Engajamento    int        `gorm:"default:0" json:"engajamento"`
	PublicadoEm    *time.Time `json:"publicado_em,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
}

func (Conteudo) TableName() string {
	return "conteudos"
}
