package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

// MarketingDashboardHandler aggregates the lead funnel: totals, per-channel
// share, conversion rate and cost per lead from the daily metrics.
func MarketingDashboardHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var totalLeads int64
	if err := db.Model(&models.Lead{}).Count(&totalLeads).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	type canalCount struct {
		Origem string `json:"origem"`
		Total  int64  `json:"total"`
	}
	var porCanal []canalCount
	if err := db.Model(&models.Lead{}).
		Select("origem, COUNT(*) AS total").
		Group("origem").
		Order("total DESC").
		Scan(&porCanal).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	type canalShare struct {
		Origem     string  `json:"origem"`
		Total      int64   `json:"total"`
		Percentual float64 `json:"percentual"`
	}
	shares := make([]canalShare, 0, len(porCanal))
	for _, c := range porCanal {
		pct := 0.0
		if totalLeads > 0 {
			pct = utils.RoundFloat(float64(c.Total)/float64(totalLeads)*100, 1)
		}
		shares = append(shares, canalShare{Origem: c.Origem, Total: c.Total, Percentual: pct})
	}

	var clientes int64
	db.Model(&models.Lead{}).Where("status = ?", models.LeadCliente).Count(&clientes)
	taxaConversao := 0.0
	if totalLeads > 0 {
		taxaConversao = utils.RoundFloat(float64(clientes)/float64(totalLeads)*100, 1)
	}

	// CPL over the last 30 days of daily metrics
	since := time.Now().AddDate(0, 0, -30)
	var gastoTotal float64
	db.Model(&models.MetricaDiaria{}).Where("data >= ?", since).Select("COALESCE(SUM(gasto),0)").Scan(&gastoTotal)
	var leadsGerados int64
	db.Model(&models.MetricaDiaria{}).Where("data >= ?", since).Select("COALESCE(SUM(leads_gerados),0)").Scan(&leadsGerados)
	cpl := 0.0
	if leadsGerados > 0 {
		cpl = utils.RoundFloat(gastoTotal/float64(leadsGerados), 2)
	}

	var campanhasAtivas int64
	db.Model(&models.Campanha{}).Where("status = ?", "ativa").Count(&campanhasAtivas)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"total_leads":       totalLeads,
			"leads_por_canal":   shares,
			"taxa_conversao":    taxaConversao,
			"custo_por_lead":    cpl,
			"gasto_30_dias":     utils.RoundFloat(gastoTotal, 2),
			"campanhas_ativas":  campanhasAtivas,
		},
	})
}

func LeadListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	page, limit, offset := parsePagination(r, 20, 100)

	query := db.Model(&models.Lead{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if origem := r.URL.Query().Get("origem"); origem != "" {
		query = query.Where("origem = ?", origem)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		s := "%" + search + "%"
		query = query.Where("nome LIKE ? OR email LIKE ? OR empresa LIKE ?", s, s, s)
	}

	var total int64
	query.Count(&total)

	var leads []models.Lead
	if err := query.Order("data_captura DESC").Limit(limit).Offset(offset).Find(&leads).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"leads": leads,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

type LeadCreateRequest struct {
	Nome        string  `json:"nome" validate:"required"`
	Email       string  `json:"email" validate:"required,emailok"`
	Telefone    *string `json:"telefone"`
	Empresa     *string `json:"empresa"`
	Cargo       *string `json:"cargo"`
	Linkedin    *string `json:"linkedin"`
	Origem      string  `json:"origem" validate:"required"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
	CampanhaID  *uint   `json:"campanha_id"`
	Observacoes *string `json:"observacoes"`
}

func LeadCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req LeadCreateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	lead := models.Lead{
		Nome:        req.Nome,
		Email:       req.Email,
		Telefone:    req.Telefone,
		Empresa:     req.Empresa,
		Cargo:       req.Cargo,
		Linkedin:    req.Linkedin,
		Origem:      normalizeOrigem(req.Origem),
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		Status:      models.LeadProspecto,
		CampanhaID:  req.CampanhaID,
		Observacoes: req.Observacoes,
	}
	if err := database.DB.Create(&lead).Error; err != nil {
		log.Printf("[marketing] create lead error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Lead criado", Data: map[string]interface{}{"lead": lead}})
}

// normalizeOrigem maps unknown channel values to "direto".
func normalizeOrigem(origem string) string {
	for _, c := range models.CanaisOrigem {
		if c == origem {
			return origem
		}
	}
	return "direto"
}

type LeadStatusRequest struct {
	Status      string  `json:"status" validate:"required"`
	Observacoes *string `json:"observacoes"`
}

// LeadStatusHandler moves a lead through the pipeline. Reaching cliente also
// records a conversion row.
func LeadStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req LeadStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Status {
	case models.LeadProspecto, models.LeadQualificado, models.LeadProposta, models.LeadCliente, models.LeadPerdido:
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Status inválido"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, id).Error; err != nil {
			return err
		}
		// Updates writes the new status back into lead, so the pipeline
		// position before the move has to be captured first.
		statusAnterior := lead.Status
		updates := map[string]interface{}{"status": req.Status}
		if req.Observacoes != nil {
			updates["observacoes"] = *req.Observacoes
		}
		if err := tx.Model(&lead).Updates(updates).Error; err != nil {
			return err
		}
		if req.Status == models.LeadCliente && statusAnterior != models.LeadCliente {
			return tx.Create(&models.Conversao{
				LeadID:         lead.ID,
				TipoConversao:  "fechamento",
				StatusPipeline: models.LeadCliente,
			}).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Lead não encontrado"})
			return
		}
		log.Printf("[marketing] lead status error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status do lead atualizado"})
}

func CampanhaListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	query := db.Order("data_inicio DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var campanhas []models.Campanha
	if err := query.Find(&campanhas).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"campanhas": campanhas}})
}

type CampanhaCreateRequest struct {
	Nome        string   `json:"nome" validate:"required"`
	Descricao   *string  `json:"descricao"`
	Tipo        string   `json:"tipo" validate:"required"`
	DataInicio  string   `json:"data_inicio" validate:"required"`
	DataFim     *string  `json:"data_fim"`
	BudgetTotal *float64 `json:"budget_total"`
	Objetivo    *string  `json:"objetivo"`
}

func CampanhaCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CampanhaCreateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Tipo {
	case "google_ads", "linkedin", "email", "ebook", "evento", "organico":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "tipo de campanha inválido"})
		return
	}
	inicio, err := time.Parse("2006-01-02", req.DataInicio)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_inicio inválida, use YYYY-MM-DD"})
		return
	}
	var fim *time.Time
	if req.DataFim != nil && *req.DataFim != "" {
		t, err := time.Parse("2006-01-02", *req.DataFim)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_fim inválida, use YYYY-MM-DD"})
			return
		}
		fim = &t
	}
	campanha := models.Campanha{
		Nome:        req.Nome,
		Descricao:   req.Descricao,
		Tipo:        req.Tipo,
		DataInicio:  inicio,
		DataFim:     fim,
		BudgetTotal: req.BudgetTotal,
		Objetivo:    req.Objetivo,
		Status:      "ativa",
	}
	if err := database.DB.Create(&campanha).Error; err != nil {
		log.Printf("[marketing] create campanha error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Campanha criada", Data: map[string]interface{}{"campanha": campanha}})
}

func ConteudoListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	query := db.Order("created_at DESC")
	if tipo := r.URL.Query().Get("tipo"); tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}
	var conteudos []models.Conteudo
	if err := query.Find(&conteudos).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"conteudos": conteudos}})
}
