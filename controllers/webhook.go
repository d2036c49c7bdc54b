package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

type leadWebhookPayload struct {
	Nome        string  `json:"nome"`
	Email       string  `json:"email"`
	Telefone    *string `json:"telefone"`
	Empresa     *string `json:"empresa"`
	Cargo       *string `json:"cargo"`
	Origem      string  `json:"origem"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
}

// LeadWebhookHandler ingests leads pushed by external marketing tools. Auth is
// a shared bearer key; unknown channels normalize to direto and a repeated
// email updates the existing lead instead of duplicating it.
func LeadWebhookHandler(w http.ResponseWriter, r *http.Request) {
	apiKey := os.Getenv("WEBHOOK_API_KEY")
	if apiKey == "" {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Webhook não configurado"})
		return
	}
	authz := r.Header.Get("Authorization")
	provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if !strings.HasPrefix(authz, "Bearer ") || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}

	var payload leadWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Corpo JSON inválido"})
		return
	}
	payload.Nome = strings.TrimSpace(payload.Nome)
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Nome == "" || payload.Email == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "nome e email são obrigatórios"})
		return
	}

	origem := normalizeOrigem(payload.Origem)

	var lead models.Lead
	created := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", payload.Email).First(&lead).Error
		if err == nil {
			updates := map[string]interface{}{"nome": payload.Nome}
			if payload.Telefone != nil {
				updates["telefone"] = *payload.Telefone
			}
			if payload.Empresa != nil {
				updates["empresa"] = *payload.Empresa
			}
			if payload.Cargo != nil {
				updates["cargo"] = *payload.Cargo
			}
			return tx.Model(&lead).Updates(updates).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		created = true
		lead = models.Lead{
			Nome:        payload.Nome,
			Email:       payload.Email,
			Telefone:    payload.Telefone,
			Empresa:     payload.Empresa,
			Cargo:       payload.Cargo,
			Origem:      origem,
			UTMSource:   payload.UTMSource,
			UTMMedium:   payload.UTMMedium,
			UTMCampaign: payload.UTMCampaign,
			Status:      models.LeadProspecto,
		}
		return tx.Create(&lead).Error
	})
	if err != nil {
		log.Printf("[webhook] lead intake error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	status := http.StatusOK
	msg := "Lead atualizado"
	if created {
		status = http.StatusCreated
		msg = "Lead criado"
	}
	utils.WriteJSON(w, status, utils.APIResponse{Success: true, Message: msg, Data: map[string]interface{}{"lead_id": lead.ID}})
}
