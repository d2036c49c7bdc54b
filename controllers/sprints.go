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

func SprintListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	query := db.Order("numero_sprint DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var sprints []models.Sprint
	if err := query.Find(&sprints).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"sprints": sprints}})
}

// SprintCurrentHandler returns the single active sprint, or 404 when none.
func SprintCurrentHandler(w http.ResponseWriter, r *http.Request) {
	var sprint models.Sprint
	err := database.DB.Where("status = ?", models.SprintAtiva).Order("numero_sprint DESC").First(&sprint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Nenhuma sprint ativa"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"sprint": sprint}})
}

func SprintGetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var sprint models.Sprint
	if err := database.DB.First(&sprint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Sprint não encontrada"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	var totalTarefas, concluidas int64
	database.DB.Model(&models.Tarefa{}).Where("sprint_id = ?", sprint.ID).Count(&totalTarefas)
	database.DB.Model(&models.Tarefa{}).Where("sprint_id = ? AND status = ?", sprint.ID, models.TarefaDone).Count(&concluidas)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"sprint":             sprint,
			"total_tarefas":      totalTarefas,
			"tarefas_concluidas": concluidas,
		},
	})
}

type SprintCreateRequest struct {
	NumeroSprint int     `json:"numero_sprint" validate:"required"`
	DataInicio   string  `json:"data_inicio" validate:"required"`
	DataFim      string  `json:"data_fim" validate:"required"`
	Meta         *string `json:"meta"`
}

func SprintCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req SprintCreateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	inicio, err := time.Parse("2006-01-02", req.DataInicio)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_inicio inválida, use YYYY-MM-DD"})
		return
	}
	fim, err := time.Parse("2006-01-02", req.DataFim)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_fim inválida, use YYYY-MM-DD"})
		return
	}
	if !fim.After(inicio) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_fim deve ser posterior a data_inicio"})
		return
	}

	sprint := models.Sprint{
		NumeroSprint: req.NumeroSprint,
		DataInicio:   inicio,
		DataFim:      fim,
		Status:       models.SprintPlanejamento,
		Meta:         req.Meta,
	}
	if err := database.DB.Create(&sprint).Error; err != nil {
		log.Printf("[sprints] create error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Sprint criada", Data: map[string]interface{}{"sprint": sprint}})
}

type SprintUpdateRequest struct {
	DataInicio *string `json:"data_inicio"`
	DataFim    *string `json:"data_fim"`
	Meta       *string `json:"meta"`
}

func SprintUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req SprintUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var sprint models.Sprint
	if err := database.DB.First(&sprint, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Sprint não encontrada"})
		return
	}

	updates := map[string]interface{}{}
	if req.DataInicio != nil {
		t, err := time.Parse("2006-01-02", *req.DataInicio)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_inicio inválida, use YYYY-MM-DD"})
			return
		}
		updates["data_inicio"] = t
	}
	if req.DataFim != nil {
		t, err := time.Parse("2006-01-02", *req.DataFim)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "data_fim inválida, use YYYY-MM-DD"})
			return
		}
		updates["data_fim"] = t
	}
	if req.Meta != nil {
		updates["meta"] = *req.Meta
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nada para atualizar"})
		return
	}
	if err := database.DB.Model(&sprint).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Sprint atualizada", Data: map[string]interface{}{"sprint": sprint}})
}

// SprintActivateHandler promotes a sprint to ativa and closes any sprint that
// was active, in one transaction so there is never more than one ativa.
func SprintActivateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.First(&sprint, id).Error; err != nil {
			return err
		}
		if sprint.Status == models.SprintConcluida {
			return errSprintConcluida
		}
		if err := tx.Model(&models.Sprint{}).
			Where("status = ? AND id <> ?", models.SprintAtiva, sprint.ID).
			Update("status", models.SprintConcluida).Error; err != nil {
			return err
		}
		return tx.Model(&sprint).Update("status", models.SprintAtiva).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Sprint não encontrada"})
		case errors.Is(err, errSprintConcluida):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Sprint concluída não pode ser reativada"})
		default:
			log.Printf("[sprints] activate error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Sprint ativada"})
}

var errSprintConcluida = errors.New("sprint concluida")

// SprintDeleteHandler removes a sprint still in planning, along with its
// tasks and assignments. Active or finished sprints cannot be deleted.
func SprintDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var sprint models.Sprint
		if err := tx.First(&sprint, id).Error; err != nil {
			return err
		}
		if sprint.Status != models.SprintPlanejamento {
			return errSprintNaoPlanejamento
		}
		var tarefaIDs []uint
		if err := tx.Model(&models.Tarefa{}).Where("sprint_id = ?", sprint.ID).Pluck("id", &tarefaIDs).Error; err != nil {
			return err
		}
		if len(tarefaIDs) > 0 {
			if err := tx.Where("tarefa_id IN ?", tarefaIDs).Delete(&models.TarefaMembro{}).Error; err != nil {
				return err
			}
			if err := tx.Where("sprint_id = ?", sprint.ID).Delete(&models.Tarefa{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&sprint).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Sprint não encontrada"})
		case errors.Is(err, errSprintNaoPlanejamento):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Apenas sprints em planejamento podem ser excluídas"})
		default:
			log.Printf("[sprints] delete error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Sprint excluída"})
}

var errSprintNaoPlanejamento = errors.New("sprint fora de planejamento")
