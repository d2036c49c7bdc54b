package controllers

import (
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

func CoordenadoriaListHandler(w http.ResponseWriter, r *http.Request) {
	var coords []models.Coordenadoria
	if err := database.DB.Order("nome ASC").Find(&coords).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"coordenadorias": coords}})
}

func CoordenadoriaGetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var coord models.Coordenadoria
	if err := database.DB.First(&coord, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Coordenadoria não encontrada"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	var members []models.User
	if err := database.DB.Where("coordenadoria_id = ?", coord.ID).Order("name ASC").Find(&members).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"coordenadoria": coord,
			"members":       members,
		},
	})
}

type CoordenadoriaRequest struct {
	Nome      string  `json:"nome" validate:"required"`
	Descricao *string `json:"descricao"`
	Icone     *string `json:"icone"`
	CorTema   *string `json:"cor_tema"`
}

func CoordenadoriaCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CoordenadoriaRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	coord := models.Coordenadoria{
		Nome:      req.Nome,
		Descricao: req.Descricao,
		Icone:     req.Icone,
		CorTema:   req.CorTema,
	}
	if err := database.DB.Create(&coord).Error; err != nil {
		log.Printf("[coordenadorias] create error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Coordenadoria criada", Data: map[string]interface{}{"coordenadoria": coord}})
}

type CoordenadoriaUpdateRequest struct {
	Nome      *string `json:"nome"`
	Descricao *string `json:"descricao"`
	Icone     *string `json:"icone"`
	CorTema   *string `json:"cor_tema"`
}

func CoordenadoriaUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req CoordenadoriaUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	var coord models.Coordenadoria
	if err := database.DB.First(&coord, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Coordenadoria não encontrada"})
		return
	}
	updates := map[string]interface{}{}
	if req.Nome != nil && *req.Nome != "" {
		updates["nome"] = *req.Nome
	}
	if req.Descricao != nil {
		updates["descricao"] = *req.Descricao
	}
	if req.Icone != nil {
		updates["icone"] = *req.Icone
	}
	if req.CorTema != nil {
		updates["cor_tema"] = *req.CorTema
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nada para atualizar"})
		return
	}
	if err := database.DB.Model(&coord).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Coordenadoria atualizada", Data: map[string]interface{}{"coordenadoria": coord}})
}

// CoordenadoriaDeleteHandler removes a coordenadoria and clears its members'
// assignment in the same transaction.
func CoordenadoriaDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var coord models.Coordenadoria
		if err := tx.First(&coord, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("coordenadoria_id = ?", coord.ID).Update("coordenadoria_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&coord).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Coordenadoria não encontrada"})
			return
		}
		log.Printf("[coordenadorias] delete error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Coordenadoria excluída"})
}
