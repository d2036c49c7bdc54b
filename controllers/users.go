package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/gamification"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

// UserListHandler lists all members. Director only.
func UserListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	query := db.Order("name ASC")
	if coord := r.URL.Query().Get("coordenadoria_id"); coord != "" {
		query = query.Where("coordenadoria_id = ?", coord)
	}
	if role := r.URL.Query().Get("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"users": users}})
}

func UserGetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Usuário não encontrado"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	var coordNome *string
	if user.CoordenadoriaID != nil {
		var coord models.Coordenadoria
		if err := database.DB.Select("nome").First(&coord, *user.CoordenadoriaID).Error; err == nil {
			coordNome = &coord.Nome
		}
	}
	progress := gamification.Progress(user.XPTotal)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":               user,
			"titulo":             progress.Titulo,
			"coordenadoria_nome": coordNome,
		},
	})
}

// MeHandler returns the caller's own profile.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	var user models.User
	if err := database.DB.First(&user, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	progress := gamification.Progress(user.XPTotal)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":   user,
			"titulo": progress.Titulo,
		},
	})
}

type ProfileUpdateRequest struct {
	Name         *string              `json:"name" validate:"nameok"`
	AvatarConfig *models.AvatarConfig `json:"avatar_config"`
}

// ProfileUpdateHandler lets a member change their display name and avatar.
func ProfileUpdateHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	var req ProfileUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.AvatarConfig != nil {
		updates["avatar_config"] = *req.AvatarConfig
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nada para atualizar"})
		return
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", uid).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Perfil atualizado"})
}

type UserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UserRoleHandler changes a member's role. Director only.
func UserRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req UserRoleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Role {
	case "user", "admin", "director":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Role inválida"})
		return
	}
	res := database.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Usuário não encontrado"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Role atualizada"})
}

type UserCoordenadoriaRequest struct {
	CoordenadoriaID *uint `json:"coordenadoria_id"`
}

// UserCoordenadoriaHandler assigns a member to a coordenadoria, or clears the
// assignment with null. Director only.
func UserCoordenadoriaHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req UserCoordenadoriaRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.CoordenadoriaID != nil {
		var coord models.Coordenadoria
		if err := database.DB.First(&coord, *req.CoordenadoriaID).Error; err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Coordenadoria não encontrada"})
			return
		}
	}
	res := database.DB.Model(&models.User{}).Where("id = ?", id).Update("coordenadoria_id", req.CoordenadoriaID)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Usuário não encontrado"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Coordenadoria atribuída"})
}

// TeamMembersHandler lists members of the caller's coordenadoria.
func TeamMembersHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	var me models.User
	if err := database.DB.Select("id, coordenadoria_id").First(&me, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	if me.CoordenadoriaID == nil {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"members": []models.User{}}})
		return
	}
	var members []models.User
	if err := database.DB.Where("coordenadoria_id = ?", *me.CoordenadoriaID).Order("xp_total DESC").Find(&members).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"members": members}})
}
