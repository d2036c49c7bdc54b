package auth

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/gamification"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,emailok"`
	Password string `json:"password" validate:"required,pwdmin"`
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	db := database.DB

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "E-mail ou senha incorretos"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Muitas tentativas de login. Tente novamente mais tarde.", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "E-mail ou senha incorretos"})
		return
	}
	middleware.ResetFailedLogin(user.ID)

	_ = db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_signed_in", time.Now()).Error

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Falha no login"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Falha ao salvar refresh token"})
		return
	}

	progress := gamification.Progress(user.XPTotal)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login realizado, redirecionando...",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": time.Now().Add(15 * time.Minute).UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"id":                        user.ID,
				"name":                      user.Name,
				"email":                     user.Email,
				"role":                      user.Role,
				"coordenadoria_id":          user.CoordenadoriaID,
				"nivel":                     user.Nivel,
				"titulo":                    progress.Titulo,
				"xp_total":                  user.XPTotal,
				"xp_sprint_atual":           user.XPSprintAtual,
				"dicoins_saldo":             user.DicoinsSaldo,
				"streak_atual":              user.StreakAtual,
				"tem_escudo":                user.TemEscudo,
				"segunda_chance_disponivel": user.SegundaChance,
				"avatar_config":             user.AvatarConfig,
			},
		},
	})
}
