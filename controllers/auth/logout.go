package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// revokeBearerJTI blacklists the current access token's jti until its natural
// expiry. Best effort: parse failures never block logout.
func revokeBearerJTI(r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	claims, err := utils.ValidateAccessToken(tokenStr)
	if err != nil {
		return
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return
	}
	var ttl time.Duration
	if expRaw, ok := claims["exp"]; ok {
		switch v := expRaw.(type) {
		case float64:
			ttl = time.Until(time.Unix(int64(v), 0))
		case int64:
			ttl = time.Until(time.Unix(v, 0))
		case int:
			ttl = time.Until(time.Unix(int64(v), 0))
		}
	}
	if ttl < 0 {
		ttl = 0
	}
	_ = utils.RevokeJTI(jti, ttl)
}

// LogoutHandler revokes one refresh token plus the current access token jti.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Corpo JSON inválido"})
		return
	}
	if req.RefreshToken == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "refresh_token é obrigatório"})
		return
	}

	revokeBearerJTI(r)

	// Missing rows still return success to avoid token enumeration.
	_ = database.DB.Model(&models.RefreshToken{}).Where("id = ?", req.RefreshToken).Update("revoked", true).Error
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Sessão encerrada"})
}

// LogoutAllHandler revokes every refresh token of the authenticated user.
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}

	revokeBearerJTI(r)

	if err := database.DB.Model(&models.RefreshToken{}).Where("user_id = ?", uid).Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Todas as sessões foram encerradas"})
}
