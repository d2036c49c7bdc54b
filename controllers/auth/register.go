package auth

import (
	"errors"
	"log"
	"net/http"
	"os"
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

// WelcomeBonus is credited through the ledger on signup so the balance
// invariant (saldo == ganho - gasto) holds from the first row.
const WelcomeBonus = 50

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,nameok"`
	Email                string `json:"email" validate:"required,emailok"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	DirectorCode         string `json:"director_code"`
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	db := database.DB

	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "E-mail já cadastrado"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[register] DB error checking email: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	role := "user"
	if req.DirectorCode != "" {
		if code := os.Getenv("DIRECTOR_CODE"); code != "" && req.DirectorCode == code {
			role = "director"
		} else {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Código de diretor inválido"})
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	newUser := models.User{
		Name:          req.Name,
		Email:         req.Email,
		Password:      string(hashed),
		Role:          role,
		Nivel:         models.NivelTrainee,
		SegundaChance: true,
		LastSignedIn:  time.Now(),
	}

	// User row and welcome bonus commit together.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		return gamification.Credit(tx, newUser.ID, WelcomeBonus, "Bônus de boas-vindas", nil)
	})
	if err != nil {
		log.Printf("[register] DB create user error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Cadastro falhou, tente novamente"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(newUser.ID, role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Falha ao gerar token"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Falha ao salvar refresh token"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Cadastro realizado, bem-vindo à orquestra!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": time.Now().Add(15 * time.Minute).UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"id":            newUser.ID,
				"name":          newUser.Name,
				"email":         newUser.Email,
				"role":          newUser.Role,
				"nivel":         newUser.Nivel,
				"dicoins_saldo": WelcomeBonus,
			},
		},
	})
}
