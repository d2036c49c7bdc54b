package controllers

import (
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/gamification"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

// ShieldCost is the fixed price of the streak protection shield.
const ShieldCost = 500

var (
	errEscudoJaAtivo     = errors.New("escudo ja ativo")
	errConquistaJaPossui = errors.New("conquista ja desbloqueada")
)

// MyStatsHandler returns the caller's full gamification snapshot.
func MyStatsHandler(w http.ResponseWriter, r *http.Request) {
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

	var tarefasConcluidas int64
	database.DB.Model(&models.TarefaMembro{}).Where("user_id = ? AND completed_at IS NOT NULL", uid).Count(&tarefasConcluidas)
	var conquistas int64
	database.DB.Model(&models.UserConquista{}).Where("user_id = ?", uid).Count(&conquistas)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"nivel":                     progress.Nivel,
			"titulo":                    progress.Titulo,
			"proximo_titulo":            progress.ProximoTitulo,
			"percentual_nivel":          progress.Percentual,
			"xp_para_proximo":           progress.XPParaProximo,
			"xp_total":                  user.XPTotal,
			"xp_sprint_atual":           user.XPSprintAtual,
			"dicoins_saldo":             user.DicoinsSaldo,
			"dicoins_total_ganho":       user.DicoinsTotalGanho,
			"dicoins_total_gasto":       user.DicoinsTotalGasto,
			"streak_atual":              user.StreakAtual,
			"streak_recorde":            user.StreakRecorde,
			"tem_escudo":                user.TemEscudo,
			"segunda_chance_disponivel": user.SegundaChance,
			"tarefas_concluidas":        tarefasConcluidas,
			"conquistas_desbloqueadas":  conquistas,
		},
	})
}

// LeaderboardHandler ranks the top 20 members by lifetime XP.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID      uint         `json:"id"`
		Name    string       `json:"name"`
		Nivel   models.Nivel `json:"nivel"`
		XPTotal int          `json:"xp_total"`
	}
	var entries []entry
	err := database.DB.Model(&models.User{}).
		Select("id, name, nivel, xp_total").
		Order("xp_total DESC, id ASC").
		Limit(20).
		Scan(&entries).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"ranking": entries}})
}

// MyTransactionsHandler pages through the caller's DiCoin ledger, newest first.
func MyTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	page, limit, offset := parsePagination(r, 20, 100)

	var total int64
	database.DB.Model(&models.DicoinTransaction{}).Where("user_id = ?", uid).Count(&total)

	var trxs []models.DicoinTransaction
	err := database.DB.Where("user_id = ?", uid).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&trxs).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"transactions": trxs,
			"page":         page,
			"limit":        limit,
			"total":        total,
		},
	})
}

// BuyShieldHandler purchases the streak shield for a fixed 500 DC.
func BuyShieldHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, uid).Error; err != nil {
			return err
		}
		if user.TemEscudo {
			return errEscudoJaAtivo
		}
		if err := gamification.Debit(tx, uid, ShieldCost, "Compra: Escudo de Proteção"); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", uid).Update("tem_escudo", true).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errEscudoJaAtivo):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Você já possui um escudo ativo"})
		case errors.Is(err, gamification.ErrSaldoInsuficiente):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Saldo de DiCoins insuficiente"})
		default:
			log.Printf("[gamificacao] buy shield error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Escudo de Proteção ativado"})
}

// UseSecondChanceHandler consumes the one-shot streak recovery.
func UseSecondChanceHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	// conditional update: only flips when still available
	res := database.DB.Model(&models.User{}).
		Where("id = ? AND segunda_chance_disponivel = ?", uid, true).
		Update("segunda_chance_disponivel", false)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Segunda chance já utilizada"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Segunda chance utilizada, sua streak foi preservada"})
}

func ConquistaListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	query := db.Order("raridade ASC, id ASC")
	if cat := r.URL.Query().Get("categoria"); cat != "" {
		query = query.Where("categoria = ?", cat)
	}
	var conquistas []models.Conquista
	if err := query.Find(&conquistas).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"conquistas": conquistas}})
}

// MyConquistasHandler returns the caller's unlocked achievements.
func MyConquistasHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	type unlocked struct {
		models.Conquista
		DataDesbloqueio string `json:"data_desbloqueio"`
	}
	var conquistas []unlocked
	err := database.DB.Model(&models.Conquista{}).
		Select("conquistas.*, uc.data_desbloqueio").
		Joins("JOIN user_conquistas uc ON uc.conquista_id = conquistas.id").
		Where("uc.user_id = ?", uid).
		Order("uc.data_desbloqueio DESC").
		Scan(&conquistas).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"conquistas": conquistas}})
}

func validConquistaCategoria(c string) bool {
	switch c {
	case "valor", "comunicacao", "estruturacao":
		return true
	}
	return false
}

func validConquistaRaridade(r string) bool {
	switch r {
	case "bronze", "prata", "ouro":
		return true
	}
	return false
}

type ConquistaCreateRequest struct {
	Nome              string         `json:"nome" validate:"required"`
	Descricao         *string        `json:"descricao"`
	Categoria         string         `json:"categoria" validate:"required"`
	Raridade          string         `json:"raridade"`
	Criterio          models.JSONMap `json:"criterio"`
	RecompensaDicoins int            `json:"recompensa_dicoins"`
}

func ConquistaCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req ConquistaCreateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Raridade == "" {
		req.Raridade = "bronze"
	}
	if req.RecompensaDicoins <= 0 {
		req.RecompensaDicoins = 10
	}
	if !validConquistaCategoria(req.Categoria) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "categoria inválida"})
		return
	}
	if !validConquistaRaridade(req.Raridade) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "raridade inválida"})
		return
	}
	conquista := models.Conquista{
		Nome:              req.Nome,
		Descricao:         req.Descricao,
		Categoria:         req.Categoria,
		Raridade:          req.Raridade,
		Criterio:          req.Criterio,
		RecompensaDicoins: req.RecompensaDicoins,
	}
	if err := database.DB.Create(&conquista).Error; err != nil {
		log.Printf("[gamificacao] create conquista error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Conquista criada", Data: map[string]interface{}{"conquista": conquista}})
}

type ConquistaUpdateRequest struct {
	Nome              *string        `json:"nome"`
	Descricao         *string        `json:"descricao"`
	Categoria         *string        `json:"categoria"`
	Raridade          *string        `json:"raridade"`
	Criterio          models.JSONMap `json:"criterio"`
	RecompensaDicoins *int           `json:"recompensa_dicoins"`
}

func ConquistaUpdateHandler(w http.ResponseWriter, r *http.Request) {
	conquistaID, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req ConquistaUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	var conquista models.Conquista
	if err := database.DB.First(&conquista, conquistaID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Conquista não encontrada"})
		return
	}
	if req.Nome != nil {
		conquista.Nome = *req.Nome
	}
	if req.Descricao != nil {
		conquista.Descricao = req.Descricao
	}
	if req.Categoria != nil {
		if !validConquistaCategoria(*req.Categoria) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "categoria inválida"})
			return
		}
		conquista.Categoria = *req.Categoria
	}
	if req.Raridade != nil {
		if !validConquistaRaridade(*req.Raridade) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "raridade inválida"})
			return
		}
		conquista.Raridade = *req.Raridade
	}
	if req.Criterio != nil {
		conquista.Criterio = req.Criterio
	}
	if req.RecompensaDicoins != nil && *req.RecompensaDicoins > 0 {
		conquista.RecompensaDicoins = *req.RecompensaDicoins
	}
	if err := database.DB.Save(&conquista).Error; err != nil {
		log.Printf("[gamificacao] update conquista error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Conquista atualizada", Data: map[string]interface{}{"conquista": conquista}})
}

type ConquistaAwardRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// ConquistaAwardHandler manually unlocks an achievement for a user. Awarding
// is idempotent per (user, conquista); the DiCoin reward is credited through
// the ledger and a feed event announces the unlock.
func ConquistaAwardHandler(w http.ResponseWriter, r *http.Request) {
	conquistaID, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req ConquistaAwardRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var conquista models.Conquista
		if err := tx.First(&conquista, conquistaID).Error; err != nil {
			return err
		}
		var user models.User
		if err := tx.Select("id").First(&user, req.UserID).Error; err != nil {
			return err
		}
		var owned int64
		if err := tx.Model(&models.UserConquista{}).
			Where("user_id = ? AND conquista_id = ?", req.UserID, conquistaID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return errConquistaJaPossui
		}
		if err := tx.Create(&models.UserConquista{UserID: req.UserID, ConquistaID: conquistaID}).Error; err != nil {
			return err
		}
		if conquista.RecompensaDicoins > 0 {
			if err := gamification.Credit(tx, req.UserID, conquista.RecompensaDicoins, "Conquista: "+conquista.Nome, nil); err != nil {
				return err
			}
		}
		return gamification.EmitEvento(tx, req.UserID, models.FeedConquista, models.JSONMap{
			"conquista_id": conquista.ID,
			"nome":         conquista.Nome,
			"raridade":     conquista.Raridade,
			"dicoins":      conquista.RecompensaDicoins,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Conquista ou usuário não encontrado"})
		case errors.Is(err, errConquistaJaPossui):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Usuário já possui esta conquista"})
		default:
			log.Printf("[gamificacao] award conquista error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Conquista concedida"})
}
