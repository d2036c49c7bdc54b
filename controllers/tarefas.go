package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/gamification"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

var (
	errTarefaNaoReview     = errors.New("tarefa fora de review")
	errTransicaoInvalida   = errors.New("transicao de status invalida")
	errNaoMembro           = errors.New("usuario nao atribuido a tarefa")
	errSemMembros          = errors.New("tarefa sem membros atribuidos")
	errTarefaJaFinalizada  = errors.New("tarefa ja finalizada")
)

// memberTransitions are the moves an assigned member may make on the board.
// Approval into done and rejection are director operations, never member ones.
var memberTransitions = map[string][]string{
	models.TarefaTodo:       {models.TarefaInProgress},
	models.TarefaInProgress: {models.TarefaTodo, models.TarefaReview},
	models.TarefaReview:     {models.TarefaInProgress},
	models.TarefaRejected:   {models.TarefaInProgress},
}

func canMemberTransition(from, to string) bool {
	for _, t := range memberTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type tarefaComMembros struct {
	models.Tarefa
	Membros []models.TarefaMembro `json:"membros"`
}

func attachMembros(db *gorm.DB, tarefas []models.Tarefa) ([]tarefaComMembros, error) {
	out := make([]tarefaComMembros, 0, len(tarefas))
	if len(tarefas) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(tarefas))
	for _, t := range tarefas {
		ids = append(ids, t.ID)
	}
	var membros []models.TarefaMembro
	if err := db.Where("tarefa_id IN ?", ids).Find(&membros).Error; err != nil {
		return nil, err
	}
	byTarefa := make(map[uint][]models.TarefaMembro, len(tarefas))
	for _, m := range membros {
		byTarefa[m.TarefaID] = append(byTarefa[m.TarefaID], m)
	}
	for _, t := range tarefas {
		ms := byTarefa[t.ID]
		if ms == nil {
			ms = []models.TarefaMembro{}
		}
		out = append(out, tarefaComMembros{Tarefa: t, Membros: ms})
	}
	return out, nil
}

// TarefaListBySprintHandler returns a sprint's board with assignments.
func TarefaListBySprintHandler(w http.ResponseWriter, r *http.Request) {
	sprintID, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	db := database.DB
	query := db.Where("sprint_id = ?", sprintID).Order("id ASC")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var tarefas []models.Tarefa
	if err := query.Find(&tarefas).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	enriched, err := attachMembros(db, tarefas)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"tarefas": enriched}})
}

// TarefaMyHandler returns every task assigned to the caller, newest first.
func TarefaMyHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	db := database.DB

	query := db.Model(&models.Tarefa{}).
		Joins("JOIN tarefas_membros tm ON tm.tarefa_id = tarefas.id").
		Where("tm.user_id = ?", uid).
		Order("tarefas.id DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("tarefas.status = ?", status)
	}
	if sprint := r.URL.Query().Get("sprint_id"); sprint != "" {
		query = query.Where("tarefas.sprint_id = ?", sprint)
	}

	var tarefas []models.Tarefa
	if err := query.Find(&tarefas).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	enriched, err := attachMembros(db, tarefas)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"tarefas": enriched}})
}

func TarefaGetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var tarefa models.Tarefa
	if err := database.DB.First(&tarefa, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	enriched, err := attachMembros(database.DB, []models.Tarefa{tarefa})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"tarefa": enriched[0]}})
}

type TarefaCreateRequest struct {
	SprintID        uint              `json:"sprint_id" validate:"required"`
	Titulo          string            `json:"titulo" validate:"required"`
	Descricao       *string           `json:"descricao"`
	CoordenadoriaID *uint             `json:"coordenadoria_id"`
	PontosXP        int               `json:"pontos_xp"`
	Prazo           *string           `json:"prazo"`
	Tags            models.StringList `json:"tags"`
	Membros         []uint            `json:"membros"`
}

func TarefaCreateHandler(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	var req TarefaCreateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.PontosXP <= 0 {
		req.PontosXP = 10
	}
	var prazo *time.Time
	if req.Prazo != nil && *req.Prazo != "" {
		t, err := time.Parse("2006-01-02", *req.Prazo)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "prazo inválido, use YYYY-MM-DD"})
			return
		}
		prazo = &t
	}

	var sprint models.Sprint
	if err := database.DB.First(&sprint, req.SprintID).Error; err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Sprint não encontrada"})
		return
	}
	if sprint.Status == models.SprintConcluida {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Sprint concluída não aceita novas tarefas"})
		return
	}

	tarefa := models.Tarefa{
		SprintID:        req.SprintID,
		Titulo:          req.Titulo,
		Descricao:       req.Descricao,
		CoordenadoriaID: req.CoordenadoriaID,
		PontosXP:        req.PontosXP,
		Prazo:           prazo,
		Status:          models.TarefaTodo,
		CreatedBy:       uid,
		Tags:            req.Tags,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tarefa).Error; err != nil {
			return err
		}
		return replaceMembros(tx, tarefa.ID, req.Membros)
	})
	if err != nil {
		log.Printf("[tarefas] create error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Tarefa criada", Data: map[string]interface{}{"tarefa": tarefa}})
}

// replaceMembros swaps a task's assignments for the given user ids, each with
// the even floor share.
func replaceMembros(tx *gorm.DB, tarefaID uint, membros []uint) error {
	if err := tx.Where("tarefa_id = ?", tarefaID).Delete(&models.TarefaMembro{}).Error; err != nil {
		return err
	}
	if len(membros) == 0 {
		return nil
	}
	seen := make(map[uint]bool, len(membros))
	unique := membros[:0]
	for _, id := range membros {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	var count int64
	if err := tx.Model(&models.User{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(unique) {
		return fmt.Errorf("membros contem usuarios inexistentes")
	}
	share := gamification.ContribuicaoPercentual(len(unique))
	rows := make([]models.TarefaMembro, 0, len(unique))
	for _, id := range unique {
		rows = append(rows, models.TarefaMembro{
			TarefaID:               tarefaID,
			UserID:                 id,
			ContribuicaoPercentual: share,
		})
	}
	return tx.Create(&rows).Error
}

type TarefaUpdateRequest struct {
	Titulo          *string            `json:"titulo"`
	Descricao       *string            `json:"descricao"`
	CoordenadoriaID *uint              `json:"coordenadoria_id"`
	PontosXP        *int               `json:"pontos_xp"`
	Prazo           *string            `json:"prazo"`
	Tags            *models.StringList `json:"tags"`
}

func TarefaUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req TarefaUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	var tarefa models.Tarefa
	if err := database.DB.First(&tarefa, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
		return
	}
	if tarefa.Status == models.TarefaDone {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tarefa concluída não pode ser editada"})
		return
	}

	updates := map[string]interface{}{}
	if req.Titulo != nil {
		updates["titulo"] = *req.Titulo
	}
	if req.Descricao != nil {
		updates["descricao"] = *req.Descricao
	}
	if req.CoordenadoriaID != nil {
		updates["coordenadoria_id"] = *req.CoordenadoriaID
	}
	if req.PontosXP != nil && *req.PontosXP > 0 {
		updates["pontos_xp"] = *req.PontosXP
	}
	if req.Prazo != nil {
		t, err := time.Parse("2006-01-02", *req.Prazo)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "prazo inválido, use YYYY-MM-DD"})
			return
		}
		updates["prazo"] = t
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nada para atualizar"})
		return
	}
	if err := database.DB.Model(&tarefa).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Tarefa atualizada", Data: map[string]interface{}{"tarefa": tarefa}})
}

type TarefaStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TarefaStatusHandler moves a task on the board. Only assigned members may
// move it, and only along adjacent columns; done/rejected are reached through
// the approval endpoints.
func TarefaStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	uid, _ := utils.GetUserID(r)
	var req TarefaStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tarefa models.Tarefa
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tarefa, id).Error; err != nil {
			return err
		}
		var isMember int64
		if err := tx.Model(&models.TarefaMembro{}).Where("tarefa_id = ? AND user_id = ?", id, uid).Count(&isMember).Error; err != nil {
			return err
		}
		if isMember == 0 {
			return errNaoMembro
		}
		if !canMemberTransition(tarefa.Status, req.Status) {
			return errTransicaoInvalida
		}
		updates := map[string]interface{}{"status": req.Status}
		if tarefa.Status == models.TarefaRejected {
			updates["feedback_rejeicao"] = nil
		}
		return tx.Model(&tarefa).Updates(updates).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
		case errors.Is(err, errNaoMembro):
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Apenas membros atribuídos podem mover a tarefa"})
		case errors.Is(err, errTransicaoInvalida):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Transição de status inválida"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status atualizado"})
}

// TarefaApproveHandler finishes a task in review. XP and DiCoins fan out to
// every assigned member by contribution share; the balance update, ledger
// rows, feed events and completion stamps commit or roll back together.
func TarefaApproveHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}

	type memberResult struct {
		UserID     uint         `json:"user_id"`
		XPGanho    int          `json:"xp_ganho"`
		DicoinsGanhos int       `json:"dicoins_ganhos"`
		NivelSubiu bool         `json:"nivel_subiu"`
		Nivel      models.Nivel `json:"nivel"`
	}
	var results []memberResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tarefa models.Tarefa
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tarefa, id).Error; err != nil {
			return err
		}
		if tarefa.Status == models.TarefaDone {
			return errTarefaJaFinalizada
		}
		if tarefa.Status != models.TarefaReview {
			return errTarefaNaoReview
		}
		var membros []models.TarefaMembro
		if err := tx.Where("tarefa_id = ?", tarefa.ID).Find(&membros).Error; err != nil {
			return err
		}
		if len(membros) == 0 {
			return errSemMembros
		}

		now := time.Now()
		for _, m := range membros {
			xp := gamification.XPGain(tarefa.PontosXP, m.ContribuicaoPercentual)
			dc := gamification.DicoinGain(xp)

			subiu, nivel, err := gamification.GrantXP(tx, m.UserID, xp)
			if err != nil {
				return err
			}
			if dc > 0 {
				if err := gamification.Credit(tx, m.UserID, dc, "Tarefa concluída: "+tarefa.Titulo, &tarefa.ID); err != nil {
					return err
				}
			}
			if err := gamification.EmitEvento(tx, m.UserID, models.FeedTarefaCompleta, models.JSONMap{
				"tarefa_id": tarefa.ID,
				"titulo":    tarefa.Titulo,
				"xp":        xp,
				"dicoins":   dc,
			}); err != nil {
				return err
			}
			if subiu {
				if err := gamification.EmitEvento(tx, m.UserID, models.FeedNivelSubiu, models.JSONMap{
					"nivel": string(nivel),
				}); err != nil {
					return err
				}
			}
			if err := tx.Model(&models.TarefaMembro{}).Where("id = ?", m.ID).Update("completed_at", now).Error; err != nil {
				return err
			}
			results = append(results, memberResult{UserID: m.UserID, XPGanho: xp, DicoinsGanhos: dc, NivelSubiu: subiu, Nivel: nivel})
		}
		return tx.Model(&tarefa).Updates(map[string]interface{}{
			"status":            models.TarefaDone,
			"feedback_rejeicao": nil,
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
		case errors.Is(err, errTarefaJaFinalizada):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tarefa já foi aprovada"})
		case errors.Is(err, errTarefaNaoReview):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Apenas tarefas em review podem ser aprovadas"})
		case errors.Is(err, errSemMembros):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tarefa sem membros atribuídos"})
		default:
			log.Printf("[tarefas] approve error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Tarefa aprovada", Data: map[string]interface{}{"recompensas": results}})
}

type TarefaRejectRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// TarefaRejectHandler sends a task in review back with mandatory feedback.
func TarefaRejectHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req TarefaRejectRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tarefa models.Tarefa
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tarefa, id).Error; err != nil {
			return err
		}
		if tarefa.Status != models.TarefaReview {
			return errTarefaNaoReview
		}
		return tx.Model(&tarefa).Updates(map[string]interface{}{
			"status":            models.TarefaRejected,
			"feedback_rejeicao": req.Feedback,
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
		case errors.Is(err, errTarefaNaoReview):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Apenas tarefas em review podem ser rejeitadas"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Tarefa rejeitada"})
}

type TarefaAssignRequest struct {
	Membros []uint `json:"membros" validate:"required"`
}

// TarefaAssignHandler replaces a task's assignments. Shares are recomputed as
// the even floor split over the new member count.
func TarefaAssignHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req TarefaAssignRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tarefa models.Tarefa
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tarefa, id).Error; err != nil {
			return err
		}
		if tarefa.Status == models.TarefaDone {
			return errTarefaJaFinalizada
		}
		return replaceMembros(tx, tarefa.ID, req.Membros)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
		case errors.Is(err, errTarefaJaFinalizada):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tarefa concluída não pode ser reatribuída"})
		default:
			log.Printf("[tarefas] assign error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Membros atribuídos"})
}

func TarefaDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var tarefa models.Tarefa
		if err := tx.First(&tarefa, id).Error; err != nil {
			return err
		}
		if tarefa.Status == models.TarefaDone {
			return errTarefaJaFinalizada
		}
		if err := tx.Where("tarefa_id = ?", tarefa.ID).Delete(&models.TarefaMembro{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tarefa).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Tarefa não encontrada"})
		case errors.Is(err, errTarefaJaFinalizada):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tarefa concluída não pode ser excluída"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Tarefa excluída"})
}
