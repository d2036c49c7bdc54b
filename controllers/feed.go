package controllers

import (
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/middleware"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

type reactionSummary struct {
	Emoji   string `json:"emoji"`
	Count   int    `json:"count"`
	Reacted bool   `json:"reacted"`
}

// aggregateReactions collapses raw reaction rows into per-emoji counts,
// marking the emojis the viewer reacted with. Order follows first appearance.
func aggregateReactions(reactions []models.FeedReaction, viewerID uint) []reactionSummary {
	order := make([]string, 0, 4)
	counts := make(map[string]int)
	mine := make(map[string]bool)
	for _, re := range reactions {
		if _, seen := counts[re.Emoji]; !seen {
			order = append(order, re.Emoji)
		}
		counts[re.Emoji]++
		if re.UserID == viewerID {
			mine[re.Emoji] = true
		}
	}
	out := make([]reactionSummary, 0, len(order))
	for _, emoji := range order {
		out = append(out, reactionSummary{Emoji: emoji, Count: counts[emoji], Reacted: mine[emoji]})
	}
	return out
}

type feedEntry struct {
	models.FeedEvento
	UserName string            `json:"user_name"`
	Reactions []reactionSummary `json:"reactions"`
}

// FeedHandler pages the social feed, newest first, with reactions collapsed
// into per-emoji counts.
func FeedHandler(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	page, limit, offset := parsePagination(r, 20, 50)

	db := database.DB
	var total int64
	db.Model(&models.FeedEvento{}).Count(&total)

	var eventos []models.FeedEvento
	if err := db.Order("id DESC").Limit(limit).Offset(offset).Find(&eventos).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}

	entries := make([]feedEntry, 0, len(eventos))
	if len(eventos) > 0 {
		ids := make([]uint, 0, len(eventos))
		userIDs := make([]uint, 0, len(eventos))
		for _, ev := range eventos {
			ids = append(ids, ev.ID)
			userIDs = append(userIDs, ev.UserID)
		}

		var reactions []models.FeedReaction
		if err := db.Where("evento_id IN ?", ids).Order("id ASC").Find(&reactions).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
			return
		}
		byEvento := make(map[uint][]models.FeedReaction)
		for _, re := range reactions {
			byEvento[re.EventoID] = append(byEvento[re.EventoID], re)
		}

		type userName struct {
			ID   uint
			Name string
		}
		var names []userName
		if err := db.Model(&models.User{}).Select("id, name").Where("id IN ?", userIDs).Scan(&names).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
			return
		}
		nameByID := make(map[uint]string, len(names))
		for _, n := range names {
			nameByID[n.ID] = n.Name
		}

		for _, ev := range eventos {
			entries = append(entries, feedEntry{
				FeedEvento: ev,
				UserName:   nameByID[ev.UserID],
				Reactions:  aggregateReactions(byEvento[ev.ID], uid),
			})
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"eventos": entries,
			"page":    page,
			"limit":   limit,
			"total":   total,
		},
	})
}

type FeedReactRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

// FeedReactHandler toggles the caller's reaction: a second identical reaction
// removes the caller's own row, never someone else's.
func FeedReactHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	eventoID, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req FeedReactRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if len(req.Emoji) > 10 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Emoji inválido"})
		return
	}

	added := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var evento models.FeedEvento
		if err := tx.Select("id").First(&evento, eventoID).Error; err != nil {
			return err
		}
		res := tx.Where("evento_id = ? AND user_id = ? AND emoji = ?", eventoID, uid, req.Emoji).
			Delete(&models.FeedReaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		added = true
		return tx.Create(&models.FeedReaction{EventoID: eventoID, UserID: uid, Emoji: req.Emoji}).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Evento não encontrado"})
			return
		}
		log.Printf("[feed] react error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	msg := "Reação removida"
	if added {
		msg = "Reação adicionada"
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msg, Data: map[string]interface{}{"added": added}})
}
