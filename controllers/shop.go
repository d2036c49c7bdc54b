package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
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
	errItemIndisponivel = errors.New("item indisponivel")
	errItemJaPossui     = errors.New("item ja possuido")
	errNivelInsuficiente = errors.New("nivel insuficiente")
)

func ShopListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	query := db.Where("disponivel = ?", true).Order("preco_dc ASC")
	if cat := r.URL.Query().Get("categoria"); cat != "" {
		query = query.Where("categoria = ?", cat)
	}
	var itens []models.ShopItem
	if err := query.Find(&itens).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"itens": itens}})
}

type inventoryEntry struct {
	models.ShopItem
	InventoryID uint      `json:"inventory_id"`
	DataCompra  time.Time `json:"data_compra"`
	Equipado    bool      `json:"equipado"`
}

func ShopInventoryHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	var entries []inventoryEntry
	err := database.DB.Model(&models.ShopItem{}).
		Select("shop_items.*, ui.id AS inventory_id, ui.data_compra, ui.equipado").
		Joins("JOIN user_inventory ui ON ui.item_id = shop_items.id").
		Where("ui.user_id = ?", uid).
		Order("ui.data_compra DESC").
		Scan(&entries).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"inventario": entries}})
}

// ShopBuyHandler purchases an item. The conditional debit and the inventory
// row commit together, so a double-submit can never buy twice or overdraw.
func ShopBuyHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Não autorizado"})
		return
	}
	itemID, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}

	var item models.ShopItem
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		if !item.Disponivel {
			return errItemIndisponivel
		}
		var owned int64
		if err := tx.Model(&models.UserInventory{}).Where("user_id = ? AND item_id = ?", uid, itemID).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return errItemJaPossui
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, uid).Error; err != nil {
			return err
		}
		if err := gamification.Debit(tx, uid, item.PrecoDC, "Compra: "+item.Nome); err != nil {
			return err
		}
		if gamification.NivelIndex(user.Nivel) < gamification.NivelIndex(item.RequerNivel) {
			return errNivelInsuficiente
		}

		if err := tx.Create(&models.UserInventory{UserID: uid, ItemID: itemID}).Error; err != nil {
			return err
		}
		return gamification.EmitEvento(tx, uid, models.FeedItemComprado, models.JSONMap{
			"item_id":  item.ID,
			"nome":     item.Nome,
			"preco_dc": item.PrecoDC,
			"raridade": item.Raridade,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Item não encontrado"})
		case errors.Is(err, errItemIndisponivel):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Item indisponível"})
		case errors.Is(err, errItemJaPossui):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Você já possui este item"})
		case errors.Is(err, gamification.ErrSaldoInsuficiente):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Saldo de DiCoins insuficiente"})
		case errors.Is(err, errNivelInsuficiente):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nível insuficiente para este item"})
		default:
			log.Printf("[shop] buy error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Compra realizada", Data: map[string]interface{}{"item": item}})
}

// ShopEquipHandler toggles equipado on an inventory row owned by the caller.
func ShopEquipHandler(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	invID, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var inv models.UserInventory
	if err := database.DB.Where("id = ? AND user_id = ?", invID, uid).First(&inv).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Item não está no seu inventário"})
		return
	}
	inv.Equipado = !inv.Equipado
	if err := database.DB.Model(&inv).Update("equipado", inv.Equipado).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	msg := "Item equipado"
	if !inv.Equipado {
		msg = "Item desequipado"
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msg, Data: map[string]interface{}{"inventario": inv}})
}

func validItemCategoria(c string) bool {
	switch c {
	case "roupa", "acessorio", "ferramenta", "pet", "efeito", "edicao_limitada":
		return true
	}
	return false
}

func validItemRaridade(r string) bool {
	switch r {
	case "comum", "raro", "epico", "lendario":
		return true
	}
	return false
}

type ShopItemRequest struct {
	Nome        string       `json:"nome" validate:"required"`
	Descricao   *string      `json:"descricao"`
	Categoria   string       `json:"categoria" validate:"required"`
	PrecoDC     int          `json:"preco_dc" validate:"required"`
	Raridade    string       `json:"raridade"`
	RequerNivel models.Nivel `json:"requer_nivel"`
	Disponivel  *bool        `json:"disponivel"`
}

func ShopItemCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req ShopItemRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.PrecoDC <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "preco_dc deve ser positivo"})
		return
	}
	if req.Raridade == "" {
		req.Raridade = "comum"
	}
	if req.RequerNivel == "" {
		req.RequerNivel = models.NivelTrainee
	}
	if !validItemCategoria(req.Categoria) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "categoria inválida"})
		return
	}
	if !validItemRaridade(req.Raridade) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "raridade inválida"})
		return
	}
	if gamification.NivelIndex(req.RequerNivel) < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "requer_nivel inválido"})
		return
	}
	item := models.ShopItem{
		Nome:        req.Nome,
		Descricao:   req.Descricao,
		Categoria:   req.Categoria,
		PrecoDC:     req.PrecoDC,
		Raridade:    req.Raridade,
		RequerNivel: req.RequerNivel,
		Disponivel:  req.Disponivel == nil || *req.Disponivel,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		log.Printf("[shop] create item error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Item criado", Data: map[string]interface{}{"item": item}})
}

type ShopItemUpdateRequest struct {
	Nome        *string       `json:"nome"`
	Descricao   *string       `json:"descricao"`
	PrecoDC     *int          `json:"preco_dc"`
	Raridade    *string       `json:"raridade"`
	RequerNivel *models.Nivel `json:"requer_nivel"`
	Disponivel  *bool         `json:"disponivel"`
}

func ShopItemUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var req ShopItemUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	var item models.ShopItem
	if err := database.DB.First(&item, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Item não encontrado"})
		return
	}
	updates := map[string]interface{}{}
	if req.Nome != nil {
		updates["nome"] = *req.Nome
	}
	if req.Descricao != nil {
		updates["descricao"] = *req.Descricao
	}
	if req.PrecoDC != nil && *req.PrecoDC > 0 {
		updates["preco_dc"] = *req.PrecoDC
	}
	if req.Raridade != nil {
		if !validItemRaridade(*req.Raridade) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "raridade inválida"})
			return
		}
		updates["raridade"] = *req.Raridade
	}
	if req.RequerNivel != nil {
		if gamification.NivelIndex(*req.RequerNivel) < 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "requer_nivel inválido"})
			return
		}
		updates["requer_nivel"] = *req.RequerNivel
	}
	if req.Disponivel != nil {
		updates["disponivel"] = *req.Disponivel
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nada para atualizar"})
		return
	}
	if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Item atualizado", Data: map[string]interface{}{"item": item}})
}

// objectNameFromURL recovers the storage key from a stored public URL.
func objectNameFromURL(url string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return ""
}

// ShopItemImageHandler uploads an item image to object storage and stores the
// public URL. Accepts multipart form field "image", max 5 MiB.
func ShopItemImageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID inválido"})
		return
	}
	var item models.ShopItem
	if err := database.DB.First(&item, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Item não encontrado"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Upload inválido"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Campo 'image' é obrigatório"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Formato de imagem não suportado"})
		return
	}

	objectName := fmt.Sprintf("shop/item-%d-%d%s", item.ID, time.Now().Unix(), ext)
	url, err := utils.UploadImage(objectName, file)
	if err != nil {
		log.Printf("[shop] upload image error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Falha no upload da imagem"})
		return
	}

	old := item.ImagemURL
	if err := database.DB.Model(&item).Update("imagem_url", url).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Erro no servidor"})
		return
	}
	if old != nil && *old != "" {
		if key := objectNameFromURL(*old); key != "" {
			_ = utils.DeleteImage(key)
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Imagem atualizada", Data: map[string]interface{}{"imagem_url": url}})
}
