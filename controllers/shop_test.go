package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// Off-enum catalog values must be rejected up front instead of dying in the
// database as a 500.
func TestShopItemCreateRejectsUnknownCategoria(t *testing.T) {
	body := map[string]interface{}{"nome": "Espada", "categoria": "arma", "preco_dc": 50}
	req := asUser(jsonRequest(t, http.MethodPost, "/shop/itens", body), 1, "director")
	rr := httptest.NewRecorder()
	ShopItemCreateHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown categoria, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestShopItemCreateRejectsUnknownRaridade(t *testing.T) {
	body := map[string]interface{}{"nome": "Capa", "categoria": "roupa", "preco_dc": 50, "raridade": "mitico"}
	req := asUser(jsonRequest(t, http.MethodPost, "/shop/itens", body), 1, "director")
	rr := httptest.NewRecorder()
	ShopItemCreateHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown raridade, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestShopItemCreatePersistsValidItem(t *testing.T) {
	db := setupTestDB(t)
	body := map[string]interface{}{"nome": "Capa do Maestro", "categoria": "roupa", "preco_dc": 80, "raridade": "raro"}
	req := asUser(jsonRequest(t, http.MethodPost, "/shop/itens", body), 1, "director")
	rr := httptest.NewRecorder()
	ShopItemCreateHandler(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var count int64
	db.Table("shop_items").Where("nome = ?", "Capa do Maestro").Count(&count)
	if count != 1 {
		t.Fatalf("expected item persisted, got %d rows", count)
	}
}
