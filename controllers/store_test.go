package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BryanLeite-dev/orcestra-dicom-app/database"
	"github.com/BryanLeite-dev/orcestra-dicom-app/gamification"
	"github.com/BryanLeite-dev/orcestra-dicom-app/models"
	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

// SQLite does not take the MySQL enum column types from the model tags, so the
// test schema is spelled out. Column names and defaults mirror the models.
var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		google_id TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		coordenadoria_id INTEGER,
		nivel TEXT NOT NULL DEFAULT 'trainee',
		xp_total INTEGER NOT NULL DEFAULT 0,
		xp_sprint_atual INTEGER NOT NULL DEFAULT 0,
		dicoins_saldo INTEGER NOT NULL DEFAULT 0,
		dicoins_total_ganho INTEGER NOT NULL DEFAULT 0,
		dicoins_total_gasto INTEGER NOT NULL DEFAULT 0,
		streak_atual INTEGER NOT NULL DEFAULT 0,
		streak_recorde INTEGER NOT NULL DEFAULT 0,
		tem_escudo NUMERIC NOT NULL DEFAULT 0,
		segunda_chance_disponivel NUMERIC NOT NULL DEFAULT 1,
		avatar_config TEXT,
		last_signed_in DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE sprints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		numero_sprint INTEGER NOT NULL,
		data_inicio DATETIME NOT NULL,
		data_fim DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'planejamento',
		meta TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE tarefas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sprint_id INTEGER NOT NULL,
		titulo TEXT NOT NULL,
		descricao TEXT,
		coordenadoria_id INTEGER,
		pontos_xp INTEGER NOT NULL DEFAULT 10,
		prazo DATETIME,
		status TEXT NOT NULL DEFAULT 'todo',
		created_by INTEGER NOT NULL,
		feedback_rejeicao TEXT,
		tags TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE tarefas_membros (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tarefa_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		contribuicao_percentual INTEGER NOT NULL DEFAULT 100,
		completed_at DATETIME
	)`,
	`CREATE TABLE dicoin_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		tipo TEXT NOT NULL,
		valor INTEGER NOT NULL,
		motivo TEXT NOT NULL,
		tarefa_id INTEGER,
		referencia TEXT NOT NULL UNIQUE,
		timestamp DATETIME
	)`,
	`CREATE TABLE conquistas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nome TEXT NOT NULL,
		descricao TEXT,
		categoria TEXT NOT NULL,
		raridade TEXT NOT NULL DEFAULT 'bronze',
		icone_url TEXT,
		criterio TEXT,
		recompensa_dicoins INTEGER NOT NULL DEFAULT 10,
		created_at DATETIME
	)`,
	`CREATE TABLE user_conquistas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		conquista_id INTEGER NOT NULL,
		data_desbloqueio DATETIME,
		UNIQUE(user_id, conquista_id)
	)`,
	`CREATE TABLE shop_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nome TEXT NOT NULL,
		descricao TEXT,
		categoria TEXT NOT NULL,
		preco_dc INTEGER NOT NULL,
		raridade TEXT NOT NULL DEFAULT 'comum',
		requer_nivel TEXT NOT NULL DEFAULT 'trainee',
		imagem_url TEXT,
		disponivel NUMERIC NOT NULL DEFAULT 1,
		created_at DATETIME
	)`,
	`CREATE TABLE user_inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		data_compra DATETIME,
		equipado NUMERIC NOT NULL DEFAULT 0,
		UNIQUE(user_id, item_id)
	)`,
	`CREATE TABLE feed_eventos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		tipo TEXT NOT NULL,
		conteudo TEXT,
		timestamp DATETIME
	)`,
	`CREATE TABLE feed_reactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		evento_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		emoji TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nome TEXT NOT NULL,
		email TEXT NOT NULL,
		telefone TEXT,
		empresa TEXT,
		cargo TEXT,
		linkedin TEXT,
		origem TEXT NOT NULL,
		utm_source TEXT,
		utm_medium TEXT,
		utm_campaign TEXT,
		status TEXT NOT NULL DEFAULT 'prospecto',
		data_captura DATETIME,
		campanha_id INTEGER,
		observacoes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE conversoes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lead_id INTEGER NOT NULL,
		tipo_conversao TEXT NOT NULL,
		status_pipeline TEXT NOT NULL,
		valor_estimado REAL,
		observacoes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// setupTestDB swaps database.DB for an in-memory SQLite store for the test's
// lifetime.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, uid uint, role string) *http.Request {
	ctx := context.WithValue(req.Context(), utils.UserIDKey, uid)
	ctx = context.WithValue(ctx, utils.UserRoleKey, role)
	return req.WithContext(ctx)
}

func withID(req *http.Request, id uint) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", id)})
}

func seedUser(t *testing.T, db *gorm.DB, name string, saldo int) models.User {
	t.Helper()
	u := models.User{
		Name:              name,
		Email:             strings.ToLower(name) + "@orcestra.com.br",
		Password:          "hash",
		DicoinsSaldo:      saldo,
		DicoinsTotalGanho: saldo,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestFeedReactionToggle(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ana", 0)
	ev := models.FeedEvento{UserID: user.ID, Tipo: models.FeedConquista, Conteudo: models.JSONMap{"nome": "Primeira Nota"}}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatalf("seed evento: %v", err)
	}

	react := func() *httptest.ResponseRecorder {
		req := withID(asUser(jsonRequest(t, http.MethodPost, "/feed/1/reagir", FeedReactRequest{Emoji: "🔥"}), user.ID, "user"), ev.ID)
		rr := httptest.NewRecorder()
		FeedReactHandler(rr, req)
		return rr
	}

	if rr := react(); rr.Code != http.StatusOK {
		t.Fatalf("first react: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if n := countRows(t, db, &models.FeedReaction{}, ""); n != 1 {
		t.Fatalf("expected 1 reaction after add, got %d", n)
	}

	if rr := react(); rr.Code != http.StatusOK {
		t.Fatalf("second react: expected 200, got %d", rr.Code)
	}
	if n := countRows(t, db, &models.FeedReaction{}, ""); n != 0 {
		t.Fatalf("expected toggle to remove the reaction, got %d rows", n)
	}

	if rr := react(); rr.Code != http.StatusOK {
		t.Fatalf("third react: expected 200, got %d", rr.Code)
	}
	if n := countRows(t, db, &models.FeedReaction{}, ""); n != 1 {
		t.Fatalf("expected 1 reaction after re-add, got %d", n)
	}
}

func TestFeedReactionToggleKeepsOtherUsers(t *testing.T) {
	db := setupTestDB(t)
	ana := seedUser(t, db, "Ana", 0)
	bruno := seedUser(t, db, "Bruno", 0)
	ev := models.FeedEvento{UserID: ana.ID, Tipo: models.FeedNivelSubiu, Conteudo: models.JSONMap{"nivel": "assessor"}}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatalf("seed evento: %v", err)
	}
	if err := db.Create(&models.FeedReaction{EventoID: ev.ID, UserID: bruno.ID, Emoji: "🔥"}).Error; err != nil {
		t.Fatalf("seed reaction: %v", err)
	}

	// Ana adds and removes the same emoji; Bruno's reaction must survive.
	for i := 0; i < 2; i++ {
		req := withID(asUser(jsonRequest(t, http.MethodPost, "/feed/1/reagir", FeedReactRequest{Emoji: "🔥"}), ana.ID, "user"), ev.ID)
		rr := httptest.NewRecorder()
		FeedReactHandler(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("react %d: expected 200, got %d", i, rr.Code)
		}
	}
	if n := countRows(t, db, &models.FeedReaction{}, "user_id = ?", bruno.ID); n != 1 {
		t.Fatalf("expected Bruno's reaction untouched, got %d rows", n)
	}
	if n := countRows(t, db, &models.FeedReaction{}, "user_id = ?", ana.ID); n != 0 {
		t.Fatalf("expected Ana's toggle to end empty, got %d rows", n)
	}
}

func TestConquistaAwardIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ana", 0)
	conquista := models.Conquista{Nome: "Primeira Entrega", Categoria: "valor", Raridade: "bronze", RecompensaDicoins: 25}
	if err := db.Create(&conquista).Error; err != nil {
		t.Fatalf("seed conquista: %v", err)
	}

	award := func() *httptest.ResponseRecorder {
		req := withID(asUser(jsonRequest(t, http.MethodPost, "/conquistas/1/conceder", ConquistaAwardRequest{UserID: user.ID}), 99, "director"), conquista.ID)
		rr := httptest.NewRecorder()
		ConquistaAwardHandler(rr, req)
		return rr
	}

	if rr := award(); rr.Code != http.StatusOK {
		t.Fatalf("first award: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var after models.User
	if err := db.First(&after, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if after.DicoinsSaldo != 25 || after.DicoinsTotalGanho != 25 {
		t.Errorf("expected saldo/ganho 25 after award, got %d/%d", after.DicoinsSaldo, after.DicoinsTotalGanho)
	}
	if n := countRows(t, db, &models.UserConquista{}, ""); n != 1 {
		t.Fatalf("expected 1 user_conquista row, got %d", n)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, "tipo = ?", models.DicoinGanho); n != 1 {
		t.Fatalf("expected 1 ledger credit, got %d", n)
	}
	if n := countRows(t, db, &models.FeedEvento{}, "tipo = ?", models.FeedConquista); n != 1 {
		t.Fatalf("expected 1 conquista feed event, got %d", n)
	}

	if rr := award(); rr.Code != http.StatusBadRequest {
		t.Fatalf("second award: expected 400, got %d", rr.Code)
	}
	var again models.User
	db.First(&again, user.ID)
	if again.DicoinsSaldo != 25 {
		t.Errorf("repeat award changed saldo: %d", again.DicoinsSaldo)
	}
	if n := countRows(t, db, &models.UserConquista{}, ""); n != 1 {
		t.Errorf("repeat award duplicated the unlock: %d rows", n)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, ""); n != 1 {
		t.Errorf("repeat award wrote another ledger row: %d", n)
	}
}

func TestShopBuyOnceDebitsOnce(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ana", 100)
	item := models.ShopItem{Nome: "Capa do Maestro", Categoria: "roupa", PrecoDC: 40, Raridade: "raro", RequerNivel: models.NivelTrainee, Disponivel: true}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	buy := func(itemID uint) *httptest.ResponseRecorder {
		req := withID(asUser(jsonRequest(t, http.MethodPost, "/shop/itens/1/comprar", nil), user.ID, "user"), itemID)
		req.Header.Del("Content-Type") // buy has no body
		rr := httptest.NewRecorder()
		ShopBuyHandler(rr, req)
		return rr
	}

	if rr := buy(item.ID); rr.Code != http.StatusOK {
		t.Fatalf("buy: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var after models.User
	db.First(&after, user.ID)
	if after.DicoinsSaldo != 60 || after.DicoinsTotalGasto != 40 {
		t.Errorf("expected saldo 60 / gasto 40, got %d/%d", after.DicoinsSaldo, after.DicoinsTotalGasto)
	}
	if n := countRows(t, db, &models.UserInventory{}, ""); n != 1 {
		t.Fatalf("expected 1 inventory row, got %d", n)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, "tipo = ?", models.DicoinGasto); n != 1 {
		t.Fatalf("expected 1 ledger debit, got %d", n)
	}
	if n := countRows(t, db, &models.FeedEvento{}, "tipo = ?", models.FeedItemComprado); n != 1 {
		t.Fatalf("expected 1 item_comprado event, got %d", n)
	}

	// Double-submit: owned wins before any debit.
	if rr := buy(item.ID); rr.Code != http.StatusBadRequest {
		t.Fatalf("rebuy: expected 400, got %d", rr.Code)
	}
	db.First(&after, user.ID)
	if after.DicoinsSaldo != 60 {
		t.Errorf("rebuy changed saldo: %d", after.DicoinsSaldo)
	}
	if n := countRows(t, db, &models.UserInventory{}, ""); n != 1 {
		t.Errorf("rebuy duplicated inventory: %d rows", n)
	}
}

func TestShopBuyRollsBackOnInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ana", 30)
	item := models.ShopItem{Nome: "Batuta Dourada", Categoria: "ferramenta", PrecoDC: 500, Raridade: "lendario", RequerNivel: models.NivelTrainee, Disponivel: true}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	req := withID(asUser(httptest.NewRequest(http.MethodPost, "/shop/itens/1/comprar", nil), user.ID, "user"), item.ID)
	rr := httptest.NewRecorder()
	ShopBuyHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient saldo, got %d", rr.Code)
	}

	var after models.User
	db.First(&after, user.ID)
	if after.DicoinsSaldo != 30 || after.DicoinsTotalGasto != 0 {
		t.Errorf("failed buy moved money: saldo %d, gasto %d", after.DicoinsSaldo, after.DicoinsTotalGasto)
	}
	if n := countRows(t, db, &models.UserInventory{}, ""); n != 0 {
		t.Errorf("failed buy left inventory rows: %d", n)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, ""); n != 0 {
		t.Errorf("failed buy left ledger rows: %d", n)
	}
}

func TestShopBuyRollsBackOnInsufficientLevel(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ana", 100)
	item := models.ShopItem{Nome: "Coroa do Virtuoso", Categoria: "acessorio", PrecoDC: 50, Raridade: "epico", RequerNivel: models.NivelMaestro, Disponivel: true}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	req := withID(asUser(httptest.NewRequest(http.MethodPost, "/shop/itens/1/comprar", nil), user.ID, "user"), item.ID)
	rr := httptest.NewRecorder()
	ShopBuyHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient nivel, got %d", rr.Code)
	}

	// The debit runs before the level gate; the rollback must return it.
	var after models.User
	db.First(&after, user.ID)
	if after.DicoinsSaldo != 100 || after.DicoinsTotalGasto != 0 {
		t.Errorf("level-gated buy moved money: saldo %d, gasto %d", after.DicoinsSaldo, after.DicoinsTotalGasto)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, ""); n != 0 {
		t.Errorf("level-gated buy left ledger rows: %d", n)
	}
}

func TestSprintActivateClosesOtherActive(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	ativa := models.Sprint{NumeroSprint: 1, DataInicio: now.AddDate(0, 0, -14), DataFim: now, Status: models.SprintAtiva}
	planejada := models.Sprint{NumeroSprint: 2, DataInicio: now, DataFim: now.AddDate(0, 0, 14), Status: models.SprintPlanejamento}
	if err := db.Create(&ativa).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}
	if err := db.Create(&planejada).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}

	req := withID(asUser(httptest.NewRequest(http.MethodPost, "/sprints/2/ativar", nil), 1, "director"), planejada.ID)
	rr := httptest.NewRecorder()
	SprintActivateHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var s1, s2 models.Sprint
	db.First(&s1, ativa.ID)
	db.First(&s2, planejada.ID)
	if s2.Status != models.SprintAtiva {
		t.Errorf("expected sprint 2 ativa, got %s", s2.Status)
	}
	if s1.Status != models.SprintConcluida {
		t.Errorf("expected sprint 1 concluida, got %s", s1.Status)
	}
	if n := countRows(t, db, &models.Sprint{}, "status = ?", models.SprintAtiva); n != 1 {
		t.Fatalf("expected exactly one sprint ativa, got %d", n)
	}
}

func TestTarefaApproveFanout(t *testing.T) {
	db := setupTestDB(t)
	members := []models.User{
		seedUser(t, db, "Ana", 0),
		seedUser(t, db, "Bruno", 0),
		seedUser(t, db, "Clara", 0),
	}
	sprint := models.Sprint{NumeroSprint: 1, DataInicio: time.Now(), DataFim: time.Now().AddDate(0, 0, 14), Status: models.SprintAtiva}
	if err := db.Create(&sprint).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}
	tarefa := models.Tarefa{SprintID: sprint.ID, Titulo: "Planejar evento", PontosXP: 10, Status: models.TarefaReview, CreatedBy: 99}
	if err := db.Create(&tarefa).Error; err != nil {
		t.Fatalf("seed tarefa: %v", err)
	}
	share := gamification.ContribuicaoPercentual(len(members))
	for _, m := range members {
		if err := db.Create(&models.TarefaMembro{TarefaID: tarefa.ID, UserID: m.ID, ContribuicaoPercentual: share}).Error; err != nil {
			t.Fatalf("seed membro: %v", err)
		}
	}

	approve := func() *httptest.ResponseRecorder {
		req := withID(asUser(httptest.NewRequest(http.MethodPost, "/tarefas/1/aprovar", nil), 99, "director"), tarefa.ID)
		rr := httptest.NewRecorder()
		TarefaApproveHandler(rr, req)
		return rr
	}

	if rr := approve(); rr.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// 10 XP at a 33% share is 3 XP and 1 DiCoin per member.
	for _, m := range members {
		var u models.User
		db.First(&u, m.ID)
		if u.XPTotal != 3 || u.XPSprintAtual != 3 {
			t.Errorf("user %d: expected 3 xp, got total %d sprint %d", m.ID, u.XPTotal, u.XPSprintAtual)
		}
		if u.DicoinsSaldo != 1 {
			t.Errorf("user %d: expected saldo 1, got %d", m.ID, u.DicoinsSaldo)
		}
	}
	if n := countRows(t, db, &models.FeedEvento{}, "tipo = ?", models.FeedTarefaCompleta); n != 3 {
		t.Errorf("expected 3 tarefa_completa events, got %d", n)
	}
	if n := countRows(t, db, &models.FeedEvento{}, "tipo = ?", models.FeedNivelSubiu); n != 0 {
		t.Errorf("expected no nivel_subiu events at 3 xp, got %d", n)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, "tipo = ?", models.DicoinGanho); n != 3 {
		t.Errorf("expected 3 ledger credits, got %d", n)
	}
	if n := countRows(t, db, &models.TarefaMembro{}, "completed_at IS NOT NULL"); n != 3 {
		t.Errorf("expected all completion stamps set, got %d", n)
	}
	var after models.Tarefa
	db.First(&after, tarefa.ID)
	if after.Status != models.TarefaDone {
		t.Errorf("expected tarefa done, got %s", after.Status)
	}

	// Approving again must not pay twice.
	if rr := approve(); rr.Code != http.StatusBadRequest {
		t.Fatalf("re-approve: expected 400, got %d", rr.Code)
	}
	if n := countRows(t, db, &models.DicoinTransaction{}, ""); n != 3 {
		t.Errorf("re-approve wrote more ledger rows: %d", n)
	}
}

func TestTarefaApproveEmitsLevelUp(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ana", 0)
	sprint := models.Sprint{NumeroSprint: 1, DataInicio: time.Now(), DataFim: time.Now().AddDate(0, 0, 14), Status: models.SprintAtiva}
	if err := db.Create(&sprint).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}
	tarefa := models.Tarefa{SprintID: sprint.ID, Titulo: "Fechar patrocínio", PontosXP: 300, Status: models.TarefaReview, CreatedBy: 99}
	if err := db.Create(&tarefa).Error; err != nil {
		t.Fatalf("seed tarefa: %v", err)
	}
	if err := db.Create(&models.TarefaMembro{TarefaID: tarefa.ID, UserID: user.ID, ContribuicaoPercentual: 100}).Error; err != nil {
		t.Fatalf("seed membro: %v", err)
	}

	req := withID(asUser(httptest.NewRequest(http.MethodPost, "/tarefas/1/aprovar", nil), 99, "director"), tarefa.ID)
	rr := httptest.NewRecorder()
	TarefaApproveHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var after models.User
	db.First(&after, user.ID)
	if after.XPTotal != 300 {
		t.Errorf("expected 300 xp, got %d", after.XPTotal)
	}
	if after.Nivel != models.NivelCoordenador {
		t.Errorf("expected nivel coordenador at 300 xp, got %s", after.Nivel)
	}
	if after.DicoinsSaldo != 150 {
		t.Errorf("expected 150 DiCoins, got %d", after.DicoinsSaldo)
	}
	if n := countRows(t, db, &models.FeedEvento{}, "tipo = ?", models.FeedNivelSubiu); n != 1 {
		t.Errorf("expected 1 nivel_subiu event, got %d", n)
	}
}

func TestLeadStatusRecordsConversao(t *testing.T) {
	db := setupTestDB(t)
	lead := models.Lead{Nome: "Empresa X", Email: "contato@empresax.com", Origem: "linkedin", Status: models.LeadProspecto}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	toCliente := func() *httptest.ResponseRecorder {
		req := withID(asUser(jsonRequest(t, http.MethodPatch, "/marketing/leads/1/status", LeadStatusRequest{Status: models.LeadCliente}), 1, "director"), lead.ID)
		rr := httptest.NewRecorder()
		LeadStatusHandler(rr, req)
		return rr
	}

	if rr := toCliente(); rr.Code != http.StatusOK {
		t.Fatalf("status update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var after models.Lead
	db.First(&after, lead.ID)
	if after.Status != models.LeadCliente {
		t.Errorf("expected status cliente, got %s", after.Status)
	}
	if n := countRows(t, db, &models.Conversao{}, "lead_id = ?", lead.ID); n != 1 {
		t.Fatalf("expected 1 conversao row after first transition to cliente, got %d", n)
	}

	// Re-sending cliente must not duplicate the conversion.
	if rr := toCliente(); rr.Code != http.StatusOK {
		t.Fatalf("repeat status update: expected 200, got %d", rr.Code)
	}
	if n := countRows(t, db, &models.Conversao{}, "lead_id = ?", lead.ID); n != 1 {
		t.Errorf("repeat transition duplicated the conversao: %d rows", n)
	}
}
