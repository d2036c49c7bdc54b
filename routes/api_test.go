package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/BryanLeite-dev/orcestra-dicom-app/utils"
)

// Task creation and editing belong to directors; assigned members only move
// tasks through the status endpoint.
func TestTarefaWriteRoutesRequireDirector(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := mux.NewRouter()
	ApiRoutes(router)

	memberToken, err := utils.GenerateAccessToken(1, "user")
	if err != nil {
		t.Fatalf("member token: %v", err)
	}
	directorToken, err := utils.GenerateAccessToken(2, "director")
	if err != nil {
		t.Fatalf("director token: %v", err)
	}

	writes := []struct {
		method, path string
	}{
		{http.MethodPost, "/tarefas"},
		{http.MethodPut, "/tarefas/1"},
		{http.MethodPost, "/tarefas/1/aprovar"},
		{http.MethodPost, "/tarefas/1/rejeitar"},
		{http.MethodPut, "/tarefas/1/membros"},
		{http.MethodDelete, "/tarefas/1"},
	}
	for _, c := range writes {
		req := httptest.NewRequest(c.method, c.path, nil)
		req.Header.Set("Authorization", "Bearer "+memberToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s %s as member: expected 403, got %d", c.method, c.path, rr.Code)
		}
	}

	// A director passes the role gate; without a JSON body the request dies in
	// validation, not authorization.
	req := httptest.NewRequest(http.MethodPost, "/tarefas", nil)
	req.Header.Set("Authorization", "Bearer "+directorToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code == http.StatusForbidden || rr.Code == http.StatusUnauthorized {
		t.Errorf("POST /tarefas as director: expected to pass the role gate, got %d", rr.Code)
	}
}

func TestTarefaStatusRouteAllowsMembers(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := mux.NewRouter()
	ApiRoutes(router)

	memberToken, err := utils.GenerateAccessToken(1, "user")
	if err != nil {
		t.Fatalf("member token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/tarefas/1/status", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code == http.StatusForbidden || rr.Code == http.StatusUnauthorized {
		t.Errorf("PATCH /tarefas/1/status as member: expected to pass auth, got %d", rr.Code)
	}
}
