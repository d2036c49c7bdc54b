package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPGeneric_DirectRemote(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	ip := clientIPGeneric(req, nil)
	if ip != "203.0.113.5" {
		t.Fatalf("expected direct remote IP, got %s", ip)
	}
}

func TestClientIPGeneric_TrustedProxyXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.10")
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "203.0.113.7" {
		t.Fatalf("expected X-Forwarded-For first value, got %s", ip)
	}
}

func TestClientIPGeneric_UntrustedProxyIgnoresXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.11:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 198.51.100.11")
	ip := clientIPGeneric(req, []string{"198.51.100.10"})
	if ip != "198.51.100.11" {
		t.Fatalf("expected remote IP when proxy untrusted, got %s", ip)
	}
}

func TestRouteCategory(t *testing.T) {
	cases := map[string]string{
		"/auth/login":            "auth",
		"/auth/refresh":          "auth",
		"/marketing/leads":       "marketing",
		"/shop/itens/3/imagem":   "upload",
		"/sprints/1/tarefas":     "api",
		"/gamificacao/meu-nivel": "api",
	}
	for path, want := range cases {
		if got := routeCategory(path); got != want {
			t.Errorf("routeCategory(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoginLockout_Progressive(t *testing.T) {
	// no Redis in tests, exercise the in-memory path
	const uid = uint(991)
	ResetFailedLogin(uid)

	if locked, _ := IsAccountLocked(uid); locked {
		t.Fatal("expected account unlocked before failures")
	}
	RecordFailedLogin(uid)
	locked, until := IsAccountLocked(uid)
	if !locked {
		t.Fatal("expected account locked after first failure")
	}
	if until <= 0 {
		t.Fatalf("expected positive lock duration, got %v", until)
	}
	ResetFailedLogin(uid)
	if locked, _ := IsAccountLocked(uid); locked {
		t.Fatal("expected account unlocked after reset")
	}
}
