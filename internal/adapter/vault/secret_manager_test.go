package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestVault(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "root" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/pos/data/database":
			w.Write([]byte(`{"data":{"data":{"connection_string":"postgres://pos@db/pos"},"metadata":{"version":1}}}`))
		case "/v1/pos/data/openai":
			w.Write([]byte(`{"data":{"data":{"api_key":""}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[]}`))
		}
	}))
}

func TestSecretManager(t *testing.T) {
	srv := newTestVault(t)
	defer srv.Close()
	ctx := context.Background()

	sm, err := NewSecretManager(srv.URL, "root", "/pos/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	url, err := sm.GetDatabaseURL(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if url != "postgres://pos@db/pos" {
		t.Errorf("unexpected database url %q", url)
	}

	if _, err := sm.GetOpenAIAPIKey(ctx); err == nil {
		t.Error("expected error for empty api key")
	}
}

func TestSecretManager_Failures(t *testing.T) {
	srv := newTestVault(t)
	defer srv.Close()
	ctx := context.Background()

	missing, _ := NewSecretManager(srv.URL, "root", "other")
	if _, err := missing.GetDatabaseURL(ctx); err == nil {
		t.Error("expected error for missing secret")
	}

	denied, _ := NewSecretManager(srv.URL, "wrong", "pos")
	if _, err := denied.GetDatabaseURL(ctx); err == nil {
		t.Error("expected error for rejected token")
	}
}
