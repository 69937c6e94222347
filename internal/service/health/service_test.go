package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

func TestReady_AggregatesStatuses(t *testing.T) {
	tests := []struct {
		name      string
		checkers  map[string]Checker
		wantReady bool
		want      Status
	}{
		{
			name:      "no checkers",
			wantReady: true,
			want:      StatusHealthy,
		},
		{
			name: "degraded triggers",
			checkers: map[string]Checker{
				"triggers": TriggerChecker(func() domain.TriggerSet { return domain.TriggerSet{} }),
				"database": PingChecker(func(context.Context) error { return nil }, zap.NewNop()),
			},
			wantReady: true,
			want:      StatusDegraded,
		},
		{
			name: "database down",
			checkers: map[string]Checker{
				"triggers": TriggerChecker(func() domain.TriggerSet {
					return domain.NewTriggerSet(domain.IntentDefinition{Name: "hesap_iste", Triggers: []string{"hesap"}})
				}),
				"database": PingChecker(func(context.Context) error { return errors.New("refused") }, zap.NewNop()),
			},
			wantReady: false,
			want:      StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService("test", zap.NewNop())
			for name, c := range tt.checkers {
				svc.RegisterChecker(name, c)
			}

			resp := svc.Ready(context.Background())

			if resp.Ready != tt.wantReady || resp.Status != tt.want {
				t.Errorf("expected ready=%v status=%s, got ready=%v status=%s", tt.wantReady, tt.want, resp.Ready, resp.Status)
			}
			for name, result := range resp.Checks {
				if result.Name != name {
					t.Errorf("expected result name %q, got %q", name, result.Name)
				}
			}
		})
	}
}

func TestStateChecker(t *testing.T) {
	state := "closed"
	check := StateChecker(func() string { return state }, "closed")

	if got := check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", got.Status)
	}
	state = "open"
	if got := check(context.Background()); got.Status != StatusDegraded || got.Message != "open" {
		t.Errorf("expected degraded/open, got %s/%s", got.Status, got.Message)
	}
}

func TestFiberHandler_Routes(t *testing.T) {
	svc := NewService("1.2.3", zap.NewNop())
	svc.RegisterChecker("database", PingChecker(func(context.Context) error { return errors.New("refused") }, zap.NewNop()))

	app := fiber.New()
	NewFiberHandler(svc).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 from liveness, got %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Version != "1.2.3" {
		t.Errorf("expected version, got %q", health.Version)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/readyz", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 from readiness, got %d", resp.StatusCode)
	}
}
