package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gfcbot/rulekeeper/internal/api"
	"github.com/gfcbot/rulekeeper/internal/middleware"
	"github.com/gfcbot/rulekeeper/internal/models"
)

func ruleRouter(svc *mockRuleService) http.Handler {
	r := newTestRouter()
	h := api.NewRuleHandler(svc, testLogger())
	r.GET("/servers/:tenant/rules", h.List)
	r.POST("/servers/:tenant/rules", h.Create)
	r.PUT("/servers/:tenant/rules/reorder", h.Reorder)
	r.PATCH("/servers/:tenant/rules/:id", h.Update)
	r.DELETE("/servers/:tenant/rules/:id", h.Delete)

	return r
}

func TestRuleList_Filters(t *testing.T) {
	t.Parallel()

	var gotPlatform models.Platform
	var gotInactive bool
	svc := &mockRuleService{
		listFn: func(_ context.Context, _ string, p models.Platform, inactive bool) ([]models.RewriteRule, error) {
			gotPlatform, gotInactive = p, inactive
			return []models.RewriteRule{{ID: "r1", Platform: p}}, nil
		},
	}

	w := doRequest(ruleRouter(svc), http.MethodGet, tenantPath("/rules?platform=Twitter&include_inactive=true"), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotPlatform != models.PlatformTwitter || !gotInactive {
		t.Errorf("filters = %q/%v, want twitter/true", gotPlatform, gotInactive)
	}
}

func TestRuleList_BadPlatform(t *testing.T) {
	t.Parallel()

	w := doRequest(ruleRouter(&mockRuleService{}), http.MethodGet, tenantPath("/rules?platform=myspace"), "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRuleList_BadTenant(t *testing.T) {
	t.Parallel()

	w := doRequest(ruleRouter(&mockRuleService{}), http.MethodGet, "/servers/bad%20id/rules", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRuleCreate_PassesActor(t *testing.T) {
	t.Parallel()

	var gotActor models.Actor
	svc := &mockRuleService{
		addFn: func(_ context.Context, actor models.Actor, tenantID string, req models.CreateRuleRequest) (*models.RewriteRule, error) {
			gotActor = actor
			return &models.RewriteRule{ID: "r1", TenantID: tenantID, Platform: req.Platform, Pattern: req.Pattern, Kind: req.Kind}, nil
		},
	}

	w := doRequest(ruleRouter(svc), http.MethodPost, tenantPath("/rules"),
		`{"platform":"twitter","pattern":"fx","kind":"prefix"}`,
		middleware.ActorIDHeader, "u1")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotActor.ID != "u1" {
		t.Errorf("actor = %q, want u1", gotActor.ID)
	}

	var rule models.RewriteRule
	if err := json.Unmarshal(w.Body.Bytes(), &rule); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rule.ID != "r1" || rule.TenantID != testTenantID {
		t.Errorf("unexpected rule %+v", rule)
	}
}

func TestRuleCreate_InvalidBody(t *testing.T) {
	t.Parallel()

	w := doRequest(ruleRouter(&mockRuleService{}), http.MethodPost, tenantPath("/rules"), `{"platform":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRuleErrors_MapToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.ErrMissingPattern, http.StatusBadRequest},
		{"not found", models.ErrRuleNotFound, http.StatusNotFound},
		{"conflict", fmt.Errorf("updating rule: %w", models.ErrConflict), http.StatusConflict},
		{"dependency", fmt.Errorf("%w: connection refused", models.ErrDependency), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockRuleService{
				updateFn: func(context.Context, models.Actor, string, string, models.RulePatch) (*models.RewriteRule, error) {
					return nil, tt.err
				},
			}

			w := doRequest(ruleRouter(svc), http.MethodPatch, tenantPath("/rules/r1"), `{"active":false}`)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRuleUpdate_DecodesPatch(t *testing.T) {
	t.Parallel()

	var got models.RulePatch
	svc := &mockRuleService{
		updateFn: func(_ context.Context, _ models.Actor, _, ruleID string, patch models.RulePatch) (*models.RewriteRule, error) {
			got = patch
			return &models.RewriteRule{ID: ruleID}, nil
		},
	}

	w := doRequest(ruleRouter(svc), http.MethodPatch, tenantPath("/rules/r1"), `{"active":false,"pattern":null}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if active, ok := got.Active.Get(); !ok || active {
		t.Errorf("active = %v/%v, want false/set", active, ok)
	}
	if got.Pattern.IsSet() || got.Kind.IsSet() {
		t.Error("null and absent fields should be unset")
	}
}

func TestRuleDelete(t *testing.T) {
	t.Parallel()

	var gotID string
	svc := &mockRuleService{
		removeFn: func(_ context.Context, _ models.Actor, _, ruleID string) error {
			gotID = ruleID
			return nil
		},
	}

	w := doRequest(ruleRouter(svc), http.MethodDelete, tenantPath("/rules/r9"), "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if gotID != "r9" {
		t.Errorf("rule id = %q, want r9", gotID)
	}
}

func TestRuleReorder(t *testing.T) {
	t.Parallel()

	svc := &mockRuleService{
		reorderFn: func(_ context.Context, _ models.Actor, _ string, req models.ReorderRequest) ([]models.RewriteRule, error) {
			out := make([]models.RewriteRule, len(req.RuleIDs))
			for i, id := range req.RuleIDs {
				out[i] = models.RewriteRule{ID: id, Priority: i}
			}
			return out, nil
		},
	}

	w := doRequest(ruleRouter(svc), http.MethodPut, tenantPath("/rules/reorder"),
		`{"platform":"twitter","rule_ids":["b","a"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Rules []models.RewriteRule `json:"rules"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Rules) != 2 || body.Rules[0].ID != "b" || body.Rules[1].Priority != 1 {
		t.Errorf("unexpected order %+v", body.Rules)
	}
}
