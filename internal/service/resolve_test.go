package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gfcbot/rulekeeper/internal/models"
)

func TestResolveService_Resolve(t *testing.T) {
	var includeInactive = true
	store := &mockRuleStore{
		listRules: func(_ context.Context, _ string, _ models.Platform, inactive bool) ([]models.RewriteRule, error) {
			includeInactive = inactive
			return []models.RewriteRule{
				{ID: "b", Pattern: "vx", Kind: models.KindPrefix, Active: true, Priority: 1},
				{ID: "a", Pattern: "fx", Kind: models.KindPrefix, Active: true, Priority: 0},
			}, nil
		},
	}
	svc := NewResolveService(store)

	res, err := svc.Resolve(context.Background(), "g1", models.PlatformTwitter, "https://twitter.com/user/status/1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if includeInactive {
		t.Error("resolver loaded inactive rules")
	}
	if res.Outcome != models.OutcomeRewritten || res.URL != "https://fxtwitter.com/user/status/1" {
		t.Errorf("resolution = %+v, want rewrite via fx", res)
	}
}

func TestResolveService_Errors(t *testing.T) {
	storeErr := errors.New("db down")
	store := &mockRuleStore{
		listRules: func(_ context.Context, _ string, _ models.Platform, _ bool) ([]models.RewriteRule, error) {
			return nil, storeErr
		},
	}
	svc := NewResolveService(store)

	if _, err := svc.Resolve(context.Background(), "g1", "myspace", "https://x.com"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("unsupported platform err = %v, want ErrValidation", err)
	}
	if _, err := svc.Resolve(context.Background(), "g1", models.PlatformTwitter, "https://x.com"); !errors.Is(err, storeErr) {
		t.Errorf("store err = %v, want %v", err, storeErr)
	}
}
