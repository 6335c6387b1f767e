package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gfcbot/rulekeeper/internal/middleware"
	"github.com/gfcbot/rulekeeper/internal/models"
)

func TestActor(t *testing.T) {
	tests := []struct {
		name      string
		id, roles string
		wantCode  int
		want      models.Actor
	}{
		{"none", "", "", http.StatusOK, models.Actor{}},
		{"id and roles", " u1 ", "Admin, viewer,,", http.StatusOK, models.Actor{ID: "u1", Roles: []string{"admin", "viewer"}}},
		{"too long", strings.Repeat("x", 129), "", http.StatusBadRequest, models.Actor{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.Actor
			r := gin.New()
			r.Use(middleware.Actor())
			r.GET("/test", func(c *gin.Context) {
				got = middleware.ActorFrom(c)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.id != "" {
				req.Header.Set(middleware.ActorIDHeader, tt.id)
			}
			if tt.roles != "" {
				req.Header.Set(middleware.ActorRolesHeader, tt.roles)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}
			if got.ID != tt.want.ID || !slices.Equal(got.Roles, tt.want.Roles) {
				t.Errorf("actor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActorFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if a := middleware.ActorFrom(c); a.ID != "" || a.Roles != nil {
		t.Errorf("expected zero actor, got %+v", a)
	}
}

func TestRequireActor(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Actor())
	r.DELETE("/test", middleware.RequireActor(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, tt := range []struct {
		name      string
		id, roles string
		want      int
	}{
		{"roles without id", "", "moderator", http.StatusBadRequest},
		{"blank id", "   ", "moderator", http.StatusBadRequest},
		{"id present", "u1", "moderator", http.StatusNoContent},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/test", http.NoBody)
			req.Header.Set(middleware.ActorIDHeader, tt.id)
			req.Header.Set(middleware.ActorRolesHeader, tt.roles)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}
