package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// Headers carrying the acting identity, set by the calling service after it
// has established the user's session.
const (
	ActorIDHeader    = "X-Actor-ID"
	ActorRolesHeader = "X-Actor-Roles"
)

const (
	actorKey      = "actor"
	maxActorIDLen = 128
)

// Actor reads the acting identity from request headers. A missing actor is
// allowed here; routes that change state add RequireActor.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ActorIDHeader))
		if len(id) > maxActorIDLen {
			respondError(c, http.StatusBadRequest, "bad_request", "actor id too long")
			return
		}

		var roles []string
		for _, r := range strings.Split(c.GetHeader(ActorRolesHeader), ",") {
			if r = strings.TrimSpace(strings.ToLower(r)); r != "" {
				roles = append(roles, r)
			}
		}

		c.Set(actorKey, models.Actor{ID: id, Roles: roles})
		c.Next()
	}
}

// RequireActor rejects requests without an actor id, so every change made
// over HTTP is attributable in the audit log. It must run after Actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c).ID == "" {
			respondError(c, http.StatusBadRequest, "actor_required", ActorIDHeader+" header is required for changes")
			return
		}

		c.Next()
	}
}

// ActorFrom returns the acting identity stored by Actor.
func ActorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(models.Actor); ok {
			return a
		}
	}

	return models.Actor{}
}
