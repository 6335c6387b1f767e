package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/authz"
)

// Authorizer decides whether any of the actor's roles may act on an object.
type Authorizer interface {
	AuthorizeRoles(roles []string, domain, object, action string) (allowed, enforced bool, err error)
}

// RequirePermission rejects requests whose actor lacks action on object. The
// domain is the :tenant path parameter, or the global domain when absent.
// Decisions in shadow mode are logged but never block.
func RequirePermission(a Authorizer, object, action string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		domain := c.Param("tenant")
		if domain == "" {
			domain = authz.GlobalDomain
		}

		actor := ActorFrom(c)

		allowed, enforced, err := a.AuthorizeRoles(actor.Roles, domain, object, action)

		fields := logrus.Fields{
			"actor_id":   actor.ID,
			"roles":      actor.Roles,
			"domain":     domain,
			"object":     object,
			"action":     action,
			"request_id": c.GetString(RequestIDKey),
		}

		if err != nil {
			log.WithError(err).WithFields(fields).Error("authorization check failed")
			if enforced {
				respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}
		}

		if !allowed {
			if enforced {
				log.WithFields(fields).Info("authorization denied")
				respondError(c, http.StatusForbidden, "forbidden", "permission denied")
				return
			}
			log.WithFields(fields).Debug("authorization would deny (shadow)")
		}

		c.Next()
	}
}
