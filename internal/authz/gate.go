package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/wecare-dev/wecare/internal/session"
	"github.com/wecare-dev/wecare/internal/user"
)

// GrantStore answers whether a user holds an active break-glass grant. The
// grant is data in the policy store, not an identity baked into code.
type GrantStore interface {
	HasActiveGrant(ctx context.Context, userID string) (bool, error)
}

// Decision is the gate's whole answer. A denial carries nothing else: the
// caller never learns whether the role was wrong or unknown.
type Decision struct {
	Allowed       bool
	EffectiveRole user.Role
	ViaBreakGlass bool
}

type Gate struct {
	grants GrantStore
	logger *zap.Logger
}

func NewGate(grants GrantStore, logger *zap.Logger) *Gate {
	return &Gate{grants: grants, logger: logger}
}

// Authorize allows a session iff its role is in the allow-set, or the user
// holds a break-glass grant. Every exercised grant is audit-logged; a grant
// store failure fails closed.
func (g *Gate) Authorize(ctx context.Context, sess *session.Session, allowed []user.Role) Decision {
	for _, role := range allowed {
		if sess.Role == role {
			return Decision{Allowed: true, EffectiveRole: sess.Role}
		}
	}

	granted, err := g.grants.HasActiveGrant(ctx, sess.UserID)
	if err != nil {
		g.logger.Error("break-glass grant lookup failed, denying",
			zap.String("user_id", sess.UserID), zap.Error(err))
		return Decision{}
	}
	if !granted {
		return Decision{}
	}

	g.logger.Warn("break-glass grant exercised",
		zap.String("user_id", sess.UserID),
		zap.String("role", string(sess.Role)),
		zap.String("effective_role", string(user.RoleDeveloper)),
	)
	return Decision{Allowed: true, EffectiveRole: user.RoleDeveloper, ViaBreakGlass: true}
}
