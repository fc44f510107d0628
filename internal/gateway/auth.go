// Auth gate and entitlement check.
//
// DESIGN: Token validation is delegated to the identity store. A missing
// header, a malformed header, and a token the store rejects all fail the same
// way - Unauthorized, with no distinction surfaced to the caller. The
// entitlement check runs strictly after authentication and before any model
// invocation, and fails closed: lookup errors and "not entitled" are treated
// identically.
package gateway

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Subscription tiers.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// AuthContext is the per-request identity. It is created by the auth gate,
// discarded at request end, and never cached.
type AuthContext struct {
	UserID string
	Tier   string
}

// authenticate resolves the bearer credential into an AuthContext.
func (g *Gateway) authenticate(r *http.Request) (*AuthContext, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, errUnauthorized()
	}
	token := strings.TrimPrefix(header, "Bearer ")

	user, err := g.store.ResolveUser(r.Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("bearer token rejected")
		return nil, errUnauthorized()
	}

	if ev := requestEventFrom(r.Context()); ev != nil {
		ev.UserID = user.ID
	}
	return &AuthContext{UserID: user.ID, Tier: TierFree}, nil
}

// requirePro confirms the caller holds the pro entitlement, upgrading the
// AuthContext tier on success.
func (g *Gateway) requirePro(r *http.Request, actx *AuthContext) error {
	profile, err := g.store.GetProfile(r.Context(), actx.UserID)
	if err != nil {
		log.Debug().Err(err).Str("user_id", actx.UserID).Msg("entitlement lookup failed")
		return errSubscriptionRequired()
	}
	if !profile.IsPro {
		return errSubscriptionRequired()
	}

	actx.Tier = TierPro
	return nil
}
