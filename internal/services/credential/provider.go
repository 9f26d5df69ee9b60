// Package credential resolves per-owner brokerage bearer credentials.
package credential

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/interfaces"
)

// Provider implements CredentialProvider backed by the owner store.
type Provider struct {
	owners interfaces.OwnerStore
	logger *common.Logger
	now    func() time.Time
}

// NewProvider creates a new credential provider
func NewProvider(owners interfaces.OwnerStore, logger *common.Logger) *Provider {
	return &Provider{
		owners: owners,
		logger: logger,
		now:    time.Now,
	}
}

// Token returns the owner's bearer credential
func (p *Provider) Token(ctx context.Context, ownerID string) (string, error) {
	owner, err := p.owners.Get(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to load owner %s: %w", ownerID, err)
	}
	if owner.BrokerToken == "" {
		return "", fmt.Errorf("no credential stored for owner %s", ownerID)
	}
	return owner.BrokerToken, nil
}

// Healthy reports whether the owner has a usable credential. JWT tokens are
// parsed (claims only, no signature verification — the upstream is the
// authority) and checked for expiry; opaque tokens are healthy when present.
func (p *Provider) Healthy(ctx context.Context, ownerID string) bool {
	token, err := p.Token(ctx, ownerID)
	if err != nil {
		return false
	}

	if !looksLikeJWT(token) {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		p.logger.Warn().Err(err).Str("owner", ownerID).Msg("Credential is not a parseable JWT")
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No expiry claim — treat as healthy
		return true
	}

	if exp.Before(p.now()) {
		p.logger.Warn().
			Str("owner", ownerID).
			Time("expired_at", exp.Time).
			Msg("Credential expired")
		return false
	}

	return true
}

// looksLikeJWT checks for the three-segment dotted shape of a JWT.
func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// Ensure Provider implements CredentialProvider
var _ interfaces.CredentialProvider = (*Provider)(nil)
