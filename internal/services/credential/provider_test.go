package credential

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/foliosync/internal/common"
	"github.com/bobmcallan/foliosync/internal/models"
)

type mockOwnerStore struct {
	owners map[string]*models.Owner
}

func (m *mockOwnerStore) Get(_ context.Context, ownerID string) (*models.Owner, error) {
	o, ok := m.owners[ownerID]
	if !ok {
		return nil, fmt.Errorf("owner '%s' not found", ownerID)
	}
	return o, nil
}

func (m *mockOwnerStore) Save(_ context.Context, o *models.Owner) error {
	m.owners[o.ID] = o
	return nil
}

func (m *mockOwnerStore) Delete(_ context.Context, ownerID string) error {
	delete(m.owners, ownerID)
	return nil
}

func (m *mockOwnerStore) List(_ context.Context) ([]*models.Owner, error)       { return nil, nil }
func (m *mockOwnerStore) ListActive(_ context.Context) ([]*models.Owner, error) { return nil, nil }

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "owner-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestProvider(owners map[string]*models.Owner) *Provider {
	return NewProvider(&mockOwnerStore{owners: owners}, common.NewSilentLogger())
}

func TestToken_MissingOwner(t *testing.T) {
	p := newTestProvider(map[string]*models.Owner{})
	_, err := p.Token(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestToken_EmptyCredential(t *testing.T) {
	p := newTestProvider(map[string]*models.Owner{
		"owner-1": {ID: "owner-1", Active: true},
	})
	_, err := p.Token(context.Background(), "owner-1")
	assert.Error(t, err)
}

func TestHealthy_OpaqueTokenIsHealthy(t *testing.T) {
	p := newTestProvider(map[string]*models.Owner{
		"owner-1": {ID: "owner-1", Active: true, BrokerToken: "opaque-bearer-token"},
	})
	assert.True(t, p.Healthy(context.Background(), "owner-1"))
}

func TestHealthy_ValidJWT(t *testing.T) {
	p := newTestProvider(map[string]*models.Owner{
		"owner-1": {ID: "owner-1", Active: true, BrokerToken: signedToken(t, time.Now().Add(time.Hour))},
	})
	assert.True(t, p.Healthy(context.Background(), "owner-1"))
}

func TestHealthy_ExpiredJWT(t *testing.T) {
	p := newTestProvider(map[string]*models.Owner{
		"owner-1": {ID: "owner-1", Active: true, BrokerToken: signedToken(t, time.Now().Add(-time.Hour))},
	})
	assert.False(t, p.Healthy(context.Background(), "owner-1"))
}

func TestHealthy_MissingCredential(t *testing.T) {
	p := newTestProvider(map[string]*models.Owner{
		"owner-1": {ID: "owner-1", Active: true},
	})
	assert.False(t, p.Healthy(context.Background(), "owner-1"))
}
