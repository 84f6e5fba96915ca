// api/cache/gateway_test.go
package cache

import (
	"context"
	"errors"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	logger "github.com/fintrack-app/api/logging"
	"github.com/fintrack-app/api/model"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "fintrack-logs")
	logger.InitLogger(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestGatewayKey_Deterministic(t *testing.T) {
	g := NewGateway(NewMemoryBackend())

	q1 := url.Values{"b": {"2"}, "a": {"1"}}
	q2 := url.Values{"a": {"1"}, "b": {"2"}}

	k1 := g.Key(NamespaceList, "GET", "/api/v1/accounts", q1, "user-1")
	k2 := g.Key(NamespaceList, "GET", "/api/v1/accounts", q2, "user-1")
	assert.Equal(t, k1, k2, "query order must not change the key")

	k3 := g.Key(NamespaceList, "GET", "/api/v1/accounts", q1, "user-2")
	assert.NotEqual(t, k1, k3, "identity is part of the key")

	k4 := g.Key(NamespaceList, "GET", "/api/v1/accounts", url.Values{"a": {"1"}}, "user-1")
	assert.NotEqual(t, k1, k4, "query values are part of the key")
}

func TestGatewayKey_Anonymous(t *testing.T) {
	g := NewGateway(NewMemoryBackend())
	key := g.Key(NamespaceList, "GET", "/api/v1/accounts", nil, "")
	assert.Contains(t, key, AnonymousIdentity)
}

func TestGatewayTTLDefaults(t *testing.T) {
	g := NewGateway(NewMemoryBackend())

	assert.Equal(t, 300*time.Second, g.TTL(NamespaceList))
	assert.Equal(t, 600*time.Second, g.TTL(NamespaceDetail))
	assert.Equal(t, 120*time.Second, g.TTL(NamespaceBalance))
	assert.Equal(t, 900*time.Second, g.TTL(NamespaceReport))
	assert.Equal(t, 1800*time.Second, g.TTL(NamespaceSelectOptions))
}

func TestGatewayStoreLookup(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Stop()
	g := NewGateway(backend)
	ctx := context.Background()

	key := g.Key(NamespaceList, "GET", "/api/v1/accounts", nil, "user-1")
	_, hit := g.Lookup(ctx, key)
	assert.False(t, hit)

	g.Store(ctx, NamespaceList, key, `[{"id":"a1"}]`)

	payload, hit := g.Lookup(ctx, key)
	assert.True(t, hit)
	assert.Equal(t, `[{"id":"a1"}]`, payload)
}

func TestGatewayInvalidate(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Stop()
	g := NewGateway(backend)
	ctx := context.Background()

	ownList := g.Key(NamespaceList, "GET", "/api/v1/accounts", nil, "user-1")
	ownReport := g.Key(NamespaceReport, "GET", "/api/v1/reports/monthly", nil, "user-1")
	otherUserList := g.Key(NamespaceList, "GET", "/api/v1/accounts", nil, "user-2")
	ownCategories := g.Key(NamespaceList, "GET", "/api/v1/categories", nil, "user-1")

	g.Store(ctx, NamespaceList, ownList, "a")
	g.Store(ctx, NamespaceReport, ownReport, "b")
	g.Store(ctx, NamespaceList, otherUserList, "c")
	g.Store(ctx, NamespaceList, ownCategories, "d")

	g.Invalidate(ctx, model.ResourceAccounts, "user-1")

	_, hit := g.Lookup(ctx, ownList)
	assert.False(t, hit, "own account list must be invalidated")
	_, hit = g.Lookup(ctx, ownReport)
	assert.False(t, hit, "reports aggregate accounts, so they go too")
	_, hit = g.Lookup(ctx, otherUserList)
	assert.True(t, hit, "another user's cache survives")
	_, hit = g.Lookup(ctx, ownCategories)
	assert.True(t, hit, "an unrelated resource survives")
}

func TestGatewayInvalidate_EntryMutationDropsBalances(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Stop()
	g := NewGateway(backend)
	ctx := context.Background()

	// Balance keys carry the account path, not "entries", yet entry
	// mutations change the balance.
	ownBalance := g.Key(NamespaceBalance, "GET", "/api/v1/accounts/acc-1/balance", nil, "user-1")
	otherBalance := g.Key(NamespaceBalance, "GET", "/api/v1/accounts/acc-9/balance", nil, "user-2")
	ownAccountList := g.Key(NamespaceList, "GET", "/api/v1/accounts", nil, "user-1")

	g.Store(ctx, NamespaceBalance, ownBalance, "100.00")
	g.Store(ctx, NamespaceBalance, otherBalance, "7.50")
	g.Store(ctx, NamespaceList, ownAccountList, "[]")

	g.Invalidate(ctx, model.ResourceEntries, "user-1")

	_, hit := g.Lookup(ctx, ownBalance)
	assert.False(t, hit, "stale balance must not survive an entry mutation")
	_, hit = g.Lookup(ctx, otherBalance)
	assert.True(t, hit, "another user's balance survives")
	_, hit = g.Lookup(ctx, ownAccountList)
	assert.True(t, hit, "account list does not reflect entries")
}

func TestGatewayInvalidate_AccountMutationDropsOwnBalance(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Stop()
	g := NewGateway(backend)
	ctx := context.Background()

	key := g.Key(NamespaceBalance, "GET", "/api/v1/accounts/acc-1/balance", nil, "user-1")
	g.Store(ctx, NamespaceBalance, key, "100.00")

	g.Invalidate(ctx, model.ResourceAccounts, "user-1")

	_, hit := g.Lookup(ctx, key)
	assert.False(t, hit, "balance key contains the account path token")
}

func TestGatewayInvalidate_CreditCardsPathToken(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Stop()
	g := NewGateway(backend)
	ctx := context.Background()

	key := g.Key(NamespaceSelectOptions, "GET", "/api/v1/credit-cards/select-options", nil, "user-1")
	g.Store(ctx, NamespaceSelectOptions, key, "x")

	g.Invalidate(ctx, model.ResourceCreditCards, "user-1")

	_, hit := g.Lookup(ctx, key)
	assert.False(t, hit)
}

// failingBackend errors on every call.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend down")
}
func (failingBackend) SetEx(context.Context, string, time.Duration, string) error {
	return errors.New("backend down")
}
func (failingBackend) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("backend down")
}
func (failingBackend) Del(context.Context, ...string) error {
	return errors.New("backend down")
}

func TestGatewayFailOpen(t *testing.T) {
	g := NewGateway(failingBackend{})
	ctx := context.Background()

	_, hit := g.Lookup(ctx, "any")
	assert.False(t, hit, "a failing backend reads as a miss")

	// Neither write nor invalidation may panic or surface an error.
	g.Store(ctx, NamespaceList, "any", "payload")
	g.Invalidate(ctx, model.ResourceAccounts, "user-1")
}
