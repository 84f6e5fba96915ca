// api/governor/governor_test.go
package governor_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/cache"
	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/governor"
	logger "github.com/fintrack-app/api/logging"
	"github.com/fintrack-app/api/model"
	"github.com/fintrack-app/api/ratelimit"
	"github.com/fintrack-app/api/test/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dir, _ := os.MkdirTemp("", "fintrack-logs")
	logger.InitLogger(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

const (
	freeToken  = "token-free"
	adminToken = "token-admin"

	freeUserID  = "user-free"
	adminUserID = "user-admin"
)

func freePlan() *model.Plan {
	return &model.Plan{
		ID:   "plan-free",
		Tier: "free",
		Features: map[model.Resource]model.ResourceLimit{
			model.ResourceCategories:  model.UnlimitedLimit(),
			model.ResourceAccounts:    model.LimitedTo(1),
			model.ResourceCreditCards: model.DisabledLimit(),
		},
		Reports: model.ReportFeatures{Basic: true},
	}
}

// fixture wires a Governor against in-memory backends and mocked stores,
// with a spy handler behind every governed route.
type fixture struct {
	identities *mock.MockIdentityStore
	instances  *mock.MockInstanceLoader
	counter    *mock.MockCounter
	engine     *gin.Engine
	gov        *governor.Governor

	handlerCalls int
}

func newFixture() *fixture {
	f := &fixture{
		identities: new(mock.MockIdentityStore),
		instances:  new(mock.MockInstanceLoader),
		counter:    new(mock.MockCounter),
	}
	verifier := mock.StaticTokenVerifier{Tokens: map[string]string{
		freeToken:  freeUserID,
		adminToken: adminUserID,
	}}
	f.gov = governor.New(
		verifier,
		f.identities,
		f.instances,
		f.counter,
		cache.NewGateway(cache.NewMemoryBackend()),
		ratelimit.NewLimiter(ratelimit.NewMemoryStore()),
		nil,
	)
	f.engine = gin.New()
	return f
}

func (f *fixture) knowFreeUser() {
	f.identities.On("GetIdentity", tmock.Anything, freeUserID).
		Return(model.Identity{UserID: freeUserID, Role: model.RoleUser, PlanID: "plan-free"}, freePlan(), nil)
}

func (f *fixture) knowAdmin() {
	f.identities.On("GetIdentity", tmock.Anything, adminUserID).
		Return(model.Identity{UserID: adminUserID, Role: model.RoleAdmin}, nil, nil)
}

// spyHandler counts invocations and writes a canned JSON body.
func (f *fixture) spyHandler(c *gin.Context) {
	f.handlerCalls++
	c.JSON(http.StatusOK, gin.H{"data": "ok", "call": f.handlerCalls})
}

func (f *fixture) route(method, path string, spec governor.RouteSpec) {
	f.engine.Handle(method, path, f.gov.Govern(spec), f.spyHandler)
}

func (f *fixture) perform(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func listAccountsSpec() governor.RouteSpec {
	return governor.RouteSpec{
		Action:   ability.ActionRead,
		Subject:  ability.SubjectAccount,
		Resource: model.ResourceAccounts,
	}
}

func createAccountSpec() governor.RouteSpec {
	return governor.RouteSpec{
		Action:       ability.ActionCreate,
		Subject:      ability.SubjectAccount,
		Resource:     model.ResourceAccounts,
		LimiterClass: ratelimit.CreateClass,
	}
}

func TestGovern_MissingToken(t *testing.T) {
	f := newFixture()
	f.route(http.MethodGet, "/accounts", listAccountsSpec())

	w := f.perform(http.MethodGet, "/accounts", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, fintrack_errors.ErrMissingToken.Error(), decodeBody(t, w)["message"])
	assert.Zero(t, f.handlerCalls, "handler must not run on a short-circuit")
	f.identities.AssertNotCalled(t, "GetIdentity", tmock.Anything, tmock.Anything)
}

func TestGovern_InvalidToken(t *testing.T) {
	f := newFixture()
	f.route(http.MethodGet, "/accounts", listAccountsSpec())

	w := f.perform(http.MethodGet, "/accounts", "no-such-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, fintrack_errors.ErrInvalidToken.Error(), decodeBody(t, w)["message"])
	assert.Zero(t, f.handlerCalls)
}

func TestGovern_UnknownUser(t *testing.T) {
	f := newFixture()
	f.identities.On("GetIdentity", tmock.Anything, freeUserID).
		Return(model.Identity{}, nil, fintrack_errors.ErrUserNotFound)
	f.route(http.MethodGet, "/accounts", listAccountsSpec())

	w := f.perform(http.MethodGet, "/accounts", freeToken)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, fintrack_errors.ErrUserNotFound.Error(), decodeBody(t, w)["message"])
	assert.Zero(t, f.handlerCalls)
}

func TestGovern_IdentityStoreFailure(t *testing.T) {
	f := newFixture()
	f.identities.On("GetIdentity", tmock.Anything, freeUserID).
		Return(model.Identity{}, nil, assert.AnError)
	f.route(http.MethodGet, "/accounts", listAccountsSpec())

	w := f.perform(http.MethodGet, "/accounts", freeToken)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["message"])
	assert.Zero(t, f.handlerCalls)
}

func TestGovern_PermissionDenied(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	// Credit cards are disabled on the free plan; the ability has no rule
	// granting their creation.
	f.route(http.MethodPost, "/credit-cards", governor.RouteSpec{
		Action:       ability.ActionCreate,
		Subject:      ability.SubjectCreditCard,
		Resource:     model.ResourceCreditCards,
		LimiterClass: ratelimit.CreateClass,
	})

	w := f.perform(http.MethodPost, "/credit-cards", freeToken)

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "you are not allowed to perform this action", body["message"])
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok, "denial carries structured details")
	required := errs["required"].(map[string]interface{})
	assert.Equal(t, "create", required["action"])
	assert.Equal(t, "CreditCard", required["subject"])
	assert.Equal(t, "user", errs["role"])
	assert.Equal(t, "free", errs["plan"])
	assert.Zero(t, f.handlerCalls)
	f.counter.AssertNotCalled(t, "CountOwnedBy", tmock.Anything, tmock.Anything, tmock.Anything)
}

func TestGovern_QuotaExceeded(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.counter.On("CountOwnedBy", tmock.Anything, freeUserID, model.ResourceAccounts).
		Return(uint(1), nil)
	f.route(http.MethodPost, "/accounts", createAccountSpec())

	w := f.perform(http.MethodPost, "/accounts", freeToken)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "accounts")
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, "accounts", errs["resource"])
	assert.Equal(t, float64(1), errs["max"])
	assert.Zero(t, f.handlerCalls)
	f.counter.AssertExpectations(t)
}

func TestGovern_QuotaAllowsUnderLimit(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.counter.On("CountOwnedBy", tmock.Anything, freeUserID, model.ResourceAccounts).
		Return(uint(0), nil)
	f.route(http.MethodPost, "/accounts", createAccountSpec())

	w := f.perform(http.MethodPost, "/accounts", freeToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.handlerCalls)
}

func TestGovern_QuotaCounterFailure(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.counter.On("CountOwnedBy", tmock.Anything, freeUserID, model.ResourceAccounts).
		Return(uint(0), assert.AnError)
	f.route(http.MethodPost, "/accounts", createAccountSpec())

	w := f.perform(http.MethodPost, "/accounts", freeToken)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, f.handlerCalls)
}

func TestGovern_AdminSkipsQuota(t *testing.T) {
	f := newFixture()
	f.knowAdmin()
	f.route(http.MethodPost, "/accounts", createAccountSpec())

	w := f.perform(http.MethodPost, "/accounts", adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.handlerCalls)
	f.counter.AssertNotCalled(t, "CountOwnedBy", tmock.Anything, tmock.Anything, tmock.Anything)
}

func TestGovern_CacheMissThenHit(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.route(http.MethodGet, "/accounts/select-options", governor.RouteSpec{
		Action:         ability.ActionRead,
		Subject:        ability.SubjectAccount,
		Resource:       model.ResourceAccounts,
		CacheNamespace: cache.NamespaceSelectOptions,
	})

	first := f.perform(http.MethodGet, "/accounts/select-options", freeToken)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, f.handlerCalls)

	second := f.perform(http.MethodGet, "/accounts/select-options", freeToken)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, f.handlerCalls, "hit must be served without the handler")
	assert.Equal(t, first.Body.String(), second.Body.String(), "hit body matches the cached response")
	assert.Equal(t, first.Header().Get("X-Cache-Key"), second.Header().Get("X-Cache-Key"))
}

func TestGovern_MutationInvalidatesCache(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.counter.On("CountOwnedBy", tmock.Anything, freeUserID, model.ResourceAccounts).
		Return(uint(0), nil)
	listSpec := listAccountsSpec()
	listSpec.CacheNamespace = cache.NamespaceList
	f.route(http.MethodGet, "/accounts", listSpec)
	f.route(http.MethodPost, "/accounts", createAccountSpec())

	f.perform(http.MethodGet, "/accounts", freeToken)
	warm := f.perform(http.MethodGet, "/accounts", freeToken)
	require.Equal(t, "HIT", warm.Header().Get("X-Cache"))

	create := f.perform(http.MethodPost, "/accounts", freeToken)
	require.Equal(t, http.StatusOK, create.Code)

	after := f.perform(http.MethodGet, "/accounts", freeToken)
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"), "mutation must drop the cached list")
}

func TestGovern_RateLimitExhaustion(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	spec := listAccountsSpec()
	spec.LimiterClass = ratelimit.Class{Name: "testBurst", Limit: 2, Window: time.Minute}
	f.route(http.MethodGet, "/accounts", spec)

	first := f.perform(http.MethodGet, "/accounts", freeToken)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := f.perform(http.MethodGet, "/accounts", freeToken)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := f.perform(http.MethodGet, "/accounts", freeToken)
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "too many requests, slow down", decodeBody(t, third)["message"])

	_, err := time.Parse(time.RFC3339, third.Header().Get("X-RateLimit-Reset"))
	assert.NoError(t, err, "reset header is RFC3339")
	assert.Equal(t, 2, f.handlerCalls)
}

func detailAccountSpec() governor.RouteSpec {
	return governor.RouteSpec{
		Action:    ability.ActionRead,
		Subject:   ability.SubjectAccount,
		Resource:  model.ResourceAccounts,
		Ownership: true,
	}
}

func TestGovern_OwnershipNotFound(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.instances.On("LoadOwned", tmock.Anything, model.ResourceAccounts, "acc-404").
		Return(nil, fintrack_errors.ErrResourceNotFound)
	f.route(http.MethodGet, "/accounts/:id", detailAccountSpec())

	w := f.perform(http.MethodGet, "/accounts/acc-404", freeToken)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, f.handlerCalls)
}

func TestGovern_OwnershipForeignInstance(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.instances.On("LoadOwned", tmock.Anything, model.ResourceAccounts, "acc-2").
		Return(&model.OwnedRecord{ID: "acc-2", OwnerID: "someone-else"}, nil)
	f.route(http.MethodGet, "/accounts/:id", detailAccountSpec())

	w := f.perform(http.MethodGet, "/accounts/acc-2", freeToken)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "you are not allowed to access this resource", decodeBody(t, w)["message"])
	assert.Zero(t, f.handlerCalls)
}

func TestGovern_OwnershipOwnInstance(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.instances.On("LoadOwned", tmock.Anything, model.ResourceAccounts, "acc-1").
		Return(&model.OwnedRecord{ID: "acc-1", OwnerID: freeUserID}, nil)
	f.route(http.MethodGet, "/accounts/:id", detailAccountSpec())

	w := f.perform(http.MethodGet, "/accounts/acc-1", freeToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.handlerCalls)
}

func TestGovern_AdminTouchesForeignInstance(t *testing.T) {
	f := newFixture()
	f.knowAdmin()
	f.instances.On("LoadOwned", tmock.Anything, model.ResourceAccounts, "acc-1").
		Return(&model.OwnedRecord{ID: "acc-1", OwnerID: freeUserID}, nil)
	f.route(http.MethodGet, "/accounts/:id", detailAccountSpec())

	w := f.perform(http.MethodGet, "/accounts/acc-1", adminToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.handlerCalls)
}

func TestGovern_CacheIsPerUser(t *testing.T) {
	f := newFixture()
	f.knowFreeUser()
	f.knowAdmin()
	spec := listAccountsSpec()
	spec.CacheNamespace = cache.NamespaceList
	f.route(http.MethodGet, "/accounts", spec)

	f.perform(http.MethodGet, "/accounts", freeToken)
	other := f.perform(http.MethodGet, "/accounts", adminToken)

	assert.Equal(t, "MISS", other.Header().Get("X-Cache"), "another user's cache entry must not be served")
	assert.Equal(t, 2, f.handlerCalls)
}
