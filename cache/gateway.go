// api/cache/gateway.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/fintrack-app/api/logging"
	"github.com/fintrack-app/api/model"
)

// Namespace categorizes a cached route; each namespace carries its own
// default TTL.
type Namespace string

const (
	NamespaceList          Namespace = "list"
	NamespaceDetail        Namespace = "detail"
	NamespaceBalance       Namespace = "balance"
	NamespaceReport        Namespace = "report"
	NamespaceSelectOptions Namespace = "selectOptions"
)

var allNamespaces = []Namespace{
	NamespaceList, NamespaceDetail, NamespaceBalance, NamespaceReport, NamespaceSelectOptions,
}

var defaultTTLs = map[Namespace]time.Duration{
	NamespaceList:          300 * time.Second,
	NamespaceDetail:        600 * time.Second,
	NamespaceBalance:       120 * time.Second,
	NamespaceReport:        900 * time.Second,
	NamespaceSelectOptions: 1800 * time.Second,
}

// AnonymousIdentity keys unauthenticated GETs so they never collide with a
// user's cached responses.
const AnonymousIdentity = "anonymous"

// Gateway is the read-through response cache for authenticated GET routes.
// Every backend failure is logged and treated as a miss: caching must never
// cause a request to fail.
type Gateway struct {
	backend Backend
	ttls    map[Namespace]time.Duration
}

func NewGateway(backend Backend) *Gateway {
	ttls := make(map[Namespace]time.Duration, len(defaultTTLs))
	for ns, fallback := range defaultTTLs {
		ttls[ns] = fallback
		if configured := viper.GetDuration("cache.ttl." + string(ns)); configured > 0 {
			ttls[ns] = configured
		}
	}
	return &Gateway{backend: backend, ttls: ttls}
}

// TTL returns the namespace's effective TTL.
func (g *Gateway) TTL(ns Namespace) time.Duration {
	return g.ttls[ns]
}

// Key derives the cache key for a request. The normalized path and the
// identity stay literal so invalidation globs can target them; the query
// string is order-insensitive and folded into a digest.
func (g *Gateway) Key(ns Namespace, method, rawPath string, query url.Values, identityID string) string {
	if identityID == "" {
		identityID = AnonymousIdentity
	}
	normalizedPath := strings.TrimRight(rawPath, "/")
	digest := sha1.Sum([]byte(sortedQueryString(query)))
	return fmt.Sprintf("%s:%s|%s|%s:%s",
		ns, method, normalizedPath, hex.EncodeToString(digest[:8]), identityID)
}

func sortedQueryString(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		values := append([]string(nil), query[name]...)
		sort.Strings(values)
		for _, value := range values {
			sb.WriteString(name)
			sb.WriteByte('=')
			sb.WriteString(value)
			sb.WriteByte('&')
		}
	}
	return sb.String()
}

// Lookup returns the cached payload for key, if any. Backend errors are
// logged and reported as a miss.
func (g *Gateway) Lookup(ctx context.Context, key string) (string, bool) {
	payload, hit, err := g.backend.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache lookup failed, bypassing cache",
			zap.String("key", key), zap.Error(err))
		return "", false
	}
	return payload, hit
}

// Store writes a successful response payload under key with the namespace's
// TTL. Failures are logged and swallowed.
func (g *Gateway) Store(ctx context.Context, ns Namespace, key, payload string) {
	if err := g.backend.SetEx(ctx, key, g.ttls[ns], payload); err != nil {
		logger.Warn("Cache write failed, response not cached",
			zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes every cached entry that could reflect the mutated
// resource for the given identity. Deliberately conservative: the globs may
// match slightly too many keys, but a stale entry must never stay reachable.
// The report namespace aggregates across resources, so a mutation of any
// resource drops all of the identity's cached reports. Balances aggregate
// entries under an account path, so an entry mutation drops every cached
// balance the same way.
func (g *Gateway) Invalidate(ctx context.Context, resource model.Resource, identityID string) {
	patterns := make([]string, 0, len(allNamespaces))
	for _, ns := range allNamespaces {
		crossResource := ns == NamespaceReport ||
			(ns == NamespaceBalance && resource == model.ResourceEntries)
		if crossResource {
			patterns = append(patterns, fmt.Sprintf("%s:*:%s*", ns, identityID))
			continue
		}
		patterns = append(patterns, fmt.Sprintf("%s:*%s*:%s*", ns, resourcePathToken(resource), identityID))
	}

	for _, pattern := range patterns {
		keys, err := g.backend.Keys(ctx, pattern)
		if err != nil {
			logger.Warn("Cache invalidation scan failed",
				zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := g.backend.Del(ctx, keys...); err != nil {
			logger.Warn("Cache invalidation delete failed",
				zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		logger.Debug("Cache entries invalidated",
			zap.String("pattern", pattern), zap.Int("count", len(keys)))
	}
}

// resourcePathToken maps a resource to the token that appears in its route
// paths (and therefore in cache keys).
func resourcePathToken(resource model.Resource) string {
	switch resource {
	case model.ResourceCreditCards:
		return "credit-cards"
	default:
		return string(resource)
	}
}
