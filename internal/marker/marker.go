// Package marker persists the per-tenant set of orders flagged as altered,
// so highlighting survives restarts and is shared between dashboards.
package marker

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

const (
	keyPrefix    = "marker-store:"
	globalTenant = "global"
)

// KV is the durable key/value storage the markers live in.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Key returns the storage key for a tenant; an empty tenant maps to "global".
func Key(tenantID string) string {
	if tenantID == "" {
		return keyPrefix + globalTenant
	}
	return keyPrefix + tenantID
}

// Set is a set of order ids.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes id.
func (s Set) Remove(id string) {
	delete(s, id)
}

// Clone copies the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store loads and saves marker sets on top of a KV. Neither operation
// surfaces errors: a marker store outage only costs highlighting.
type Store struct {
	kv     KV
	logger logger.Logger
}

// NewStore creates a Store.
func NewStore(kv KV, log logger.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: log,
	}
}

// Load returns the tenant's set. Missing, corrupt or unreachable storage
// yields an empty set.
func (s *Store) Load(ctx context.Context, tenantID string) Set {
	key := Key(tenantID)

	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warnf(ctx, "[MarkerStore] load %s failed: %v", key, err)
		return Set{}
	}
	if !found || raw == "" {
		return Set{}
	}

	var values []interface{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		s.logger.Warnf(ctx, "[MarkerStore] discarding corrupt value at %s: %v", key, err)
		return Set{}
	}

	set := make(Set, len(values))
	for _, v := range values {
		switch id := v.(type) {
		case string:
			set.Add(id)
		case float64:
			set.Add(strconv.FormatFloat(id, 'f', -1, 64))
		}
	}
	return set
}

// Save writes the tenant's set as a sorted JSON array. Failures are logged.
func (s *Store) Save(ctx context.Context, tenantID string, set Set) {
	key := Key(tenantID)

	body, err := json.Marshal(set.Sorted())
	if err != nil {
		s.logger.Errorf(ctx, "[MarkerStore] encode %s failed: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, key, string(body)); err != nil {
		s.logger.Warnf(ctx, "[MarkerStore] save %s failed: %v", key, err)
	}
}
