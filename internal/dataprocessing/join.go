package dataprocessing

import (
	"fmt"

	"ecomcli/internal/config"
	apperrors "ecomcli/internal/errors"
)

// ReviewPolicy decides what happens when an order has several reviews
type ReviewPolicy int

const (
	// ReviewsReject fails the build on a second review for an order
	ReviewsReject ReviewPolicy = iota
	// ReviewsKeepFirst keeps the first review per order and counts the rest
	ReviewsKeepFirst
)

// String returns the configuration name of the policy
func (p ReviewPolicy) String() string {
	switch p {
	case ReviewsKeepFirst:
		return config.ReviewPolicyKeepFirst
	default:
		return config.ReviewPolicyReject
	}
}

// ParseReviewPolicy maps a configuration value to a policy. Empty means reject.
func ParseReviewPolicy(s string) (ReviewPolicy, error) {
	switch s {
	case "", config.ReviewPolicyReject:
		return ReviewsReject, nil
	case config.ReviewPolicyKeepFirst:
		return ReviewsKeepFirst, nil
	default:
		return ReviewsReject, apperrors.NewInvalidParameter(fmt.Sprintf("unknown review policy %q", s))
	}
}

// lookup is a one-to-one index used by the left joins. Building one
// enforces key uniqueness, so a join through it can never fan out.
type lookup[V any] struct {
	name  string
	index map[string]V
}

// uniqueLookup indexes rows by key and rejects duplicate keys
func uniqueLookup[V any](name string, rows []V, key func(V) string) (lookup[V], error) {
	l := lookup[V]{name: name, index: make(map[string]V, len(rows))}
	for _, r := range rows {
		k := key(r)
		if _, dup := l.index[k]; dup {
			return lookup[V]{}, duplicateKeyError(name, k)
		}
		l.index[k] = r
	}
	return l, nil
}

// firstLookup indexes rows by key keeping the first row per key. It
// returns the number of rows discarded.
func firstLookup[V any](name string, rows []V, key func(V) string) (lookup[V], int) {
	l := lookup[V]{name: name, index: make(map[string]V, len(rows))}
	discarded := 0
	for _, r := range rows {
		k := key(r)
		if _, dup := l.index[k]; dup {
			discarded++
			continue
		}
		l.index[k] = r
	}
	return l, discarded
}

func (l lookup[V]) get(key string) (V, bool) {
	v, ok := l.index[key]
	return v, ok
}

func (l lookup[V]) len() int {
	return len(l.index)
}

func duplicateKeyError(table, key string) error {
	return apperrors.NewInvalidParameter(fmt.Sprintf("duplicate join key %q in %s", key, table)).
		WithContext("table", table).
		WithContext("key", key)
}
