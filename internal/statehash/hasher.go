// Package statehash computes per-row fingerprints over the mutable fields
// of an entity. Two snapshots taken at different times are diffed by
// identifier to discover added, removed or changed rows without shipping
// full row content.
package statehash

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// State pairs a row identifier with the fingerprint of its mutable fields.
type State struct {
	ID          int64
	Fingerprint string
}

// fieldSep keeps adjacent fields from bleeding into each other; 0x1F is
// the ASCII unit separator and cannot appear in store text columns.
const fieldSep = "\x1f"

// Fingerprint digests the given parts in order. Callers must pass parts in
// a canonical order and normalize absent aggregates to fixed neutral
// values first; identical content always yields an identical digest.
func Fingerprint(parts ...string) string {
	digest := xxhash.Sum64String(strings.Join(parts, fieldSep))
	return fmt.Sprintf("%016x", digest)
}

// Int formats an integer field for hashing.
func Int(v int64) string {
	return fmt.Sprintf("%d", v)
}

// Amount formats a monetary field for hashing. Decimal normalization
// guarantees 1.50 and 1.5 digest identically.
func Amount(v decimal.Decimal) string {
	return v.String()
}

// List canonicalizes an order-free sub-row aggregate: values are sorted
// and joined, so join order can never change the digest. An absent
// aggregate and an empty one digest identically.
func List(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
