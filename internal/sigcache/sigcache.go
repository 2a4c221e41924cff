// Package sigcache caches raw provider signals keyed by coordinate and
// signal kind, so repeat scans of nearby addresses do not re-hit rate
// limited upstream APIs.
package sigcache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Kind names one cached signal family. Each kind carries its own TTL
// matched to how fast the underlying data moves.
type Kind string

const (
	KindBusyness Kind = "busyness"
	KindYelp     Kind = "yelp"
	KindOSM      Kind = "osm"
	KindCensus   Kind = "census"
)

var ttls = map[Kind]time.Duration{
	KindBusyness: 7 * 24 * time.Hour,
	KindYelp:     24 * time.Hour,
	KindOSM:      30 * 24 * time.Hour,
	KindCensus:   30 * 24 * time.Hour,
}

// TTLFor returns the freshness window for a signal kind.
func TTLFor(kind Kind) time.Duration {
	if ttl, ok := ttls[kind]; ok {
		return ttl
	}
	return 24 * time.Hour
}

// Key builds a cache key from the signal kind and coordinate. Coordinates
// round to four decimals (about 36 feet) so adjacent lookups share
// entries. Extra parts, like a place name, join the hash input.
func Key(kind Kind, lat, lng float64, extra ...string) string {
	normalized := fmt.Sprintf("%s|%.4f|%.4f", kind, lat, lng)
	if len(extra) > 0 {
		normalized += "|" + strings.ToLower(strings.TrimSpace(strings.Join(extra, "|")))
	}
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// Cache stores serialized signal payloads with per-entry expiry.
type Cache interface {
	// Get returns the payload for key, or ok=false on miss or expiry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores a payload for key with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Close() error
}
