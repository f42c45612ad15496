package model

import "time"

// KeyPrefix namespaces paste records inside the shared key-value store.
const KeyPrefix = "paste:"

// PasteKey returns the store key for a paste id.
func PasteKey(id string) string { return KeyPrefix + id }

// Paste is a stored paste record. It is serialized to JSON as the single
// store value for its id; conditional updates compare the serialized
// bytes, so the field layout must stay stable.
type Paste struct {
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
	TTLSeconds *int64 `json:"ttl_seconds"`
	MaxViews   *int64 `json:"max_views"`
	ViewCount  int64  `json:"view_count"`
}

// ExpiresAt returns the absolute expiry time, or nil when the paste has
// no TTL. CreatedAt is epoch milliseconds, so the result is exact.
func (p *Paste) ExpiresAt() *time.Time {
	if p.TTLSeconds == nil {
		return nil
	}
	t := time.UnixMilli(p.CreatedAt + *p.TTLSeconds*1000).UTC()
	return &t
}

// ExpiredAt reports whether the TTL has elapsed at the given instant.
// Pastes without a TTL never expire logically.
func (p *Paste) ExpiredAt(nowMs int64) bool {
	if p.TTLSeconds == nil {
		return false
	}
	return nowMs >= p.CreatedAt+*p.TTLSeconds*1000
}

// Exhausted reports whether the view limit has been reached. Pastes
// without a limit are never exhausted.
func (p *Paste) Exhausted() bool {
	return p.MaxViews != nil && p.ViewCount >= *p.MaxViews
}

// RemainingViews returns how many consuming reads are left, or nil when
// the paste has no view limit.
func (p *Paste) RemainingViews() *int64 {
	if p.MaxViews == nil {
		return nil
	}
	n := *p.MaxViews - p.ViewCount
	if n < 0 {
		n = 0
	}
	return &n
}
