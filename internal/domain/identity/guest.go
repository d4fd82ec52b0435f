package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidityWindow bounds how long a cached guest identity is trusted.
const ValidityWindow = 30 * 24 * time.Hour

// Guest is the contact identity cached for an unauthenticated visitor so
// repeated requests don't re-prompt for details.
type Guest struct {
	UserID  *uuid.UUID `json:"user_id,omitempty"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	SavedAt time.Time  `json:"saved_at"`
}

// Expired reports whether the record fell outside the validity window.
func (g Guest) Expired(now time.Time) bool {
	return g.SavedAt.IsZero() || now.Sub(g.SavedAt) > ValidityWindow
}

// Usable reports whether the record can be trusted as a known identity.
// Malformed and expired records are cache misses, never errors.
func (g Guest) Usable(now time.Time) bool {
	return g.Email != "" && !g.Expired(now)
}

// ParseLegacy decodes the old single-field storage format
// "name|email|phone". Unparseable input is reported as absent.
func ParseLegacy(raw string, now time.Time) (Guest, bool) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return Guest{}, false
	}
	g := Guest{
		Name:    strings.TrimSpace(parts[0]),
		Email:   strings.TrimSpace(parts[1]),
		Phone:   strings.TrimSpace(parts[2]),
		SavedAt: now,
	}
	if g.Email == "" {
		return Guest{}, false
	}
	return g, true
}

// Source records which rung of the resolution chain produced an identity.
type Source string

const (
	SourceSession Source = "session"
	SourceStored  Source = "stored"
	SourceDraft   Source = "draft"
	SourceLegacy  Source = "legacy"
)

// Resolution is the outcome of the contact-resolution chain. Unresolved
// means the caller must block on a capture step; nothing else may proceed.
type Resolution struct {
	Resolved bool
	Identity Guest
	Source   Source
}

func Resolved(g Guest, src Source) Resolution {
	return Resolution{Resolved: true, Identity: g, Source: src}
}

func NeedsCapture() Resolution {
	return Resolution{}
}
