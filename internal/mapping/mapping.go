// Package mapping defines the bidirectional identity store that links LINE
// users and groups to their WeChat Work counterparts. It provides the Store
// interface, an in-memory implementation, profile caching for
// similarity-based auto-mapping, and declarative seeding from configuration.
package mapping

import (
	"errors"
	"log/slog"
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no mapping or profile exists for the given id.
	ErrNotFound = errors.New("mapping: not found")

	// ErrEmptyID indicates a required identifier was empty.
	ErrEmptyID = errors.New("mapping: id must not be empty")

	// ErrProfileMissing indicates auto-mapping was attempted without both
	// profiles cached.
	ErrProfileMissing = errors.New("mapping: profile not cached")
)

// Source records how a mapping came to exist.
type Source string

// Mapping sources.
const (
	SourceManual Source = "manual"
	SourceConfig Source = "config"
	SourceTest   Source = "test"
	SourceAuto   Source = "auto"
)

// Meta is the creation metadata stored with every user mapping.
type Meta struct {
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the cached display profile of a platform user. It is the only
// input to similarity-based auto-mapping and is overwritten on each update,
// never merged.
type Profile struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Store is the bidirectional mapping store. Implementations must keep the
// user and group mappings bijective: creating line→wecom also creates
// wecom→line, overwriting any mapping either id previously had, and removal
// drops both directions atomically as observed by readers. Implementations
// must support concurrent readers and serialize writes.
type Store interface {
	// MapUsers associates a LINE user with a WeCom user, last-write-wins.
	// Both ids must be non-empty.
	MapUsers(lineID, wecomID string, meta Meta) error

	// ResolveLineUser returns the WeCom counterpart of a LINE user.
	ResolveLineUser(lineID string) (string, error)

	// ResolveWecomUser returns the LINE counterpart of a WeCom user.
	ResolveWecomUser(wecomID string) (string, error)

	// RemoveUserMapping removes both directions of the mapping keyed by
	// the LINE user id.
	RemoveUserMapping(lineID string) error

	// MapGroups associates a LINE group with a WeCom chat, last-write-wins.
	MapGroups(lineGroupID, wecomChatID string) error

	// ResolveLineGroup returns the WeCom counterpart of a LINE group.
	ResolveLineGroup(lineGroupID string) (string, error)

	// ResolveWecomGroup returns the LINE counterpart of a WeCom chat.
	ResolveWecomGroup(wecomChatID string) (string, error)

	// StoreProfile upserts the cached profile for (platform, userID).
	StoreProfile(platform event.Platform, userID string, p Profile) error

	// LookupProfile returns the cached profile for (platform, userID).
	LookupProfile(platform event.Platform, userID string) (Profile, error)

	// ProfileIDs lists the user ids with a cached profile on a platform.
	ProfileIDs(platform event.Platform) ([]string, error)

	// AttemptAutoMap creates the line↔wecom user mapping iff both profiles
	// are cached and their normalized display names are similar enough.
	// Returns true when a mapping was created. Best-effort heuristic.
	AttemptAutoMap(lineID, wecomID string) (bool, error)
}

// SeedUser is one declarative user mapping from configuration.
type SeedUser struct {
	Line  string `yaml:"line"`
	Wecom string `yaml:"wecom"`
}

// SeedGroup is one declarative group mapping from configuration.
type SeedGroup struct {
	Line  string `yaml:"line"`
	Wecom string `yaml:"wecom"`
}

// Seed is the declarative mapping list loaded once at startup.
type Seed struct {
	Users  []SeedUser  `yaml:"users"`
	Groups []SeedGroup `yaml:"groups"`
}

// LoadSeed bulk-imports a declarative mapping list into the store.
// Malformed entries (either side empty) are skipped with a warning; a seed
// entry never aborts startup.
func LoadSeed(store Store, seed Seed, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for i, u := range seed.Users {
		if u.Line == "" || u.Wecom == "" {
			logger.Warn("skipping malformed user mapping entry", "index", i)
			continue
		}
		if err := store.MapUsers(u.Line, u.Wecom, Meta{Source: SourceConfig, CreatedAt: time.Now()}); err != nil {
			logger.Warn("skipping user mapping entry", "index", i, "error", err)
		}
	}

	for i, g := range seed.Groups {
		if g.Line == "" || g.Wecom == "" {
			logger.Warn("skipping malformed group mapping entry", "index", i)
			continue
		}
		if err := store.MapGroups(g.Line, g.Wecom); err != nil {
			logger.Warn("skipping group mapping entry", "index", i, "error", err)
		}
	}
}
