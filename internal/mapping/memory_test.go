package mapping

import (
	"errors"
	"testing"
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

func TestMapUsersBijection(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.MapUsers("u1", "w1", Meta{Source: SourceManual}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}

	got, err := s.ResolveLineUser("u1")
	if err != nil || got != "w1" {
		t.Errorf("ResolveLineUser(u1) = %q, %v, want w1", got, err)
	}
	got, err = s.ResolveWecomUser("w1")
	if err != nil || got != "u1" {
		t.Errorf("ResolveWecomUser(w1) = %q, %v, want u1", got, err)
	}
}

func TestMapUsersOverwriteDropsStaleReverse(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.MapUsers("u1", "w1", Meta{}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}
	// Remap u1 to a different WeCom user; the old reverse entry w1→u1
	// must not survive.
	if err := s.MapUsers("u1", "w2", Meta{}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}

	if _, err := s.ResolveWecomUser("w1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveWecomUser(w1) error = %v, want ErrNotFound", err)
	}
	got, err := s.ResolveWecomUser("w2")
	if err != nil || got != "u1" {
		t.Errorf("ResolveWecomUser(w2) = %q, %v, want u1", got, err)
	}
}

func TestMapUsersOverwriteByWecomID(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.MapUsers("u1", "w1", Meta{}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}
	// A different LINE user claims w1; u1's forward entry must go.
	if err := s.MapUsers("u2", "w1", Meta{}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}

	if _, err := s.ResolveLineUser("u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveLineUser(u1) error = %v, want ErrNotFound", err)
	}
	got, err := s.ResolveWecomUser("w1")
	if err != nil || got != "u2" {
		t.Errorf("ResolveWecomUser(w1) = %q, %v, want u2", got, err)
	}
}

func TestMapUsersEmptyID(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.MapUsers("", "w1", Meta{}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("MapUsers(\"\", w1) error = %v, want ErrEmptyID", err)
	}
	if err := s.MapUsers("u1", "", Meta{}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("MapUsers(u1, \"\") error = %v, want ErrEmptyID", err)
	}
}

func TestRemoveUserMappingBothDirections(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.MapUsers("u1", "w1", Meta{}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}
	if err := s.RemoveUserMapping("u1"); err != nil {
		t.Fatalf("RemoveUserMapping() error: %v", err)
	}

	if _, err := s.ResolveLineUser("u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveLineUser(u1) error = %v, want ErrNotFound", err)
	}
	if _, err := s.ResolveWecomUser("w1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveWecomUser(w1) error = %v, want ErrNotFound", err)
	}

	if err := s.RemoveUserMapping("u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveUserMapping() error = %v, want ErrNotFound", err)
	}
}

func TestUserMeta(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := s.MapUsers("u1", "w1", Meta{Source: SourceConfig, CreatedAt: created}); err != nil {
		t.Fatalf("MapUsers() error: %v", err)
	}

	meta, err := s.UserMeta("u1")
	if err != nil {
		t.Fatalf("UserMeta() error: %v", err)
	}
	if meta.Source != SourceConfig {
		t.Errorf("Source = %q, want %q", meta.Source, SourceConfig)
	}
	if !meta.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", meta.CreatedAt, created)
	}
}

func TestMapGroupsBijection(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.MapGroups("g1", "c1"); err != nil {
		t.Fatalf("MapGroups() error: %v", err)
	}
	if err := s.MapGroups("g1", "c2"); err != nil {
		t.Fatalf("MapGroups() error: %v", err)
	}

	if _, err := s.ResolveWecomGroup("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveWecomGroup(c1) error = %v, want ErrNotFound", err)
	}
	got, err := s.ResolveLineGroup("g1")
	if err != nil || got != "c2" {
		t.Errorf("ResolveLineGroup(g1) = %q, %v, want c2", got, err)
	}
	got, err = s.ResolveWecomGroup("c2")
	if err != nil || got != "g1" {
		t.Errorf("ResolveWecomGroup(c2) = %q, %v, want g1", got, err)
	}
}

func TestProfileLastWriteWins(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	if err := s.StoreProfile(event.PlatformLine, "u1", Profile{DisplayName: "Old", AvatarURL: "a"}); err != nil {
		t.Fatalf("StoreProfile() error: %v", err)
	}
	// Overwrite replaces the whole profile, it does not merge.
	if err := s.StoreProfile(event.PlatformLine, "u1", Profile{DisplayName: "New"}); err != nil {
		t.Fatalf("StoreProfile() error: %v", err)
	}

	p, err := s.LookupProfile(event.PlatformLine, "u1")
	if err != nil {
		t.Fatalf("LookupProfile() error: %v", err)
	}
	if p.DisplayName != "New" || p.AvatarURL != "" {
		t.Errorf("profile = %+v, want DisplayName=New and empty AvatarURL", p)
	}
}

func TestProfileIDsPerPlatform(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	_ = s.StoreProfile(event.PlatformLine, "u1", Profile{DisplayName: "a"})
	_ = s.StoreProfile(event.PlatformWecom, "w1", Profile{DisplayName: "b"})
	_ = s.StoreProfile(event.PlatformWecom, "w2", Profile{DisplayName: "c"})

	ids, err := s.ProfileIDs(event.PlatformWecom)
	if err != nil {
		t.Fatalf("ProfileIDs() error: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ProfileIDs(wecom) = %v, want 2 entries", ids)
	}
}

func TestAttemptAutoMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		lineName    string
		wecomName   string
		wantCreated bool
	}{
		{"identical names", "Tanaka Taro", "Tanaka Taro", true},
		{"case difference", "tanaka taro", "TANAKA TARO", true},
		{"one character off", "Tanaka Taro", "Tanaka Tara", true},
		{"unrelated names", "Tanaka Taro", "Suzuki Hanako", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewMemoryStore(0)
			_ = s.StoreProfile(event.PlatformLine, "u1", Profile{DisplayName: tt.lineName})
			_ = s.StoreProfile(event.PlatformWecom, "w1", Profile{DisplayName: tt.wecomName})

			created, err := s.AttemptAutoMap("u1", "w1")
			if err != nil {
				t.Fatalf("AttemptAutoMap() error: %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("created = %v, want %v", created, tt.wantCreated)
			}

			if tt.wantCreated {
				got, err := s.ResolveLineUser("u1")
				if err != nil || got != "w1" {
					t.Errorf("ResolveLineUser(u1) = %q, %v, want w1", got, err)
				}
				meta, err := s.UserMeta("u1")
				if err != nil || meta.Source != SourceAuto {
					t.Errorf("UserMeta(u1) = %+v, %v, want SourceAuto", meta, err)
				}
			}
		})
	}
}

func TestAttemptAutoMapMissingProfile(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)
	_ = s.StoreProfile(event.PlatformLine, "u1", Profile{DisplayName: "Tanaka"})

	if _, err := s.AttemptAutoMap("u1", "w1"); !errors.Is(err, ErrProfileMissing) {
		t.Errorf("AttemptAutoMap() error = %v, want ErrProfileMissing", err)
	}
}

func TestLoadSeedSkipsMalformedEntries(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore(0)

	LoadSeed(s, Seed{
		Users: []SeedUser{
			{Line: "u1", Wecom: "w1"},
			{Line: "", Wecom: "w2"}, // malformed, skipped
			{Line: "u3", Wecom: "w3"},
		},
		Groups: []SeedGroup{
			{Line: "g1", Wecom: ""}, // malformed, skipped
			{Line: "g2", Wecom: "c2"},
		},
	}, discardLogger())

	if got, err := s.ResolveLineUser("u1"); err != nil || got != "w1" {
		t.Errorf("ResolveLineUser(u1) = %q, %v, want w1", got, err)
	}
	if got, err := s.ResolveLineUser("u3"); err != nil || got != "w3" {
		t.Errorf("ResolveLineUser(u3) = %q, %v, want w3", got, err)
	}
	if _, err := s.ResolveWecomUser("w2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("malformed entry imported: ResolveWecomUser(w2) error = %v, want ErrNotFound", err)
	}
	if got, err := s.ResolveLineGroup("g2"); err != nil || got != "c2" {
		t.Errorf("ResolveLineGroup(g2) = %q, %v, want c2", got, err)
	}
	if _, err := s.ResolveLineGroup("g1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("malformed group imported: error = %v, want ErrNotFound", err)
	}
}
