package mapping

import (
	"sync"
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

// profileKey identifies a cached profile.
type profileKey struct {
	platform event.Platform
	userID   string
}

// MemoryStore is the in-memory Store implementation. Mapping churn is
// low-frequency relative to message throughput, so a single coarse RWMutex
// around all state is sufficient to serialize writes and keep the bijection
// consistent for readers.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]string // line id → wecom id
	usersRev  map[string]string // wecom id → line id
	userMeta  map[string]Meta   // keyed by line id
	groups    map[string]string // line group → wecom chat
	groupsRev map[string]string // wecom chat → line group
	profiles  map[profileKey]Profile
	threshold float64
}

// Compile-time interface guard.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store. A non-positive threshold
// falls back to DefaultAutoMapThreshold.
func NewMemoryStore(autoMapThreshold float64) *MemoryStore {
	if autoMapThreshold <= 0 {
		autoMapThreshold = DefaultAutoMapThreshold
	}
	return &MemoryStore{
		users:     make(map[string]string),
		usersRev:  make(map[string]string),
		userMeta:  make(map[string]Meta),
		groups:    make(map[string]string),
		groupsRev: make(map[string]string),
		profiles:  make(map[profileKey]Profile),
		threshold: autoMapThreshold,
	}
}

// MapUsers implements Store. Overwrites any mapping either id already has,
// dropping the stale reverse entries so the store stays bijective.
func (s *MemoryStore) MapUsers(lineID, wecomID string, meta Meta) error {
	if lineID == "" || wecomID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.users[lineID]; ok {
		delete(s.usersRev, old)
	}
	if old, ok := s.usersRev[wecomID]; ok {
		delete(s.users, old)
		delete(s.userMeta, old)
	}

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	s.users[lineID] = wecomID
	s.usersRev[wecomID] = lineID
	s.userMeta[lineID] = meta
	return nil
}

// ResolveLineUser implements Store.
func (s *MemoryStore) ResolveLineUser(lineID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wecomID, ok := s.users[lineID]
	if !ok {
		return "", ErrNotFound
	}
	return wecomID, nil
}

// ResolveWecomUser implements Store.
func (s *MemoryStore) ResolveWecomUser(wecomID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lineID, ok := s.usersRev[wecomID]
	if !ok {
		return "", ErrNotFound
	}
	return lineID, nil
}

// RemoveUserMapping implements Store. Both directions disappear under the
// same critical section.
func (s *MemoryStore) RemoveUserMapping(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wecomID, ok := s.users[lineID]
	if !ok {
		return ErrNotFound
	}
	delete(s.users, lineID)
	delete(s.usersRev, wecomID)
	delete(s.userMeta, lineID)
	return nil
}

// UserMeta returns the creation metadata for the mapping keyed by lineID.
func (s *MemoryStore) UserMeta(lineID string) (Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.userMeta[lineID]
	if !ok {
		return Meta{}, ErrNotFound
	}
	return meta, nil
}

// MapGroups implements Store.
func (s *MemoryStore) MapGroups(lineGroupID, wecomChatID string) error {
	if lineGroupID == "" || wecomChatID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.groups[lineGroupID]; ok {
		delete(s.groupsRev, old)
	}
	if old, ok := s.groupsRev[wecomChatID]; ok {
		delete(s.groups, old)
	}

	s.groups[lineGroupID] = wecomChatID
	s.groupsRev[wecomChatID] = lineGroupID
	return nil
}

// ResolveLineGroup implements Store.
func (s *MemoryStore) ResolveLineGroup(lineGroupID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chatID, ok := s.groups[lineGroupID]
	if !ok {
		return "", ErrNotFound
	}
	return chatID, nil
}

// ResolveWecomGroup implements Store.
func (s *MemoryStore) ResolveWecomGroup(wecomChatID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groupID, ok := s.groupsRev[wecomChatID]
	if !ok {
		return "", ErrNotFound
	}
	return groupID, nil
}

// StoreProfile implements Store. Last write wins; profiles are replaced
// whole, never merged.
func (s *MemoryStore) StoreProfile(platform event.Platform, userID string, p Profile) error {
	if userID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profileKey{platform, userID}] = p
	return nil
}

// LookupProfile implements Store.
func (s *MemoryStore) LookupProfile(platform event.Platform, userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[profileKey{platform, userID}]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// ProfileIDs implements Store.
func (s *MemoryStore) ProfileIDs(platform event.Platform) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for k := range s.profiles {
		if k.platform == platform {
			ids = append(ids, k.userID)
		}
	}
	return ids, nil
}

// AttemptAutoMap implements Store.
func (s *MemoryStore) AttemptAutoMap(lineID, wecomID string) (bool, error) {
	if lineID == "" || wecomID == "" {
		return false, ErrEmptyID
	}

	s.mu.RLock()
	lineProfile, okA := s.profiles[profileKey{event.PlatformLine, lineID}]
	wecomProfile, okB := s.profiles[profileKey{event.PlatformWecom, wecomID}]
	s.mu.RUnlock()

	if !okA || !okB {
		return false, ErrProfileMissing
	}

	if Similarity(lineProfile.DisplayName, wecomProfile.DisplayName) < s.threshold {
		return false, nil
	}

	if err := s.MapUsers(lineID, wecomID, Meta{Source: SourceAuto, CreatedAt: time.Now()}); err != nil {
		return false, err
	}
	return true, nil
}
