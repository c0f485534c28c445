package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/transbridge/internal/mapping"
	"github.com/flemzord/transbridge/pkg/event"
)

// store implements mapping.Store backed by SQLite. Bijection is enforced
// inside write transactions: mapping either id deletes any row that id
// already appears in, so stale reverse entries never survive an overwrite.
// The single-connection pool serializes writes; WAL keeps reads concurrent.
type store struct {
	db        *sql.DB
	threshold float64
}

// MapUsers implements mapping.Store.
func (s *store) MapUsers(lineID, wecomID string, meta mapping.Meta) error {
	if lineID == "" || wecomID == "" {
		return mapping.ErrEmptyID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM user_mappings WHERE line_id = ? OR wecom_id = ?", lineID, wecomID); err != nil {
		return fmt.Errorf("sqlite: clear stale user mappings: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO user_mappings (line_id, wecom_id, source, created_at) VALUES (?, ?, ?, ?)",
		lineID, wecomID, string(meta.Source), meta.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	); err != nil {
		return fmt.Errorf("sqlite: insert user mapping: %w", err)
	}

	return tx.Commit()
}

// ResolveLineUser implements mapping.Store.
func (s *store) ResolveLineUser(lineID string) (string, error) {
	return s.resolve("SELECT wecom_id FROM user_mappings WHERE line_id = ?", lineID)
}

// ResolveWecomUser implements mapping.Store.
func (s *store) ResolveWecomUser(wecomID string) (string, error) {
	return s.resolve("SELECT line_id FROM user_mappings WHERE wecom_id = ?", wecomID)
}

// RemoveUserMapping implements mapping.Store. Deleting the row removes
// both directions in one statement.
func (s *store) RemoveUserMapping(lineID string) error {
	if lineID == "" {
		return mapping.ErrEmptyID
	}
	res, err := s.db.Exec("DELETE FROM user_mappings WHERE line_id = ?", lineID)
	if err != nil {
		return fmt.Errorf("sqlite: delete user mapping: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapping.ErrNotFound
	}
	return nil
}

// MapGroups implements mapping.Store.
func (s *store) MapGroups(lineGroupID, wecomChatID string) error {
	if lineGroupID == "" || wecomChatID == "" {
		return mapping.ErrEmptyID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM group_mappings WHERE line_id = ? OR wecom_id = ?", lineGroupID, wecomChatID); err != nil {
		return fmt.Errorf("sqlite: clear stale group mappings: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO group_mappings (line_id, wecom_id) VALUES (?, ?)", lineGroupID, wecomChatID); err != nil {
		return fmt.Errorf("sqlite: insert group mapping: %w", err)
	}

	return tx.Commit()
}

// ResolveLineGroup implements mapping.Store.
func (s *store) ResolveLineGroup(lineGroupID string) (string, error) {
	return s.resolve("SELECT wecom_id FROM group_mappings WHERE line_id = ?", lineGroupID)
}

// ResolveWecomGroup implements mapping.Store.
func (s *store) ResolveWecomGroup(wecomChatID string) (string, error) {
	return s.resolve("SELECT line_id FROM group_mappings WHERE wecom_id = ?", wecomChatID)
}

// StoreProfile implements mapping.Store. Upsert, last-write-wins.
func (s *store) StoreProfile(platform event.Platform, userID string, p mapping.Profile) error {
	if userID == "" {
		return mapping.ErrEmptyID
	}
	_, err := s.db.Exec(
		`INSERT INTO profiles (platform, user_id, display_name, avatar_url) VALUES (?, ?, ?, ?)
		 ON CONFLICT (platform, user_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   avatar_url   = excluded.avatar_url,
		   updated_at   = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		string(platform), userID, p.DisplayName, p.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert profile: %w", err)
	}
	return nil
}

// LookupProfile implements mapping.Store.
func (s *store) LookupProfile(platform event.Platform, userID string) (mapping.Profile, error) {
	var p mapping.Profile
	err := s.db.QueryRow(
		"SELECT display_name, avatar_url FROM profiles WHERE platform = ? AND user_id = ?",
		string(platform), userID,
	).Scan(&p.DisplayName, &p.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return mapping.Profile{}, mapping.ErrNotFound
	}
	if err != nil {
		return mapping.Profile{}, fmt.Errorf("sqlite: lookup profile: %w", err)
	}
	return p, nil
}

// ProfileIDs implements mapping.Store.
func (s *store) ProfileIDs(platform event.Platform) ([]string, error) {
	rows, err := s.db.Query("SELECT user_id FROM profiles WHERE platform = ? ORDER BY user_id", string(platform))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AttemptAutoMap implements mapping.Store.
func (s *store) AttemptAutoMap(lineID, wecomID string) (bool, error) {
	if lineID == "" || wecomID == "" {
		return false, mapping.ErrEmptyID
	}

	lineProfile, err := s.LookupProfile(event.PlatformLine, lineID)
	if errors.Is(err, mapping.ErrNotFound) {
		return false, mapping.ErrProfileMissing
	}
	if err != nil {
		return false, err
	}
	wecomProfile, err := s.LookupProfile(event.PlatformWecom, wecomID)
	if errors.Is(err, mapping.ErrNotFound) {
		return false, mapping.ErrProfileMissing
	}
	if err != nil {
		return false, err
	}

	if mapping.Similarity(lineProfile.DisplayName, wecomProfile.DisplayName) < s.threshold {
		return false, nil
	}

	if err := s.MapUsers(lineID, wecomID, mapping.Meta{Source: mapping.SourceAuto, CreatedAt: time.Now()}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *store) resolve(query, id string) (string, error) {
	if id == "" {
		return "", mapping.ErrEmptyID
	}
	var out string
	err := s.db.QueryRow(query, id).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return "", mapping.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: resolve: %w", err)
	}
	return out, nil
}
