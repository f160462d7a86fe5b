package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/room"
)

// SettingsStore persists per-room role settings. Implements room.SettingsStore.
type SettingsStore struct {
	db *pgxpool.Pool
}

// NewSettingsStore creates a SettingsStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSettingsStore(db *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the settings for a room.
//
// Postcondition: Returns the Settings or room.ErrRoomNotFound.
func (s *SettingsStore) Get(ctx context.Context, roomID string) (role.Settings, error) {
	var (
		cfg   role.Settings
		names []string
	)
	err := s.db.QueryRow(ctx,
		`SELECT room_id, werewolves, selected_roles, allow_multiple_self_heals, show_game_summary
		 FROM role_settings WHERE room_id = $1`,
		roomID,
	).Scan(&cfg.RoomID, &cfg.Werewolves, &names, &cfg.AllowMultipleSelfHeals, &cfg.ShowGameSummary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role.Settings{}, room.ErrRoomNotFound
		}
		return role.Settings{}, fmt.Errorf("querying settings: %w", err)
	}

	cfg.SelectedRoles = make([]role.Name, 0, len(names))
	for _, n := range names {
		name, err := role.Parse(n)
		if err != nil {
			return role.Settings{}, fmt.Errorf("settings for room %s: %w", roomID, err)
		}
		cfg.SelectedRoles = append(cfg.SelectedRoles, name)
	}
	return cfg, nil
}

// Save inserts or rewrites the settings for a room.
func (s *SettingsStore) Save(ctx context.Context, cfg role.Settings) error {
	names := make([]string, 0, len(cfg.SelectedRoles))
	for _, n := range cfg.SelectedRoles {
		names = append(names, string(n))
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO role_settings (room_id, werewolves, selected_roles, allow_multiple_self_heals, show_game_summary)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (room_id) DO UPDATE
		 SET werewolves = EXCLUDED.werewolves,
		     selected_roles = EXCLUDED.selected_roles,
		     allow_multiple_self_heals = EXCLUDED.allow_multiple_self_heals,
		     show_game_summary = EXCLUDED.show_game_summary`,
		cfg.RoomID, cfg.Werewolves, names, cfg.AllowMultipleSelfHeals, cfg.ShowGameSummary,
	)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
