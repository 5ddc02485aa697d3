package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/embervale/mud/internal/persist"
)

// ErrPlayerNotFound is returned when a player row does not exist.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository persists player records.
type PlayerRepository struct {
	pool *Pool
}

// NewPlayerRepository creates a PlayerRepository.
func NewPlayerRepository(pool *Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// UpsertPlayer writes the full player row, inserting or replacing as needed.
func (r *PlayerRepository) UpsertPlayer(ctx context.Context, rec persist.PlayerRecord) error {
	flags, err := json.Marshal(orEmptyBoolMap(rec.Flags))
	if err != nil {
		return fmt.Errorf("encoding player flags: %w", err)
	}
	progress, err := json.Marshal(orEmptyIntMap(rec.QuestProgress))
	if err != nil {
		return fmt.Errorf("encoding quest progress: %w", err)
	}
	completed, err := json.Marshal(orEmptyStrings(rec.CompletedQuests))
	if err != nil {
		return fmt.Errorf("encoding completed quests: %w", err)
	}

	query := `
		INSERT INTO players (
			id, name, level, experience, current_room_id,
			max_health, current_health, max_energy, current_energy,
			strength, dexterity, intelligence, vitality, is_admin,
			player_flags, quest_progress, completed_quests,
			max_weight, max_slots, current_weight, current_slots, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			level = EXCLUDED.level,
			experience = EXCLUDED.experience,
			current_room_id = EXCLUDED.current_room_id,
			max_health = EXCLUDED.max_health,
			current_health = EXCLUDED.current_health,
			max_energy = EXCLUDED.max_energy,
			current_energy = EXCLUDED.current_energy,
			strength = EXCLUDED.strength,
			dexterity = EXCLUDED.dexterity,
			intelligence = EXCLUDED.intelligence,
			vitality = EXCLUDED.vitality,
			is_admin = EXCLUDED.is_admin,
			player_flags = EXCLUDED.player_flags,
			quest_progress = EXCLUDED.quest_progress,
			completed_quests = EXCLUDED.completed_quests,
			max_weight = EXCLUDED.max_weight,
			max_slots = EXCLUDED.max_slots,
			current_weight = EXCLUDED.current_weight,
			current_slots = EXCLUDED.current_slots,
			updated_at = NOW()
	`
	_, err = r.pool.db.Exec(ctx, query,
		rec.ID, rec.Name, rec.Level, rec.Experience, rec.RoomID,
		rec.MaxHealth, rec.CurrentHealth, rec.MaxEnergy, rec.CurrentEnergy,
		rec.Strength, rec.Dexterity, rec.Intelligence, rec.Vitality, rec.IsAdmin,
		flags, progress, completed,
		rec.MaxWeight, rec.MaxSlots, rec.CurrentWeight, rec.CurrentSlots,
	)
	if err != nil {
		return fmt.Errorf("upserting player %s: %w", rec.ID, err)
	}
	return nil
}

// GetPlayer loads one player row.
//
// Postcondition: Returns ErrPlayerNotFound when no row exists for id.
func (r *PlayerRepository) GetPlayer(ctx context.Context, id string) (persist.PlayerRecord, error) {
	query := `
		SELECT id, name, level, experience, current_room_id,
		       max_health, current_health, max_energy, current_energy,
		       strength, dexterity, intelligence, vitality, is_admin,
		       player_flags, quest_progress, completed_quests,
		       max_weight, max_slots, current_weight, current_slots
		FROM players
		WHERE id = $1
	`
	var rec persist.PlayerRecord
	var flags, progress, completed []byte
	err := r.pool.db.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.Level, &rec.Experience, &rec.RoomID,
		&rec.MaxHealth, &rec.CurrentHealth, &rec.MaxEnergy, &rec.CurrentEnergy,
		&rec.Strength, &rec.Dexterity, &rec.Intelligence, &rec.Vitality, &rec.IsAdmin,
		&flags, &progress, &completed,
		&rec.MaxWeight, &rec.MaxSlots, &rec.CurrentWeight, &rec.CurrentSlots,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return persist.PlayerRecord{}, ErrPlayerNotFound
	}
	if err != nil {
		return persist.PlayerRecord{}, fmt.Errorf("loading player %s: %w", id, err)
	}

	if err := json.Unmarshal(flags, &rec.Flags); err != nil {
		return persist.PlayerRecord{}, fmt.Errorf("decoding player flags for %s: %w", id, err)
	}
	if err := json.Unmarshal(progress, &rec.QuestProgress); err != nil {
		return persist.PlayerRecord{}, fmt.Errorf("decoding quest progress for %s: %w", id, err)
	}
	if err := json.Unmarshal(completed, &rec.CompletedQuests); err != nil {
		return persist.PlayerRecord{}, fmt.Errorf("decoding completed quests for %s: %w", id, err)
	}
	return rec, nil
}

func orEmptyBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func orEmptyIntMap(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func orEmptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
