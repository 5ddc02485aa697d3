package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/embervale/mud/internal/persist"
)

// ItemRepository persists item instance rows.
type ItemRepository struct {
	pool *Pool
}

// NewItemRepository creates an ItemRepository.
func NewItemRepository(pool *Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// UpsertItem writes the full item row. Empty owner fields are stored as NULL
// so the partial indexes stay small.
func (r *ItemRepository) UpsertItem(ctx context.Context, rec persist.ItemRecord) error {
	instance, err := json.Marshal(orEmptyAnyMap(rec.InstanceData))
	if err != nil {
		return fmt.Errorf("encoding instance data: %w", err)
	}

	query := `
		INSERT INTO items (
			id, template_id, player_id, room_id, container_id,
			quantity, current_durability, equipped_slot, instance_data, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			player_id = EXCLUDED.player_id,
			room_id = EXCLUDED.room_id,
			container_id = EXCLUDED.container_id,
			quantity = EXCLUDED.quantity,
			current_durability = EXCLUDED.current_durability,
			equipped_slot = EXCLUDED.equipped_slot,
			instance_data = EXCLUDED.instance_data,
			updated_at = NOW()
	`
	_, err = r.pool.db.Exec(ctx, query,
		rec.ID, rec.TemplateID,
		nullString(rec.PlayerID), nullString(rec.RoomID), nullString(rec.ContainerID),
		rec.Quantity, rec.CurrentDurability, nullString(rec.EquippedSlot), instance,
	)
	if err != nil {
		return fmt.Errorf("upserting item %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteItem removes an item row. Deleting a row that does not exist is not
// an error; destroyed items may never have been flushed.
func (r *ItemRepository) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.pool.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	return nil
}

// ListItemsByPlayer loads every item carried by a player, for restore on login.
func (r *ItemRepository) ListItemsByPlayer(ctx context.Context, playerID string) ([]persist.ItemRecord, error) {
	query := `
		SELECT id, template_id, player_id, room_id, container_id,
		       quantity, current_durability, equipped_slot, instance_data
		FROM items
		WHERE player_id = $1
		ORDER BY id
	`
	rows, err := r.pool.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing items for player %s: %w", playerID, err)
	}
	defer rows.Close()

	var recs []persist.ItemRecord
	for rows.Next() {
		var rec persist.ItemRecord
		var playerID, roomID, containerID, slot *string
		var instance []byte
		if err := rows.Scan(
			&rec.ID, &rec.TemplateID, &playerID, &roomID, &containerID,
			&rec.Quantity, &rec.CurrentDurability, &slot, &instance,
		); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		rec.PlayerID = deref(playerID)
		rec.RoomID = deref(roomID)
		rec.ContainerID = deref(containerID)
		rec.EquippedSlot = deref(slot)
		if err := json.Unmarshal(instance, &rec.InstanceData); err != nil {
			return nil, fmt.Errorf("decoding instance data for %s: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}
	return recs, nil
}

func orEmptyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
