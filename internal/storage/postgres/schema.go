package postgres

import (
	"context"
	"fmt"
)

// Schema is the DDL for the persistence tables. Players carry their inventory
// capacity columns inline; items reference their owner by exactly one of
// player_id, room_id, and container_id.
const Schema = `
CREATE TABLE IF NOT EXISTS players (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    level            INT NOT NULL DEFAULT 1,
    experience       INT NOT NULL DEFAULT 0,
    current_room_id  TEXT NOT NULL,
    max_health       INT NOT NULL,
    current_health   INT NOT NULL,
    max_energy       INT NOT NULL,
    current_energy   INT NOT NULL,
    strength         INT NOT NULL,
    dexterity        INT NOT NULL,
    intelligence     INT NOT NULL,
    vitality         INT NOT NULL,
    is_admin         BOOLEAN NOT NULL DEFAULT FALSE,
    player_flags     JSONB NOT NULL DEFAULT '{}',
    quest_progress   JSONB NOT NULL DEFAULT '{}',
    completed_quests JSONB NOT NULL DEFAULT '[]',
    max_weight       DOUBLE PRECISION NOT NULL DEFAULT 0,
    max_slots        INT NOT NULL DEFAULT 0,
    current_weight   DOUBLE PRECISION NOT NULL DEFAULT 0,
    current_slots    INT NOT NULL DEFAULT 0,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS items (
    id                 TEXT PRIMARY KEY,
    template_id        TEXT NOT NULL,
    player_id          TEXT,
    room_id            TEXT,
    container_id       TEXT,
    quantity           INT NOT NULL DEFAULT 1,
    current_durability INT,
    equipped_slot      TEXT,
    instance_data      JSONB NOT NULL DEFAULT '{}',
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_items_player_id ON items (player_id) WHERE player_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_items_room_id ON items (room_id) WHERE room_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_items_container_id ON items (container_id) WHERE container_id IS NOT NULL;
`

// EnsureSchema applies the DDL. All statements are idempotent, so it is safe
// to run on every boot.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
