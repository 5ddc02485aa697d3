// Package persist implements the dirty-tracking persistence sidecar. Game
// logic never touches the database: entity mutators mark IDs dirty, and the
// sidecar periodically snapshots the dirty entities on the engine goroutine
// and writes them through on its own. Persistence failures are logged and
// retried on the next flush; they never surface to gameplay.
package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlayerRecord is the flat persisted form of a player, schema-aligned with
// the players table.
type PlayerRecord struct {
	ID            string
	Name          string
	Level         int
	Experience    int
	RoomID        string
	MaxHealth     int
	CurrentHealth int
	MaxEnergy     int
	CurrentEnergy int
	Strength      int
	Dexterity     int
	Intelligence  int
	Vitality      int
	IsAdmin       bool

	Flags           map[string]bool
	QuestProgress   map[string]int
	CompletedQuests []string

	MaxWeight     float64
	MaxSlots      int
	CurrentWeight float64
	CurrentSlots  int
}

// ItemRecord is the flat persisted form of an item instance. Exactly one of
// PlayerID, RoomID, and ContainerID is non-empty.
type ItemRecord struct {
	ID                string
	TemplateID        string
	PlayerID          string
	RoomID            string
	ContainerID       string
	Quantity          int
	CurrentDurability *int
	EquippedSlot      string
	InstanceData      map[string]any
}

// Source produces snapshots of dirty entities. Implementations must make the
// snapshot consistent with the engine's single-writer discipline; the engine
// satisfies this by building records on its own goroutine.
type Source interface {
	// SnapshotPlayers returns records for the IDs that still exist. Unknown
	// IDs are silently skipped.
	SnapshotPlayers(ids []string) []PlayerRecord
	// SnapshotItems splits the IDs into live records and the IDs of items
	// that no longer exist and should be deleted from storage.
	SnapshotItems(ids []string) (live []ItemRecord, deleted []string)
}

// PlayerStore writes player records through.
type PlayerStore interface {
	UpsertPlayer(ctx context.Context, rec PlayerRecord) error
}

// ItemStore writes and deletes item records.
type ItemStore interface {
	UpsertItem(ctx context.Context, rec ItemRecord) error
	DeleteItem(ctx context.Context, id string) error
}

// Sidecar accumulates dirty entity IDs and flushes them on an interval and on
// shutdown. Mark methods are cheap set inserts safe to call from the engine
// goroutine's dirty hook.
type Sidecar struct {
	source  Source
	players PlayerStore
	items   ItemStore

	interval time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	dirtyPlayer map[string]struct{}
	dirtyItem   map[string]struct{}

	stopCh chan struct{}
	done   chan struct{}
}

// New creates a Sidecar.
//
// Precondition: source, players, items, and logger must be non-nil;
// interval > 0.
func New(source Source, players PlayerStore, items ItemStore, interval time.Duration, logger *zap.Logger) *Sidecar {
	return &Sidecar{
		source:      source,
		players:     players,
		items:       items,
		interval:    interval,
		logger:      logger,
		dirtyPlayer: make(map[string]struct{}),
		dirtyItem:   make(map[string]struct{}),
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// MarkPlayer flags a player for the next flush.
func (s *Sidecar) MarkPlayer(id string) {
	s.mu.Lock()
	s.dirtyPlayer[id] = struct{}{}
	s.mu.Unlock()
}

// MarkItem flags an item for the next flush.
func (s *Sidecar) MarkItem(id string) {
	s.mu.Lock()
	s.dirtyItem[id] = struct{}{}
	s.mu.Unlock()
}

// Pending reports the current dirty counts, for tests and health output.
func (s *Sidecar) Pending() (players, items int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirtyPlayer), len(s.dirtyItem)
}

// Start runs the flush loop until Stop is called. It blocks, fitting the
// lifecycle Service contract.
func (s *Sidecar) Start() error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)
	for {
		select {
		case <-ticker.C:
			s.Flush(context.Background())
		case <-s.stopCh:
			return nil
		}
	}
}

// Stop ends the flush loop and performs one final flush. The engine must
// still be running when Stop is called, since the final snapshot runs through
// it.
func (s *Sidecar) Stop() {
	close(s.stopCh)
	<-s.done
	s.Flush(context.Background())
}

// Flush writes every dirty entity through. Entities that fail to write are
// re-marked so the next flush retries them.
func (s *Sidecar) Flush(ctx context.Context) {
	s.mu.Lock()
	playerIDs := drainSet(s.dirtyPlayer)
	itemIDs := drainSet(s.dirtyItem)
	s.mu.Unlock()

	if len(playerIDs) == 0 && len(itemIDs) == 0 {
		return
	}
	start := time.Now()

	for _, rec := range s.source.SnapshotPlayers(playerIDs) {
		if err := s.players.UpsertPlayer(ctx, rec); err != nil {
			s.logger.Error("player flush failed", zap.String("player_id", rec.ID), zap.Error(err))
			s.MarkPlayer(rec.ID)
		}
	}

	live, deleted := s.source.SnapshotItems(itemIDs)
	for _, rec := range live {
		if err := s.items.UpsertItem(ctx, rec); err != nil {
			s.logger.Error("item flush failed", zap.String("item_id", rec.ID), zap.Error(err))
			s.MarkItem(rec.ID)
		}
	}
	for _, id := range deleted {
		if err := s.items.DeleteItem(ctx, id); err != nil {
			s.logger.Error("item delete failed", zap.String("item_id", id), zap.Error(err))
			s.MarkItem(id)
		}
	}

	s.logger.Debug("persistence flush complete",
		zap.Int("players", len(playerIDs)),
		zap.Int("items", len(itemIDs)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func drainSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
		delete(set, id)
	}
	return out
}
