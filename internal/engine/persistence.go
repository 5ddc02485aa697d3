package engine

import (
	"sort"

	"github.com/embervale/mud/internal/persist"
)

// The engine is the persistence sidecar's snapshot source. Snapshots are
// built on the engine goroutine by posting a closure and waiting, so the
// sidecar never reads mutable game state directly. The sidecar must only
// call these while the engine loop is running.

// SnapshotPlayers builds records for the given player IDs. IDs that no longer
// resolve are skipped.
func (e *Engine) SnapshotPlayers(ids []string) []persist.PlayerRecord {
	out := make(chan []persist.PlayerRecord, 1)
	e.post(func() {
		recs := make([]persist.PlayerRecord, 0, len(ids))
		for _, id := range ids {
			p, ok := e.world.Players[id]
			if !ok {
				continue
			}
			recs = append(recs, persist.PlayerRecord{
				ID:              p.ID,
				Name:            p.Name,
				Level:           p.Level,
				Experience:      p.Experience,
				RoomID:          p.RoomID,
				MaxHealth:       p.MaxHealth,
				CurrentHealth:   p.CurrentHealth,
				MaxEnergy:       p.MaxEnergy,
				CurrentEnergy:   p.CurrentEnergy,
				Strength:        p.Strength,
				Dexterity:       p.Dexterity,
				Intelligence:    p.Intelligence,
				Vitality:        p.Vitality,
				IsAdmin:         p.IsAdmin,
				Flags:           copyBoolMap(p.PlayerFlags),
				QuestProgress:   copyIntMap(p.QuestProgress),
				CompletedQuests: sortedKeys(p.CompletedQuests),
				MaxWeight:       p.InventoryMeta.MaxWeight,
				MaxSlots:        p.InventoryMeta.MaxSlots,
				CurrentWeight:   p.InventoryMeta.CurrentWeight,
				CurrentSlots:    p.InventoryMeta.CurrentSlots,
			})
		}
		out <- recs
	})
	return <-out
}

// SnapshotItems builds records for live items and reports destroyed ones so
// the store can delete their rows.
func (e *Engine) SnapshotItems(ids []string) (live []persist.ItemRecord, deleted []string) {
	out := make(chan struct {
		live    []persist.ItemRecord
		deleted []string
	}, 1)
	e.post(func() {
		var res struct {
			live    []persist.ItemRecord
			deleted []string
		}
		for _, id := range ids {
			it, ok := e.world.Items[id]
			if !ok {
				res.deleted = append(res.deleted, id)
				continue
			}
			res.live = append(res.live, persist.ItemRecord{
				ID:                it.ID,
				TemplateID:        it.TemplateID,
				PlayerID:          it.PlayerID,
				RoomID:            it.RoomID,
				ContainerID:       it.ContainerID,
				Quantity:          it.Quantity,
				CurrentDurability: copyIntPtr(it.CurrentDurability),
				EquippedSlot:      it.EquippedSlot,
				InstanceData:      copyAnyMap(it.InstanceData),
			})
		}
		out <- res
	})
	res := <-out
	return res.live, res.deleted
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAnyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
