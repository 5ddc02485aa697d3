package look

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/embervale/mud/internal/game/effect"
	"github.com/embervale/mud/internal/game/world"
)

// RoomView renders what a player sees on entering or looking at a room: the
// name in bold, the effective description, exits, items on the floor, and
// the other entities present.
func RoomView(w *world.World, room *world.Room, viewerID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", room.Name)
	b.WriteString(room.EffectiveDescription())
	b.WriteString("\n")

	if area, ok := w.AreaForRoom(room.ID); ok {
		if text, ok := area.PhaseText(); ok {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}

	dirs := room.ExitDirections()
	if len(dirs) == 0 {
		b.WriteString("There are no obvious exits.\n")
	} else {
		names := make([]string, len(dirs))
		for i, d := range dirs {
			names[i] = string(d)
		}
		fmt.Fprintf(&b, "Exits: %s\n", strings.Join(names, ", "))
	}

	for _, it := range w.ItemsInRoom(room.ID) {
		fmt.Fprintf(&b, "%s lies here.\n", capitalize(displayName(it)))
	}
	for _, n := range w.NpcsInRoom(room.ID) {
		if !n.IsAlive() {
			continue
		}
		fmt.Fprintf(&b, "%s is here.\n", capitalize(n.Name))
	}
	for _, p := range w.PlayersInRoom(room.ID) {
		if p.ID == viewerID || !p.IsAlive() {
			continue
		}
		fmt.Fprintf(&b, "%s is here.\n", p.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EntityView renders a close look at another entity: description and a
// qualitative wound state, never exact numbers.
func EntityView(w *world.World, e world.Entity) string {
	core := e.Core()
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", capitalize(core.Name))
	if n, ok := e.(*world.Npc); ok {
		if tmpl, ok := w.NpcTemplates[n.TemplateID]; ok && tmpl.Description != "" {
			b.WriteString(tmpl.Description)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "%s looks %s.", capitalize(core.Name), core.HealthDescription())
	return b.String()
}

// ItemView renders a close look at an item.
func ItemView(it *world.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", capitalize(it.Name))
	if it.Description != "" {
		b.WriteString("\n")
		b.WriteString(it.Description)
	}
	if it.Quantity > 1 {
		fmt.Fprintf(&b, "\nThere are %d of them.", it.Quantity)
	}
	return b.String()
}

// StatsView renders the player's own character sheet, with exact numbers.
func StatsView(p *world.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", p.Name)
	if p.CharacterClass != "" {
		fmt.Fprintf(&b, ", %s", p.CharacterClass)
	}
	fmt.Fprintf(&b, " (level %d)\n", p.Level)
	fmt.Fprintf(&b, "Health: %d/%d  Energy: %d/%d\n",
		p.CurrentHealth, p.MaxHealth, p.CurrentEnergy, p.MaxEnergy)
	fmt.Fprintf(&b, "Strength: %d  Dexterity: %d  Intelligence: %d  Vitality: %d\n",
		p.EffectiveStrength(), p.EffectiveDexterity(),
		p.EffectiveStat(world.StatIntelligence), p.EffectiveStat(world.StatVitality))
	fmt.Fprintf(&b, "Armor class: %d\n", p.EffectiveArmorClass())
	fmt.Fprintf(&b, "Experience: %d", p.Experience)
	return b.String()
}

// EffectsView renders an entity's active effects with remaining durations.
func EffectsView(e world.Entity, now time.Time) string {
	core := e.Core()
	if len(core.ActiveEffects) == 0 {
		return "You are not affected by anything."
	}
	effects := make([]*effect.Effect, 0, len(core.ActiveEffects))
	for _, ef := range core.ActiveEffects {
		effects = append(effects, ef)
	}
	sort.Slice(effects, func(i, j int) bool { return effects[i].Name < effects[j].Name })

	var b strings.Builder
	b.WriteString("Active effects:")
	for _, ef := range effects {
		remaining := ef.RemainingDuration(now).Round(time.Second)
		fmt.Fprintf(&b, "\n  *%s* (%s), %s remaining", ef.Name, ef.Type, remaining)
	}
	return b.String()
}

// InventoryView renders a player's carried items.
func InventoryView(w *world.World, p *world.Player) string {
	items := w.ItemsHeldBy(p.ID)
	if len(items) == 0 {
		return "You are carrying nothing."
	}
	var b strings.Builder
	b.WriteString("You are carrying:")
	for _, it := range items {
		line := displayName(it)
		if it.EquippedSlot != "" {
			line += fmt.Sprintf(" (equipped, %s)", it.EquippedSlot)
		}
		fmt.Fprintf(&b, "\n  %s", line)
	}
	return b.String()
}

func displayName(it *world.Item) string {
	if it.Quantity > 1 {
		return fmt.Sprintf("%s (x%d)", it.Name, it.Quantity)
	}
	return it.Name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
