package engine

import (
	"fmt"
	"strings"

	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/world"
)

func cmdGet(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Get what?")
		return
	}

	// "get <item> from <container>" digs into a carried or floor container.
	if itemPart, containerPart, ok := splitFrom(args); ok {
		e.getFromContainer(p, itemPart, containerPart)
		return
	}

	it, ok := look.FindItemInRoom(e.world, p.RoomID, args)
	if !ok {
		e.send(p.ID, "You don't see that here.")
		return
	}
	if err := e.world.GiveItemToPlayer(it.ID, p.ID); err != nil {
		e.send(p.ID, "You can't pick that up.")
		return
	}
	e.markDirty(DirtyItem, it.ID)
	e.send(p.ID, fmt.Sprintf("You pick up %s.", it.Name))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s picks up %s.", p.Name, it.Name))
}

func (e *Engine) getFromContainer(p *world.Player, itemPart, containerPart string) {
	container, ok := look.FindItemNearby(e.world, p.ID, p.RoomID, containerPart)
	if !ok {
		e.send(p.ID, "You don't see that container here.")
		return
	}
	keyword, ordinal := look.ParseTarget(itemPart)
	seen := 0
	for _, inner := range e.world.ItemsInContainer(container.ID) {
		if !inner.MatchesKeyword(keyword) {
			continue
		}
		seen++
		if seen < ordinal {
			continue
		}
		if err := e.world.GiveItemToPlayer(inner.ID, p.ID); err != nil {
			e.send(p.ID, "You can't get that out.")
			return
		}
		e.markDirty(DirtyItem, inner.ID)
		e.send(p.ID, fmt.Sprintf("You get %s from %s.", inner.Name, container.Name))
		return
	}
	e.send(p.ID, fmt.Sprintf("There's no such thing in %s.", container.Name))
}

func cmdDrop(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Drop what?")
		return
	}
	it, ok := look.FindItemHeld(e.world, p.ID, args)
	if !ok {
		e.send(p.ID, "You aren't carrying that.")
		return
	}
	if it.EquippedSlot != "" {
		e.send(p.ID, "Unequip it first.")
		return
	}
	if err := e.world.PlaceItemInRoom(it.ID, p.RoomID, e.now()); err != nil {
		e.send(p.ID, "You can't drop that here.")
		return
	}
	e.markDirty(DirtyItem, it.ID)
	e.send(p.ID, fmt.Sprintf("You drop %s.", it.Name))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s drops %s.", p.Name, it.Name))
}

func cmdPut(e *Engine, p *world.Player, args string) {
	itemPart, containerPart, ok := splitIn(args)
	if !ok {
		e.send(p.ID, "Put what in what? Try 'put <item> in <container>'.")
		return
	}
	it, ok := look.FindItemHeld(e.world, p.ID, itemPart)
	if !ok {
		e.send(p.ID, "You aren't carrying that.")
		return
	}
	container, ok := look.FindItemNearby(e.world, p.ID, p.RoomID, containerPart)
	if !ok {
		e.send(p.ID, "You don't see that container here.")
		return
	}
	if err := e.world.PutItemInContainer(it.ID, container.ID); err != nil {
		e.send(p.ID, fmt.Sprintf("You can't put %s in %s.", it.Name, container.Name))
		return
	}
	e.markDirty(DirtyItem, it.ID)
	e.send(p.ID, fmt.Sprintf("You put %s in %s.", it.Name, container.Name))
}

func cmdEquip(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Equip what?")
		return
	}
	it, ok := look.FindItemHeld(e.world, p.ID, args)
	if !ok {
		e.send(p.ID, "You aren't carrying that.")
		return
	}
	tmpl, ok := e.world.ItemTemplates[it.TemplateID]
	if !ok || tmpl.Slot == "" {
		e.send(p.ID, "You can't equip that.")
		return
	}

	// Swap out whatever occupies the slot.
	if priorID, occupied := p.EquippedItems[tmpl.Slot]; occupied {
		for _, held := range e.world.ItemsHeldBy(p.ID) {
			if held.TemplateID == priorID && held.EquippedSlot == tmpl.Slot {
				held.EquippedSlot = ""
				e.send(p.ID, fmt.Sprintf("You unequip %s.", held.Name))
				break
			}
		}
		delete(p.EquippedItems, tmpl.Slot)
	}

	it.EquippedSlot = tmpl.Slot
	p.EquippedItems[tmpl.Slot] = tmpl.ID
	e.markDirty(DirtyPlayer, p.ID)
	e.markDirty(DirtyItem, it.ID)
	e.send(p.ID, fmt.Sprintf("You equip %s.", it.Name))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s equips %s.", p.Name, it.Name))
}

func cmdUnequip(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Unequip what?")
		return
	}
	for _, it := range e.world.ItemsHeldBy(p.ID) {
		if it.EquippedSlot == "" || !it.MatchesKeyword(args) {
			continue
		}
		delete(p.EquippedItems, it.EquippedSlot)
		it.EquippedSlot = ""
		e.markDirty(DirtyPlayer, p.ID)
		e.markDirty(DirtyItem, it.ID)
		e.send(p.ID, fmt.Sprintf("You unequip %s.", it.Name))
		return
	}
	e.send(p.ID, "You don't have that equipped.")
}

func cmdUse(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Use what?")
		return
	}
	it, ok := look.FindItemHeld(e.world, p.ID, args)
	if !ok {
		e.send(p.ID, "You aren't carrying that.")
		return
	}
	tmpl, ok := e.world.ItemTemplates[it.TemplateID]
	if !ok || tmpl.UseEffect == "" {
		e.send(p.ID, "Nothing happens.")
		return
	}
	if _, err := e.ApplyEffect(p.ID, tmpl.UseEffect); err != nil {
		e.send(p.ID, "Nothing happens.")
		return
	}
	e.send(p.ID, fmt.Sprintf("You use %s.", it.Name))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s uses %s.", p.Name, it.Name))

	// Consumables deplete one charge per use.
	if tmpl.Stackable {
		it.Quantity--
		if it.Quantity <= 0 {
			_ = e.world.DestroyItem(it.ID)
		}
		e.markDirty(DirtyItem, it.ID)
	}
}

func cmdGive(e *Engine, p *world.Player, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		e.send(p.ID, "Give what to whom? Try 'give <item> <player>'.")
		return
	}
	targetWord := fields[len(fields)-1]
	itemWord := strings.Join(fields[:len(fields)-1], " ")

	it, ok := look.FindItemHeld(e.world, p.ID, itemWord)
	if !ok {
		e.send(p.ID, "You aren't carrying that.")
		return
	}
	if it.EquippedSlot != "" {
		e.send(p.ID, "Unequip it first.")
		return
	}
	target, ok := look.FindEntity(e.world, p.RoomID, targetWord, p.ID)
	if !ok {
		e.send(p.ID, "They aren't here.")
		return
	}
	recipient, isPlayer := target.(*world.Player)
	if !isPlayer {
		e.send(p.ID, fmt.Sprintf("%s doesn't want it.", capitalized(target.Core().Name)))
		return
	}
	if err := e.world.GiveItemToPlayer(it.ID, recipient.ID); err != nil {
		e.send(p.ID, "You can't give that away.")
		return
	}
	e.markDirty(DirtyItem, it.ID)
	e.send(p.ID, fmt.Sprintf("You give %s to %s.", it.Name, recipient.Name))
	e.send(recipient.ID, fmt.Sprintf("%s gives you %s.", p.Name, it.Name))
	e.sendRoomExcept(p.RoomID, p.ID, recipient.ID,
		fmt.Sprintf("%s gives %s to %s.", p.Name, it.Name, recipient.Name))
}

// splitFrom parses "<item> from <container>".
func splitFrom(args string) (item, container string, ok bool) {
	return splitOn(args, " from ")
}

// splitIn parses "<item> in <container>".
func splitIn(args string) (item, container string, ok bool) {
	return splitOn(args, " in ")
}

func splitOn(args, sep string) (string, string, bool) {
	idx := strings.Index(strings.ToLower(args), sep)
	if idx < 0 {
		return "", "", false
	}
	left := strings.TrimSpace(args[:idx])
	right := strings.TrimSpace(args[idx+len(sep):])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}
