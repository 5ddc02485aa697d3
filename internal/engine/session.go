package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/game/look"
	"github.com/embervale/mud/internal/game/world"
)

// JoinRequest describes an authenticated connection handing a character to
// the engine. The account layer owns authentication; the engine only places
// the character in the world.
type JoinRequest struct {
	PlayerID string
	Name     string
	IsAdmin  bool
}

// Starting pools for newly created characters.
const (
	newPlayerHealth = 50
	newPlayerEnergy = 20
	newPlayerStat   = 10
)

// Join posts a player join to the engine loop. The gateway must have
// registered the player's dispatcher listener first.
func (e *Engine) Join(req JoinRequest) {
	e.post(func() { e.handleJoin(req) })
}

// Leave posts a player departure to the engine loop.
func (e *Engine) Leave(playerID string) {
	e.post(func() { e.handleLeave(playerID) })
}

func (e *Engine) handleJoin(req JoinRequest) {
	if p, ok := e.world.Players[req.PlayerID]; ok {
		e.reconnect(p)
		return
	}

	p := world.NewPlayer(req.PlayerID, req.Name)
	p.IsAdmin = req.IsAdmin
	p.IsConnected = true
	p.MaxHealth = newPlayerHealth
	p.CurrentHealth = newPlayerHealth
	p.MaxEnergy = newPlayerEnergy
	p.CurrentEnergy = newPlayerEnergy
	p.Strength = newPlayerStat
	p.Dexterity = newPlayerStat
	p.Intelligence = newPlayerStat
	p.Vitality = newPlayerStat
	p.RoomID = e.StartRoom()

	if err := e.world.AddPlayer(p); err != nil {
		e.logger.Error("player join failed", zap.String("player_id", req.PlayerID), zap.Error(err))
		e.disp.ToPlayer(req.PlayerID, dispatch.ErrorMessage("The world refuses you entry. Try again."))
		return
	}
	e.markDirty(DirtyPlayer, p.ID)

	e.send(p.ID, fmt.Sprintf("Welcome, %s.", p.Name))
	e.sendStats(p)
	if room, ok := e.world.Room(p.RoomID); ok {
		e.send(p.ID, look.RoomView(e.world, room, p.ID))
	}
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s has entered the world.", p.Name))
	e.notifyNpcsPlayerEntered(p, p.RoomID)
}

// reconnect reattaches an existing character. A character that disconnected
// while dead resumes the respawn countdown from the top.
func (e *Engine) reconnect(p *world.Player) {
	p.IsConnected = true
	e.send(p.ID, fmt.Sprintf("Welcome back, %s.", p.Name))

	if p.DeathTime != nil {
		e.startRespawnCountdown(p)
		return
	}

	if room, ok := e.world.Room(p.RoomID); ok {
		room.Entities[p.ID] = struct{}{}
		e.send(p.ID, look.RoomView(e.world, room, p.ID))
		e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s has returned.", p.Name))
	}
	e.sendStats(p)
}

func (e *Engine) handleLeave(playerID string) {
	p, ok := e.world.Players[playerID]
	if !ok {
		return
	}
	if p.DeathTime != nil {
		e.cancelRespawn(p)
	}
	e.disengage(playerID, "")
	e.disengageAttackersOf(playerID, p.RoomID)
	p.InDialogue = false
	p.DialogueNpcID = ""
	p.IsConnected = false
	e.sendRoom(p.RoomID, playerID, fmt.Sprintf("%s has left the world.", p.Name))
	e.world.DetachFromRoom(playerID)
	e.markDirty(DirtyPlayer, playerID)
}

func quitEvent() dispatch.Event {
	return dispatch.Event{Type: dispatch.TypeQuit, Text: "Farewell."}
}

func cmdTalk(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Talk to whom?")
		return
	}
	target, ok := look.FindEntity(e.world, p.RoomID, args, p.ID)
	if !ok {
		e.send(p.ID, "You don't see them here.")
		return
	}
	if target.IsPlayer() {
		e.send(p.ID, "Just say something; they can hear you.")
		return
	}
	n := target.(*world.Npc)
	if len(e.dialogueLines(n)) == 0 {
		e.send(p.ID, fmt.Sprintf("%s has nothing to say to you.", capitalized(n.Name)))
		return
	}
	p.InDialogue = true
	p.DialogueNpcID = n.ID
	e.send(p.ID, fmt.Sprintf("You strike up a conversation with %s. (Type 'leave' to end it.)", n.Name))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s starts talking with %s.", p.Name, n.Name))
	e.npcReply(p, n)
}

// handleDialogueLine consumes raw input while a dialogue is active.
func (e *Engine) handleDialogueLine(p *world.Player, text string) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "leave" || lower == "bye" || lower == "exit" {
		e.endDialogue(p, "You end the conversation.")
		return
	}

	n, ok := e.world.Npcs[p.DialogueNpcID]
	if !ok || !n.IsAlive() || n.RoomID != p.RoomID {
		e.endDialogue(p, "Your conversation partner is gone.")
		return
	}

	e.send(p.ID, fmt.Sprintf("You say to %s, \"%s\"", n.Name, text))
	e.sendRoom(p.RoomID, p.ID, fmt.Sprintf("%s says to %s, \"%s\"", p.Name, n.Name, text))
	if e.questDialogue(p, n, text) {
		return
	}
	e.npcReply(p, n)
}

func (e *Engine) endDialogue(p *world.Player, message string) {
	p.InDialogue = false
	p.DialogueNpcID = ""
	e.send(p.ID, message)
}

// dialogueLines returns the NPC's configured conversation lines.
func (e *Engine) dialogueLines(n *world.Npc) []string {
	tmpl, ok := e.world.NpcTemplates[n.TemplateID]
	if !ok {
		return nil
	}
	raw, ok := tmpl.BehaviorConfig["dialogue_lines"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// npcReply cycles through the NPC's dialogue lines, one per exchange.
func (e *Engine) npcReply(p *world.Player, n *world.Npc) {
	lines := e.dialogueLines(n)
	if len(lines) == 0 {
		return
	}
	idx, _ := n.InstanceData["dialogue_cursor"].(int)
	line := lines[idx%len(lines)]
	n.InstanceData["dialogue_cursor"] = idx + 1
	e.sendRoom(p.RoomID, "", fmt.Sprintf("%s says, \"%s\"", capitalized(n.Name), line))
}
