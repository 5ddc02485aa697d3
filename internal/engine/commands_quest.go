package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/embervale/mud/internal/game/world"
)

// questOffer is a quest an NPC hands out, read from the template's behavior
// configuration: quest_id, quest_name, quest_stages, quest_reward_xp.
type questOffer struct {
	ID       string
	Name     string
	Stages   int
	RewardXP int
}

// questOfferFor extracts n's quest offer, if its template configures one.
func (e *Engine) questOfferFor(n *world.Npc) (questOffer, bool) {
	tmpl, ok := e.world.NpcTemplates[n.TemplateID]
	if !ok {
		return questOffer{}, false
	}
	cfg := tmpl.BehaviorConfig
	id, _ := cfg["quest_id"].(string)
	if id == "" {
		return questOffer{}, false
	}
	offer := questOffer{ID: id, Name: id, Stages: 1}
	if v, ok := cfg["quest_name"].(string); ok && v != "" {
		offer.Name = v
	}
	switch v := cfg["quest_stages"].(type) {
	case int:
		offer.Stages = v
	case float64:
		offer.Stages = int(v)
	}
	switch v := cfg["quest_reward_xp"].(type) {
	case int:
		offer.RewardXP = v
	case float64:
		offer.RewardXP = int(v)
	}
	return offer, true
}

// questDialogue routes one line of an active conversation into the quest
// state: accepting an offered quest or turning in a finished one.
//
// Postcondition: Returns true iff the line changed quest state.
func (e *Engine) questDialogue(p *world.Player, n *world.Npc, text string) bool {
	offer, ok := e.questOfferFor(n)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "accept", "yes":
		if _, done := p.CompletedQuests[offer.ID]; done {
			return false
		}
		if _, active := p.QuestProgress[offer.ID]; active {
			return false
		}
		p.QuestProgress[offer.ID] = 1
		e.markDirty(DirtyPlayer, p.ID)
		e.send(p.ID, fmt.Sprintf("You accept *%s*.", offer.Name))
		return true
	case "complete", "done":
		stage, active := p.QuestProgress[offer.ID]
		if !active || stage < offer.Stages {
			return false
		}
		delete(p.QuestProgress, offer.ID)
		p.CompletedQuests[offer.ID] = struct{}{}
		e.send(p.ID, fmt.Sprintf("You complete *%s*!", offer.Name))
		if offer.RewardXP > 0 {
			e.awardExperience(p, offer.RewardXP)
		}
		e.markDirty(DirtyPlayer, p.ID)
		return true
	}
	return false
}

// AdvanceQuest bumps a player's stage for questID by one. Used by triggers
// and scripts through the quest env; no-op for quests the player never took.
func (e *Engine) AdvanceQuest(p *world.Player, questID string) {
	if _, active := p.QuestProgress[questID]; !active {
		return
	}
	p.QuestProgress[questID]++
	e.markDirty(DirtyPlayer, p.ID)
	e.send(p.ID, fmt.Sprintf("Your journal updates: *%s* (stage %d).", questID, p.QuestProgress[questID]))
}

func cmdJournal(e *Engine, p *world.Player, _ string) {
	if len(p.QuestProgress) == 0 && len(p.CompletedQuests) == 0 {
		e.send(p.ID, "Your journal is empty.")
		return
	}

	active := make([]string, 0, len(p.QuestProgress))
	for id := range p.QuestProgress {
		active = append(active, id)
	}
	sort.Strings(active)

	var b strings.Builder
	b.WriteString("Your journal:")
	for _, id := range active {
		fmt.Fprintf(&b, "\n  %s (stage %d)", id, p.QuestProgress[id])
	}
	for _, id := range sortedKeys(p.CompletedQuests) {
		fmt.Fprintf(&b, "\n  %s (completed)", id)
	}
	e.send(p.ID, b.String())
}

func cmdQuest(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: quest <quest-id>")
		return
	}
	if stage, ok := p.QuestProgress[args]; ok {
		e.send(p.ID, fmt.Sprintf("*%s*: stage %d.", args, stage))
		return
	}
	if _, ok := p.CompletedQuests[args]; ok {
		e.send(p.ID, fmt.Sprintf("*%s*: completed.", args))
		return
	}
	e.send(p.ID, "You know of no such quest.")
}

func cmdAbandon(e *Engine, p *world.Player, args string) {
	if args == "" {
		e.send(p.ID, "Usage: abandon <quest-id>")
		return
	}
	if _, ok := p.QuestProgress[args]; !ok {
		e.send(p.ID, "You are not on that quest.")
		return
	}
	delete(p.QuestProgress, args)
	e.markDirty(DirtyPlayer, p.ID)
	e.send(p.ID, fmt.Sprintf("You abandon *%s*.", args))
}
