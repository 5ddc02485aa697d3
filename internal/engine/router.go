package engine

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/game/trigger"
	"github.com/embervale/mud/internal/game/world"
)

const unknownCommandMessage = "Huh? That's not a command you know. Try 'help'."

// handlerFunc executes one command on the engine goroutine. args is the rest
// of the line after the verb, already self-expanded.
type handlerFunc func(e *Engine, p *world.Player, args string)

type command struct {
	name    string
	aliases []string
	help    string
	admin   bool
	// whileDead permits the command for dead players awaiting respawn.
	whileDead bool
	fn        handlerFunc
}

type commandSet struct {
	byVerb map[string]*command
	all    []*command
}

func (cs *commandSet) add(c *command) {
	cs.all = append(cs.all, c)
	cs.byVerb[c.name] = c
	for _, a := range c.aliases {
		cs.byVerb[a] = c
	}
}

// handleCommand is the single entry point for player input. Must run on the
// engine goroutine.
func (e *Engine) handleCommand(playerID, text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command handler panicked",
				zap.String("player_id", playerID),
				zap.String("input", text),
				zap.Any("panic", r),
			)
			e.send(playerID, "Something went wrong.")
		}
	}()

	p, ok := e.world.Players[playerID]
	if !ok || !p.IsConnected {
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	// "!" repeats the last recorded command.
	if text == "!" {
		last, ok := p.LastCommand()
		if !ok {
			e.send(p.ID, "You haven't done anything yet.")
			return
		}
		text = last
	}
	p.RecordCommand(text)

	// Dialogue mode consumes raw input until the player leaves.
	if p.InDialogue {
		e.handleDialogueLine(p, text)
		return
	}

	verb, args := splitVerb(text)
	args = expandSelf(args, p.Name)

	cmd, ok := e.commands.byVerb[verb]
	if !ok {
		if e.fireCommandTriggers(p, text) {
			return
		}
		e.send(p.ID, unknownCommandMessage)
		return
	}

	if cmd.admin && !p.IsAdmin {
		e.send(p.ID, unknownCommandMessage)
		return
	}
	if !p.IsAlive() && !cmd.whileDead {
		e.send(p.ID, "You are dead. The world fades back in shortly.")
		return
	}

	cmd.fn(e, p, args)
}

// splitVerb separates the first word (lowercased) from the rest of the line.
func splitVerb(text string) (verb, args string) {
	parts := strings.SplitN(text, " ", 2)
	verb = strings.ToLower(parts[0])
	if len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}
	return verb, args
}

// expandSelf replaces the standalone token "self" with the player's own
// name, so "look self" and "give bread self" resolve naturally.
func expandSelf(args, name string) string {
	if args == "" {
		return args
	}
	fields := strings.Fields(args)
	changed := false
	for i, f := range fields {
		if strings.EqualFold(f, "self") {
			fields[i] = name
			changed = true
		}
	}
	if !changed {
		return args
	}
	return strings.Join(fields, " ")
}

// fireCommandTriggers offers an unroutable line to the room's (then the
// area's) on_command triggers.
//
// Postcondition: Returns true iff at least one trigger fired.
func (e *Engine) fireCommandTriggers(p *world.Player, text string) bool {
	ctx := &trigger.Context{
		World:    e.world,
		PlayerID: p.ID,
		RoomID:   p.RoomID,
		Command:  text,
		Now:      e.now(),
	}
	fired := false
	for _, t := range e.triggers.RoomMatching(p.RoomID, trigger.OnCommand) {
		if t.MatchesCommand(text) && t.Fire(ctx, e.triggerEnv()) {
			fired = true
		}
	}
	if area, ok := e.world.AreaForRoom(p.RoomID); ok {
		for _, t := range e.triggers.AreaMatching(area.ID, trigger.OnCommand) {
			if t.MatchesCommand(text) && t.Fire(ctx, e.triggerEnv()) {
				fired = true
			}
		}
	}
	return fired
}

// helpText renders the command list the player may use.
func (e *Engine) helpText(p *world.Player) string {
	var b strings.Builder
	b.WriteString("Available commands:")
	cmds := make([]*command, len(e.commands.all))
	copy(cmds, e.commands.all)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	for _, c := range cmds {
		if c.admin && !p.IsAdmin {
			continue
		}
		b.WriteString("\n  ")
		b.WriteString(c.name)
		if len(c.aliases) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(c.aliases, ", "))
			b.WriteString(")")
		}
		if c.help != "" {
			b.WriteString(" - ")
			b.WriteString(c.help)
		}
	}
	return b.String()
}
