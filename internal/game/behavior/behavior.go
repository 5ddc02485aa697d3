// Package behavior implements pluggable NPC AI. An NPC template names
// behavior tags; the registry resolves them into instances ordered by
// priority. Hooks are pure decisions: a behavior inspects the world and
// returns a Result describing what the NPC wants to do, and the engine
// applies it. Behaviors never mutate the world directly.
package behavior

import (
	"fmt"
	"sort"
	"time"

	"github.com/embervale/mud/internal/game/dice"
	"github.com/embervale/mud/internal/game/world"
)

// Context carries everything a hook may inspect. It is valid only for the
// duration of the hook call.
type Context struct {
	World *world.World
	Npc   *world.Npc
	Dice  dice.Source
	Now   time.Time

	// Config is the merged behavior configuration: built-in defaults
	// overlaid with the template's behavior_config entries.
	Config map[string]any

	// ActorID is the player that caused the hook, when one exists: the
	// entrant for OnPlayerEnter, the attacker for OnDamaged.
	ActorID string
}

// Result is a behavior's decision. Zero value means "nothing to do".
type Result struct {
	// Handled stops later behaviors in the chain from seeing the same hook.
	Handled bool

	// Message is said aloud by the NPC; EmoteText is a third-person action
	// shown to the room.
	Message   string
	EmoteText string

	// MoveDirection asks the engine to walk the NPC through an exit.
	MoveDirection world.Direction

	// AttackTargetID asks the engine to initiate combat.
	AttackTargetID string

	// Flee asks the engine to attempt a combat escape.
	Flee bool

	// CallForHelp asks the engine to aggro same-faction NPCs in the room
	// onto the NPC's current attacker.
	CallForHelp bool
}

// Behavior reacts to NPC lifecycle hooks. Implementations must be stateless
// across NPCs; per-NPC state belongs in Npc.InstanceData.
type Behavior interface {
	// Name returns the tag this behavior is registered under.
	Name() string

	// Priority orders hook evaluation; lower runs first.
	Priority() int

	// OnIdle fires on the NPC's idle timer.
	OnIdle(ctx *Context) Result

	// OnWander fires on the NPC's wander timer.
	OnWander(ctx *Context) Result

	// OnPlayerEnter fires when a player enters the NPC's room.
	OnPlayerEnter(ctx *Context) Result

	// OnDamaged fires after the NPC takes damage and survives.
	OnDamaged(ctx *Context) Result

	// OnCombatTurn fires when the NPC completes an attack recovery and
	// must choose its next combat action.
	OnCombatTurn(ctx *Context) Result
}

// Base is a no-op Behavior for embedding; built-ins override the hooks they
// care about.
type Base struct{}

func (Base) OnIdle(*Context) Result        { return Result{} }
func (Base) OnWander(*Context) Result      { return Result{} }
func (Base) OnPlayerEnter(*Context) Result { return Result{} }
func (Base) OnDamaged(*Context) Result     { return Result{} }
func (Base) OnCombatTurn(*Context) Result  { return Result{} }

// Factory builds a behavior instance. Config is the merged configuration the
// instance should honor.
type Factory func(config map[string]any) Behavior

// Registry maps behavior tags to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry preloaded with the built-in behaviors.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("idle", newIdle)
	r.Register("wander", newWander)
	r.Register("aggressive", newAggressive)
	r.Register("protective", newProtective)
	return r
}

// Register adds or replaces a factory for a tag.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Known reports whether a tag resolves.
func (r *Registry) Known(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Resolve instantiates the template's behavior tags, lowest priority first.
// Each instance receives the template's behavior_config merged over the
// built-in defaults for its tag.
//
// Postcondition: Returns an error naming the first unknown tag.
func (r *Registry) Resolve(tmpl *world.NpcTemplate) ([]Behavior, error) {
	out := make([]Behavior, 0, len(tmpl.Behaviors))
	for _, tag := range tmpl.Behaviors {
		f, ok := r.factories[tag]
		if !ok {
			return nil, fmt.Errorf("npc template %q: unknown behavior %q", tmpl.ID, tag)
		}
		out = append(out, f(tmpl.BehaviorConfig))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out, nil
}

// RunHook evaluates one hook across the behavior chain in priority order,
// stopping at the first Handled result.
//
// Postcondition: Returns the first Handled result, or the zero Result when
// no behavior handled the hook.
func RunHook(chain []Behavior, ctx *Context, hook func(Behavior, *Context) Result) Result {
	for _, b := range chain {
		if res := hook(b, ctx); res.Handled {
			return res
		}
	}
	return Result{}
}

// Config extraction helpers. YAML decodes numbers as int or float64
// depending on their spelling, so both are accepted.

func configFloat(cfg map[string]any, key string, def float64) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

func configInt(cfg map[string]any, key string, def int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func configBool(cfg map[string]any, key string, def bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return def
}

func configStrings(cfg map[string]any, key string) []string {
	raw, ok := cfg[key].([]any)
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
