// Package content loads world definitions from YAML files: areas with their
// rooms, NPC templates, item templates, effect templates, and triggers. The
// loader validates everything it reads; a world that loads is safe to run.
//
// The package is independent of the engine. It returns a populated World plus
// spawn and trigger definitions for the caller to wire in.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/embervale/mud/internal/game/combat"
	"github.com/embervale/mud/internal/game/effect"
	"github.com/embervale/mud/internal/game/trigger"
	"github.com/embervale/mud/internal/game/world"
)

// SpawnDef is one NPC population rule read from an area file.
type SpawnDef struct {
	NpcTemplateID string
	RoomID        string
	Count         int
	// RespawnTime overrides template and area defaults when positive.
	RespawnTime time.Duration
}

// TriggerBinding attaches a loaded trigger to its room or area. Exactly one
// of RoomID and AreaID is set.
type TriggerBinding struct {
	RoomID  string
	AreaID  string
	Trigger *trigger.Trigger
}

// Pack is everything a content directory defines.
type Pack struct {
	World    *world.World
	Spawns   []SpawnDef
	Triggers []TriggerBinding
}

// Load reads a content directory tree:
//
//	<dir>/areas/*.yaml    areas, their rooms, and spawn rules (required)
//	<dir>/npcs/*.yaml     NPC templates
//	<dir>/items/*.yaml    item templates
//	<dir>/effects/*.yaml  effect templates
//	<dir>/triggers/*.yaml triggers and their bindings
//
// Postcondition: Returns a validated Pack or a non-nil error naming the file
// and definition at fault.
func Load(dir string) (*Pack, error) {
	pack := &Pack{World: world.New()}

	if err := loadDir(filepath.Join(dir, "npcs"), pack.loadNpcFile); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, "items"), pack.loadItemFile); err != nil {
		return nil, err
	}
	if err := loadDir(filepath.Join(dir, "effects"), pack.loadEffectFile); err != nil {
		return nil, err
	}

	areaDir := filepath.Join(dir, "areas")
	if _, err := os.Stat(areaDir); err != nil {
		return nil, fmt.Errorf("content dir %s has no areas directory: %w", dir, err)
	}
	if err := loadDir(areaDir, pack.loadAreaFile); err != nil {
		return nil, err
	}

	if err := loadDir(filepath.Join(dir, "triggers"), pack.loadTriggerFile); err != nil {
		return nil, err
	}

	if err := pack.validate(); err != nil {
		return nil, err
	}
	return pack, nil
}

// loadDir feeds every .yaml/.yml file under dir to fn. A missing directory is
// not an error; content kinds are optional.
func loadDir(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading content dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// validate runs the cross-reference checks that individual files cannot:
// spawn rooms exist, drop tables and use effects resolve, and the world graph
// holds together.
func (p *Pack) validate() error {
	for _, s := range p.Spawns {
		if _, ok := p.World.NpcTemplates[s.NpcTemplateID]; !ok {
			return fmt.Errorf("spawn references unknown npc template %q", s.NpcTemplateID)
		}
		if _, ok := p.World.Rooms[s.RoomID]; !ok {
			return fmt.Errorf("spawn of %q references unknown room %q", s.NpcTemplateID, s.RoomID)
		}
	}
	for _, tmpl := range p.World.NpcTemplates {
		for _, d := range tmpl.DropTable {
			if _, ok := p.World.ItemTemplates[d.TemplateID]; !ok {
				return fmt.Errorf("npc template %q drops unknown item template %q", tmpl.ID, d.TemplateID)
			}
		}
	}
	for _, tmpl := range p.World.ItemTemplates {
		if tmpl.UseEffect != "" {
			if _, ok := p.World.EffectTemplates[tmpl.UseEffect]; !ok {
				return fmt.Errorf("item template %q uses unknown effect template %q", tmpl.ID, tmpl.UseEffect)
			}
		}
	}
	for _, room := range p.World.Rooms {
		for _, ref := range []string{room.OnEnterEffect, room.OnExitEffect} {
			if ref == "" {
				continue
			}
			if _, ok := p.World.EffectTemplates[ref]; !ok {
				return fmt.Errorf("room %q references unknown effect template %q", room.ID, ref)
			}
		}
	}
	for _, b := range p.Triggers {
		if (b.RoomID == "") == (b.AreaID == "") {
			return fmt.Errorf("trigger %q must name exactly one of room and area", b.Trigger.ID)
		}
		if b.RoomID != "" {
			if _, ok := p.World.Rooms[b.RoomID]; !ok {
				return fmt.Errorf("trigger %q bound to unknown room %q", b.Trigger.ID, b.RoomID)
			}
		}
		if b.AreaID != "" {
			if _, ok := p.World.Areas[b.AreaID]; !ok {
				return fmt.Errorf("trigger %q bound to unknown area %q", b.Trigger.ID, b.AreaID)
			}
		}
	}
	return p.World.Validate()
}

// yamlWeapon carries attack timings in seconds; conversion produces the
// duration-typed WeaponStats.
type yamlWeapon struct {
	Name          string  `yaml:"name"`
	DamageMin     int     `yaml:"damage_min"`
	DamageMax     int     `yaml:"damage_max"`
	WindupSeconds float64 `yaml:"windup_seconds"`
	SwingSeconds  float64 `yaml:"swing_seconds"`
}

func (w *yamlWeapon) toWeapon() *combat.WeaponStats {
	if w == nil {
		return nil
	}
	return &combat.WeaponStats{
		Name:       w.Name,
		DamageMin:  w.DamageMin,
		DamageMax:  w.DamageMax,
		WindupTime: seconds(w.WindupSeconds),
		SwingTime:  seconds(w.SwingSeconds),
	}
}

type yamlNpcFile struct {
	Npcs []yamlNpc `yaml:"npcs"`
}

type yamlNpc struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Description string   `yaml:"description"`

	MaxHealth    int `yaml:"max_health"`
	ArmorClass   int `yaml:"armor_class"`
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Intelligence int `yaml:"intelligence"`
	Vitality     int `yaml:"vitality"`

	Weapon           *yamlWeapon    `yaml:"weapon"`
	Behaviors        []string       `yaml:"behaviors"`
	BehaviorConfig   map[string]any `yaml:"behavior_config"`
	ExperienceReward int            `yaml:"experience_reward"`
	RespawnSeconds   float64        `yaml:"respawn_seconds"`
	Faction          string         `yaml:"faction"`
	DropTable        []yamlDrop     `yaml:"drop_table"`
	IdleMessages     []string       `yaml:"idle_messages"`
}

type yamlDrop struct {
	Template string  `yaml:"template"`
	Chance   float64 `yaml:"chance"`
	MinQty   int     `yaml:"min_qty"`
	MaxQty   int     `yaml:"max_qty"`
}

func (p *Pack) loadNpcFile(path string, data []byte) error {
	var file yamlNpcFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, y := range file.Npcs {
		tmpl := &world.NpcTemplate{
			ID:               y.ID,
			Name:             y.Name,
			Keywords:         y.Keywords,
			Description:      y.Description,
			MaxHealth:        y.MaxHealth,
			ArmorClass:       y.ArmorClass,
			Strength:         y.Strength,
			Dexterity:        y.Dexterity,
			Intelligence:     y.Intelligence,
			Vitality:         y.Vitality,
			Weapon:           y.Weapon.toWeapon(),
			Behaviors:        y.Behaviors,
			BehaviorConfig:   y.BehaviorConfig,
			ExperienceReward: y.ExperienceReward,
			RespawnTime:      seconds(y.RespawnSeconds),
			Faction:          y.Faction,
			IdleMessages:     y.IdleMessages,
		}
		for _, d := range y.DropTable {
			maxQty := d.MaxQty
			if maxQty == 0 {
				maxQty = d.MinQty
			}
			tmpl.DropTable = append(tmpl.DropTable, world.DropEntry{
				TemplateID: d.Template,
				Chance:     d.Chance,
				MinQty:     d.MinQty,
				MaxQty:     maxQty,
			})
		}
		if err := tmpl.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, exists := p.World.NpcTemplates[tmpl.ID]; exists {
			return fmt.Errorf("%s: duplicate npc template ID %q", path, tmpl.ID)
		}
		p.World.NpcTemplates[tmpl.ID] = tmpl
	}
	return nil
}

type yamlItemFile struct {
	Items []yamlItem `yaml:"items"`
}

type yamlItem struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Keywords    []string    `yaml:"keywords"`
	Description string      `yaml:"description"`
	Slot        string      `yaml:"slot"`
	Weapon      *yamlWeapon `yaml:"weapon"`
	IsContainer bool        `yaml:"is_container"`
	Stackable   bool        `yaml:"stackable"`
	Weight      float64     `yaml:"weight"`
	MaxDurability int       `yaml:"max_durability"`
	UseEffect   string      `yaml:"use_effect"`
}

func (p *Pack) loadItemFile(path string, data []byte) error {
	var file yamlItemFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, y := range file.Items {
		tmpl := &world.ItemTemplate{
			ID:            y.ID,
			Name:          y.Name,
			Keywords:      y.Keywords,
			Description:   y.Description,
			Slot:          y.Slot,
			Weapon:        y.Weapon.toWeapon(),
			IsContainer:   y.IsContainer,
			Stackable:     y.Stackable,
			Weight:        y.Weight,
			MaxDurability: y.MaxDurability,
			UseEffect:     y.UseEffect,
		}
		if err := tmpl.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, exists := p.World.ItemTemplates[tmpl.ID]; exists {
			return fmt.Errorf("%s: duplicate item template ID %q", path, tmpl.ID)
		}
		p.World.ItemTemplates[tmpl.ID] = tmpl
	}
	return nil
}

type yamlEffectFile struct {
	Effects []effect.Template `yaml:"effects"`
}

func (p *Pack) loadEffectFile(path string, data []byte) error {
	var file yamlEffectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range file.Effects {
		tmpl := file.Effects[i]
		if tmpl.ID == "" {
			return fmt.Errorf("%s: effect template has no ID", path)
		}
		if !tmpl.Type.Valid() {
			return fmt.Errorf("%s: effect template %q: unknown type %q", path, tmpl.ID, tmpl.Type)
		}
		if tmpl.DurationSeconds < 0 || tmpl.IntervalSeconds < 0 {
			return fmt.Errorf("%s: effect template %q: durations must be >= 0", path, tmpl.ID)
		}
		if _, exists := p.World.EffectTemplates[tmpl.ID]; exists {
			return fmt.Errorf("%s: duplicate effect template ID %q", path, tmpl.ID)
		}
		copied := tmpl
		p.World.EffectTemplates[tmpl.ID] = &copied
	}
	return nil
}

type yamlAreaFile struct {
	Area yamlArea `yaml:"area"`
}

type yamlArea struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Biome           string            `yaml:"biome"`
	Climate         string            `yaml:"climate"`
	AmbientLighting string            `yaml:"ambient_lighting"`
	TimeScale       *float64          `yaml:"time_scale"`
	TimePhases      map[string]string `yaml:"time_phases"`
	DefaultRespawnSeconds float64     `yaml:"default_respawn_seconds"`
	EntryPoints     []string          `yaml:"entry_points"`
	Rooms           []yamlRoom        `yaml:"rooms"`
	Spawns          []yamlSpawn       `yaml:"spawns"`
}

type yamlRoom struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	RoomType      string            `yaml:"room_type"`
	Exits         map[string]string `yaml:"exits"`
	OnEnterEffect string            `yaml:"on_enter_effect"`
	OnExitEffect  string            `yaml:"on_exit_effect"`
}

type yamlSpawn struct {
	Npc            string  `yaml:"npc"`
	Room           string  `yaml:"room"`
	Count          int     `yaml:"count"`
	RespawnSeconds float64 `yaml:"respawn_seconds"`
}

func (p *Pack) loadAreaFile(path string, data []byte) error {
	var file yamlAreaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	y := file.Area

	area := world.NewArea(y.ID, y.Name)
	area.Biome = y.Biome
	area.Climate = y.Climate
	area.AmbientLighting = y.AmbientLighting
	if y.TimeScale != nil {
		area.TimeScale = *y.TimeScale
	}
	area.DefaultRespawnTime = seconds(y.DefaultRespawnSeconds)
	area.EntryPoints = y.EntryPoints
	for phase, text := range y.TimePhases {
		area.TimePhases[world.TimePhase(phase)] = text
	}

	for _, yr := range y.Rooms {
		room := world.NewRoom(yr.ID, yr.Name, yr.Description)
		room.RoomType = yr.RoomType
		room.AreaID = area.ID
		room.OnEnterEffect = yr.OnEnterEffect
		room.OnExitEffect = yr.OnExitEffect
		for dir, target := range yr.Exits {
			d := world.Direction(strings.ToLower(dir))
			if !d.IsStandard() {
				return fmt.Errorf("%s: room %q: unknown exit direction %q", path, yr.ID, dir)
			}
			room.Exits[d] = target
		}
		if err := room.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := p.World.AddRoom(room); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		area.RoomIDs[room.ID] = struct{}{}
	}

	if err := area.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := p.World.AddArea(area); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, ys := range y.Spawns {
		count := ys.Count
		if count == 0 {
			count = 1
		}
		if count < 1 {
			return fmt.Errorf("%s: spawn of %q: count must be >= 1", path, ys.Npc)
		}
		p.Spawns = append(p.Spawns, SpawnDef{
			NpcTemplateID: ys.Npc,
			RoomID:        ys.Room,
			Count:         count,
			RespawnTime:   seconds(ys.RespawnSeconds),
		})
	}
	return nil
}

type yamlTriggerFile struct {
	Triggers []yamlTrigger `yaml:"triggers"`
}

type yamlTrigger struct {
	ID             string  `yaml:"id"`
	Room           string  `yaml:"room"`
	Area           string  `yaml:"area"`
	Event          string  `yaml:"event"`
	CommandPattern string  `yaml:"command_pattern"`
	IntervalSeconds float64 `yaml:"interval_seconds"`
	CooldownSeconds float64 `yaml:"cooldown_seconds"`
	MaxFires       int     `yaml:"max_fires"`
	// Disabled flips the default-on Enabled flag.
	Disabled   bool            `yaml:"disabled"`
	Conditions []yamlCondition `yaml:"conditions"`
	Actions    []yamlAction    `yaml:"actions"`
}

type yamlCondition struct {
	Type     string `yaml:"type"`
	Flag     string `yaml:"flag"`
	Negate   bool   `yaml:"negate"`
	Item     string `yaml:"item"`
	Room     string `yaml:"room"`
	MinLevel int    `yaml:"min_level"`
	Script   string `yaml:"script"`
}

type yamlAction struct {
	Type         string            `yaml:"type"`
	Text         string            `yaml:"text"`
	Flag         string            `yaml:"flag"`
	Value        bool              `yaml:"value"`
	Item         string            `yaml:"item"`
	Quantity     int               `yaml:"quantity"`
	Room         string            `yaml:"room"`
	Description  string            `yaml:"description"`
	Exits        map[string]string `yaml:"exits"`
	DelaySeconds float64           `yaml:"delay_seconds"`
	Actions      []yamlAction      `yaml:"actions"`
	Script       string            `yaml:"script"`
}

func (p *Pack) loadTriggerFile(path string, data []byte) error {
	var file yamlTriggerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, y := range file.Triggers {
		t := &trigger.Trigger{
			ID:             y.ID,
			Event:          trigger.Event(y.Event),
			CommandPattern: y.CommandPattern,
			Interval:       seconds(y.IntervalSeconds),
			Cooldown:       seconds(y.CooldownSeconds),
			MaxFires:       y.MaxFires,
			Enabled:        !y.Disabled,
		}
		for _, yc := range y.Conditions {
			t.Conditions = append(t.Conditions, trigger.Condition{
				Type:           yc.Type,
				Flag:           yc.Flag,
				Negate:         yc.Negate,
				ItemTemplateID: yc.Item,
				RoomID:         yc.Room,
				MinLevel:       yc.MinLevel,
				Script:         yc.Script,
			})
		}
		actions, err := convertActions(y.Actions)
		if err != nil {
			return fmt.Errorf("%s: trigger %q: %w", path, y.ID, err)
		}
		t.Actions = actions
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		p.Triggers = append(p.Triggers, TriggerBinding{
			RoomID:  y.Room,
			AreaID:  y.Area,
			Trigger: t,
		})
	}
	return nil
}

func convertActions(in []yamlAction) ([]trigger.Action, error) {
	var out []trigger.Action
	for _, ya := range in {
		a := trigger.Action{
			Type:           ya.Type,
			Text:           ya.Text,
			Flag:           ya.Flag,
			Value:          ya.Value,
			ItemTemplateID: ya.Item,
			Quantity:       ya.Quantity,
			RoomID:         ya.Room,
			Description:    ya.Description,
			DelaySeconds:   ya.DelaySeconds,
			Script:         ya.Script,
		}
		if ya.Exits != nil {
			a.Exits = make(map[world.Direction]string, len(ya.Exits))
			for dir, target := range ya.Exits {
				d := world.Direction(strings.ToLower(dir))
				if !d.IsStandard() {
					return nil, fmt.Errorf("override_room_exits: unknown direction %q", dir)
				}
				a.Exits[d] = target
			}
		}
		nested, err := convertActions(ya.Actions)
		if err != nil {
			return nil, err
		}
		a.Actions = nested
		out = append(out, a)
	}
	return out, nil
}
