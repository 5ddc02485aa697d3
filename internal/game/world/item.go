package world

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/embervale/mud/internal/game/combat"
)

// ItemTemplate is a reusable item definition.
type ItemTemplate struct {
	ID          string
	Name        string
	Keywords    []string
	Description string
	// Slot is the equipment slot; empty = not equippable.
	Slot string
	// Weapon is set for weapons; nil otherwise.
	Weapon *combat.WeaponStats
	// IsContainer marks items that can hold other items.
	IsContainer bool
	// Stackable items merge quantities instead of occupying extra slots.
	Stackable bool
	// Weight contributes to inventory weight accounting.
	Weight float64
	// MaxDurability is the starting durability; 0 = indestructible.
	MaxDurability int
	// UseEffect is an effect template applied by the use command; empty = not usable.
	UseEffect string
}

// Validate checks template invariants.
func (t *ItemTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("item template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("item template %q: name must not be empty", t.ID)
	}
	if t.Weight < 0 {
		return fmt.Errorf("item template %q: weight must be >= 0", t.ID)
	}
	if t.MaxDurability < 0 {
		return fmt.Errorf("item template %q: max_durability must be >= 0", t.ID)
	}
	return nil
}

// Item is one live item instance. Exactly one of RoomID, PlayerID, and
// ContainerID is non-empty at any time; World placement operations maintain
// that invariant.
type Item struct {
	ID          string
	TemplateID  string
	Name        string
	Keywords    []string
	Description string

	RoomID      string
	PlayerID    string
	ContainerID string

	Quantity int
	// CurrentDurability is nil for indestructible items.
	CurrentDurability *int
	// EquippedSlot is set while the owning player has the item equipped.
	EquippedSlot string
	// InstanceData holds per-instance fields shadowing the template.
	InstanceData map[string]any
	// DroppedAt records when the item was last dropped in a room.
	DroppedAt *time.Time
}

// NewItem mints an item instance from tmpl with the given quantity.
//
// Precondition: tmpl must be non-nil and validated; quantity >= 1.
// Postcondition: The item has a unique ID and no owner; the caller must place
// it via a World placement operation.
func NewItem(tmpl *ItemTemplate, quantity int) *Item {
	if quantity < 1 {
		quantity = 1
	}
	it := &Item{
		ID:           fmt.Sprintf("item-%s-%s", tmpl.ID, uuid.New().String()[:8]),
		TemplateID:   tmpl.ID,
		Name:         tmpl.Name,
		Keywords:     append([]string(nil), tmpl.Keywords...),
		Description:  tmpl.Description,
		Quantity:     quantity,
		InstanceData: make(map[string]any),
	}
	if tmpl.MaxDurability > 0 {
		dur := tmpl.MaxDurability
		it.CurrentDurability = &dur
	}
	return it
}

// MatchesKeyword reports whether word is a case-insensitive prefix of the
// item's name, any word of its name, or any keyword.
func (i *Item) MatchesKeyword(word string) bool {
	if word == "" {
		return false
	}
	lower := strings.ToLower(word)
	if strings.HasPrefix(strings.ToLower(i.Name), lower) {
		return true
	}
	for _, part := range strings.Fields(strings.ToLower(i.Name)) {
		if strings.HasPrefix(part, lower) {
			return true
		}
	}
	for _, kw := range i.Keywords {
		if strings.HasPrefix(strings.ToLower(kw), lower) {
			return true
		}
	}
	return false
}

// OwnerCount returns how many of the three ownership fields are set. A valid
// placed item always reports exactly 1.
func (i *Item) OwnerCount() int {
	n := 0
	if i.RoomID != "" {
		n++
	}
	if i.PlayerID != "" {
		n++
	}
	if i.ContainerID != "" {
		n++
	}
	return n
}

// clearOwner detaches the item from whatever holds it.
func (i *Item) clearOwner() {
	i.RoomID = ""
	i.PlayerID = ""
	i.ContainerID = ""
	i.EquippedSlot = ""
}
