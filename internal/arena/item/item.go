// Package item models arena item stacks and converts them to and from the
// record shape stored in the kit document.
package item

import "slices"

// Lock controls how the placement layer treats an item rendered in a slot.
// It is runtime state and never persisted.
type Lock uint8

const (
	// LockNone leaves the item free to be dropped or moved.
	LockNone Lock = 0
	// LockInSlot pins the item to its slot.
	LockInSlot Lock = 1
	// LockInInventory keeps the item inside the inventory without pinning the slot.
	LockInInventory Lock = 2
)

// Type identifies a kind of item.
type Type struct {
	// Name is the canonical identifier, e.g. "diamond_sword".
	Name string
	// DisplayName is the human readable name, e.g. "Diamond Sword".
	DisplayName   string
	MaxStackSize  int
	MaxDurability int
}

// Durable reports whether the type wears down with use.
func (t Type) Durable() bool {
	return t.MaxDurability > 0
}

// EnchantmentType identifies a kind of enchantment.
type EnchantmentType struct {
	Name        string
	DisplayName string
	MaxLevel    int
}

// Enchantment is one enchantment applied to an item stack.
type Enchantment struct {
	Type  EnchantmentType
	Level int
}

// Descriptor is the in-memory representation of one item stack. A nil Lore
// or Enchantments slice is the canonical empty value; decoding never yields
// an empty non-nil slice.
type Descriptor struct {
	Type         Type
	CustomName   string
	Lore         []string
	Count        int
	Enchantments []Enchantment

	// Runtime-only flags set by the kit loader.
	Lock        Lock
	Unbreakable bool
}

// Name returns the canonical type name of the stack.
func (d Descriptor) Name() string {
	return d.Type.Name
}

// Clone returns a deep copy of the descriptor with empty lists normalized
// to nil.
func (d Descriptor) Clone() Descriptor {
	d.Lore = cloneOrNil(d.Lore)
	d.Enchantments = cloneOrNil(d.Enchantments)
	return d
}

func cloneOrNil[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// Persisted returns a copy with the runtime-only flags cleared, which is the
// part of the descriptor that survives an encode/decode cycle.
func (d Descriptor) Persisted() Descriptor {
	out := d.Clone()
	out.Lock = LockNone
	out.Unbreakable = false
	return out
}
