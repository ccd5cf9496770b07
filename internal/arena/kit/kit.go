// Package kit owns the arena loadout: three slot sets loaded from, and saved
// to, the kit document.
package kit

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"sync"

	"github.com/louisbranch/ffa-arena/internal/arena/item"
	"github.com/rs/zerolog"
)

// Category names one inventory of the kit. The values are the top-level keys
// of the kit document.
type Category string

const (
	CategoryInventory Category = "inventory"
	CategoryArmor     Category = "armorInventory"
	CategoryOffHand   Category = "offHandInventory"
)

// Categories lists every category in load order.
func Categories() []Category {
	return []Category{CategoryInventory, CategoryArmor, CategoryOffHand}
}

// Valid reports whether c is one of the kit categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInventory, CategoryArmor, CategoryOffHand:
		return true
	default:
		return false
	}
}

// lock returns the presentational lock applied to items of the category.
func (c Category) lock() item.Lock {
	if c == CategoryArmor {
		return item.LockInSlot
	}
	return item.LockInInventory
}

// SlotSet maps a slot index to the item stored there. Missing indexes are
// empty slots.
type SlotSet map[int]item.Descriptor

// Clone returns a deep copy of the set.
func (s SlotSet) Clone() SlotSet {
	out := make(SlotSet, len(s))
	for slot, d := range s {
		out[slot] = d.Clone()
	}
	return out
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save reporting.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds the loaded kit.
type Store struct {
	doc    Document
	codec  *item.Codec
	logger zerolog.Logger

	mu    sync.RWMutex
	slots map[Category]SlotSet
}

// NewStore returns an empty store over doc. Call Load before use.
func NewStore(doc Document, codec *item.Codec, opts ...Option) *Store {
	s := &Store{
		doc:    doc,
		codec:  codec,
		logger: zerolog.Nop(),
		slots:  emptySlots(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func emptySlots() map[Category]SlotSet {
	slots := make(map[Category]SlotSet, 3)
	for _, c := range Categories() {
		slots[c] = SlotSet{}
	}
	return slots
}

// Load reads and validates every category. Either all three categories are
// replaced or, on the first *item.ValidationError, none is. A failed first
// load leaves every category empty; a failed reload keeps the previously
// loaded kit intact rather than clearing it.
func (s *Store) Load() error {
	staged := emptySlots()
	for _, c := range Categories() {
		set, err := s.loadCategory(c)
		if err != nil {
			return err
		}
		staged[c] = set
	}

	s.mu.Lock()
	s.slots = staged
	s.mu.Unlock()

	s.logger.Info().
		Int(string(CategoryInventory), len(staged[CategoryInventory])).
		Int(string(CategoryArmor), len(staged[CategoryArmor])).
		Int(string(CategoryOffHand), len(staged[CategoryOffHand])).
		Msg("kit loaded")
	return nil
}

func (s *Store) loadCategory(c Category) (SlotSet, error) {
	raw, _ := s.doc.Category(c)
	records, err := slotRecords(c, raw)
	if err != nil {
		return nil, err
	}

	slots := make([]int, 0, len(records))
	for slot := range records {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	set := make(SlotSet, len(records))
	for _, slot := range slots {
		d, err := s.codec.Decode(records[slot])
		if err != nil {
			var verr *item.ValidationError
			if errors.As(err, &verr) {
				return nil, verr.At(string(c), slot)
			}
			return nil, fmt.Errorf("decode %s.%d: %w", c, slot, err)
		}
		set[slot] = applyLoadTransforms(c, d)
	}
	return set, nil
}

// slotRecords accepts the two shapes a category can take in the document: an
// object keyed by decimal slot index, or a list whose positions are slots.
// Null entries are empty slots.
func slotRecords(c Category, raw any) (map[int]item.Record, error) {
	invalid := func(slot int, reason string) error {
		return (&item.ValidationError{Slot: item.NoSlot, Reason: reason}).At(string(c), slot)
	}

	records := map[int]item.Record{}
	switch entries := raw.(type) {
	case nil:
		return records, nil
	case map[string]any:
		for key, value := range entries {
			slot, err := strconv.Atoi(key)
			if err != nil || slot < 0 {
				return nil, invalid(item.NoSlot, fmt.Sprintf("has invalid slot index %q", key))
			}
			if value == nil {
				continue
			}
			record, ok := value.(map[string]any)
			if !ok {
				return nil, invalid(slot, "must be an object")
			}
			records[slot] = item.Record(record)
		}
	case []any:
		for slot, value := range entries {
			if value == nil {
				continue
			}
			record, ok := value.(map[string]any)
			if !ok {
				return nil, invalid(slot, "must be an object")
			}
			records[slot] = item.Record(record)
		}
	default:
		return nil, invalid(item.NoSlot, "must be a mapping of slot index to item")
	}
	return records, nil
}

func applyLoadTransforms(c Category, d item.Descriptor) item.Descriptor {
	d.Lock = c.lock()
	if d.Type.Durable() {
		d.Unbreakable = true
	}
	return d
}

// Save encodes set and overwrites the category in the document. The
// in-memory category is replaced by the saved items once the document
// accepted them.
func (s *Store) Save(c Category, set SlotSet) error {
	if !c.Valid() {
		return fmt.Errorf("unknown kit category %q", c)
	}
	entries := make(map[string]item.Record, len(set))
	for slot, d := range set {
		if slot < 0 {
			return fmt.Errorf("save %s: slot index %d is negative", c, slot)
		}
		entries[strconv.Itoa(slot)] = s.codec.Encode(d)
	}
	if err := s.doc.SetCategory(c, entries); err != nil {
		return fmt.Errorf("save %s: %w", c, err)
	}

	saved := make(SlotSet, len(set))
	for slot, d := range set {
		saved[slot] = applyLoadTransforms(c, d.Clone())
	}
	s.mu.Lock()
	next := maps.Clone(s.slots)
	next[c] = saved
	s.slots = next
	s.mu.Unlock()

	s.logger.Debug().Str("category", string(c)).Int("items", len(saved)).Msg("kit saved")
	return nil
}

// Slots returns a copy of the in-memory set for c.
func (s *Store) Slots(c Category) SlotSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[c].Clone()
}

// Inventory returns the main inventory items.
func (s *Store) Inventory() SlotSet { return s.Slots(CategoryInventory) }

// ArmorInventory returns the armor items.
func (s *Store) ArmorInventory() SlotSet { return s.Slots(CategoryArmor) }

// OffHandInventory returns the off-hand items.
func (s *Store) OffHandInventory() SlotSet { return s.Slots(CategoryOffHand) }
