package item

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// ItemResolver maps a textual item name to a known item type.
type ItemResolver interface {
	ResolveItem(name string) (Type, bool)
}

// EnchantmentResolver maps a textual enchantment name to a known type.
type EnchantmentResolver interface {
	ResolveEnchantment(name string) (EnchantmentType, bool)
}

var keyReplacer = strings.NewReplacer(" ", "_", "-", "_")

// CanonicalName folds a user supplied name into the lookup form used by the
// registry: case folded, trimmed, without the "minecraft:" namespace, with
// spaces and dashes turned into underscores.
func CanonicalName(name string) string {
	key := cases.Fold().String(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "minecraft:")
	return keyReplacer.Replace(key)
}

// Registry resolves item and enchantment names, including aliases.
type Registry struct {
	mu           sync.RWMutex
	items        map[string]Type
	enchantments map[string]EnchantmentType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items:        map[string]Type{},
		enchantments: map[string]EnchantmentType{},
	}
}

// RegisterItem adds an item type. The canonical name, the display name and
// every alias resolve to it.
func (r *Registry) RegisterItem(t Type, aliases ...string) error {
	t.Name = CanonicalName(t.Name)
	if t.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if t.MaxStackSize <= 0 {
		return fmt.Errorf("item %s: max stack size must be positive", t.Name)
	}
	keys := collectKeys(t.Name, t.DisplayName, aliases)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		if existing, ok := r.items[key]; ok && existing.Name != t.Name {
			return fmt.Errorf("item alias %q already maps to %s", key, existing.Name)
		}
	}
	for _, key := range keys {
		r.items[key] = t
	}
	return nil
}

// RegisterEnchantment adds an enchantment type and its aliases.
func (r *Registry) RegisterEnchantment(e EnchantmentType, aliases ...string) error {
	e.Name = CanonicalName(e.Name)
	if e.Name == "" {
		return fmt.Errorf("enchantment name is required")
	}
	keys := collectKeys(e.Name, e.DisplayName, aliases)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		if existing, ok := r.enchantments[key]; ok && existing.Name != e.Name {
			return fmt.Errorf("enchantment alias %q already maps to %s", key, existing.Name)
		}
	}
	for _, key := range keys {
		r.enchantments[key] = e
	}
	return nil
}

// ResolveItem implements ItemResolver.
func (r *Registry) ResolveItem(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[CanonicalName(name)]
	return t, ok
}

// ResolveEnchantment implements EnchantmentResolver.
func (r *Registry) ResolveEnchantment(name string) (EnchantmentType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enchantments[CanonicalName(name)]
	return e, ok
}

func collectKeys(name, displayName string, aliases []string) []string {
	keys := []string{name}
	for _, alias := range append([]string{displayName}, aliases...) {
		if key := CanonicalName(alias); key != "" && key != name {
			keys = append(keys, key)
		}
	}
	return keys
}
