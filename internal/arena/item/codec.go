package item

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record field names in the kit document.
const (
	FieldName             = "name"
	FieldCustomName       = "custom_name"
	FieldLore             = "lore"
	FieldCount            = "count"
	FieldEnchantments     = "enchantments"
	FieldEnchantmentName  = "name"
	FieldEnchantmentLevel = "level"
)

// MaxEnchantmentLevel bounds persisted enchantment levels.
const MaxEnchantmentLevel = math.MaxInt16

// Record is the persisted shape of one item stack.
type Record map[string]any

// Codec converts between records and descriptors. It is pure and safe for
// concurrent use as long as its resolvers are.
type Codec struct {
	items        ItemResolver
	enchantments EnchantmentResolver
}

// NewCodec returns a codec backed by the given resolvers.
func NewCodec(items ItemResolver, enchantments EnchantmentResolver) *Codec {
	return &Codec{items: items, enchantments: enchantments}
}

// Decode validates a record and converts it into a descriptor. On failure it
// returns a *ValidationError naming the offending field and no descriptor.
func (c *Codec) Decode(record Record) (Descriptor, error) {
	if record == nil {
		return Descriptor{}, invalidField("", "must be an object")
	}

	rawName, ok := record[FieldName]
	if !ok {
		return Descriptor{}, invalidField(FieldName, "is required")
	}
	name, ok := rawName.(string)
	if !ok {
		return Descriptor{}, invalidField(FieldName, "must be a string")
	}
	itemType, ok := c.items.ResolveItem(name)
	if !ok {
		return Descriptor{}, invalidField(FieldName, "is not a valid item name")
	}

	d := Descriptor{Type: itemType}

	if raw, ok := record[FieldCustomName]; ok && raw != nil {
		customName, ok := raw.(string)
		if !ok {
			return Descriptor{}, invalidField(FieldCustomName, "must be a string")
		}
		d.CustomName = customName
	}

	lore, err := decodeLore(record[FieldLore])
	if err != nil {
		return Descriptor{}, err
	}
	d.Lore = lore

	rawCount, ok := record[FieldCount]
	if !ok {
		return Descriptor{}, invalidField(FieldCount, "is required")
	}
	count, ok := asInt(rawCount)
	if !ok {
		return Descriptor{}, invalidField(FieldCount, "must be an integer")
	}
	if count < 1 || count > itemType.MaxStackSize {
		return Descriptor{}, invalidField(FieldCount, fmt.Sprintf("must be between 1 and %d", itemType.MaxStackSize))
	}
	d.Count = count

	enchantments, err := c.decodeEnchantments(record[FieldEnchantments])
	if err != nil {
		return Descriptor{}, err
	}
	d.Enchantments = enchantments
	return d, nil
}

// Encode converts a descriptor into its persisted record. Type and
// enchantment names are written in canonical form.
func (c *Codec) Encode(d Descriptor) Record {
	lore := make([]any, 0, len(d.Lore))
	for _, line := range d.Lore {
		lore = append(lore, line)
	}
	enchantments := make([]any, 0, len(d.Enchantments))
	for _, enchantment := range d.Enchantments {
		name := enchantment.Type.Name
		if resolved, ok := c.enchantments.ResolveEnchantment(name); ok {
			name = resolved.Name
		}
		enchantments = append(enchantments, map[string]any{
			FieldEnchantmentName:  name,
			FieldEnchantmentLevel: enchantment.Level,
		})
	}

	name := d.Type.Name
	if resolved, ok := c.items.ResolveItem(name); ok {
		name = resolved.Name
	}
	return Record{
		FieldName:         name,
		FieldCustomName:   d.CustomName,
		FieldLore:         lore,
		FieldCount:        d.Count,
		FieldEnchantments: enchantments,
	}
}

func decodeLore(raw any) ([]string, error) {
	switch lines := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		if len(lines) == 0 {
			return nil, nil
		}
		return append([]string(nil), lines...), nil
	case []any:
		if len(lines) == 0 {
			return nil, nil
		}
		out := make([]string, 0, len(lines))
		for i, line := range lines {
			text, ok := line.(string)
			if !ok {
				return nil, invalidField(FieldLore+"."+strconv.Itoa(i), "must be a string")
			}
			out = append(out, text)
		}
		return out, nil
	default:
		return nil, invalidField(FieldLore, "must be a list of strings")
	}
}

func (c *Codec) decodeEnchantments(raw any) ([]Enchantment, error) {
	var entries []any
	switch list := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		entries = list
	case []map[string]any:
		for _, entry := range list {
			entries = append(entries, entry)
		}
	default:
		return nil, invalidField(FieldEnchantments, "must be a list")
	}
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]Enchantment, 0, len(entries))
	for i, entry := range entries {
		field := FieldEnchantments + "." + strconv.Itoa(i)
		object, ok := entry.(map[string]any)
		if !ok {
			return nil, invalidField(field, "must be an object")
		}
		name, ok := object[FieldEnchantmentName].(string)
		if !ok {
			return nil, invalidField(field+"."+FieldEnchantmentName, "must be a string")
		}
		enchantmentType, ok := c.enchantments.ResolveEnchantment(name)
		if !ok {
			return nil, invalidField(field+"."+FieldEnchantmentName, "is not a valid enchantment")
		}
		level, ok := asInt(object[FieldEnchantmentLevel])
		if !ok {
			return nil, invalidField(field+"."+FieldEnchantmentLevel, "must be an integer")
		}
		if level < 1 || level > MaxEnchantmentLevel {
			return nil, invalidField(field+"."+FieldEnchantmentLevel, fmt.Sprintf("must be between 1 and %d", MaxEnchantmentLevel))
		}
		out = append(out, Enchantment{Type: enchantmentType, Level: level})
	}
	return out, nil
}

// asInt accepts the integer shapes a record can carry: Go integers, JSON
// numbers, and floats with no fractional part.
func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return floatToInt(f)
		}
		return asInt(n)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
