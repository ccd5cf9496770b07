package item

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
	"github.com/stretchr/testify/require"
)

func newTestCodec() (*Codec, *Registry) {
	r := DefaultRegistry()
	return NewCodec(r, r), r
}

func mustItem(t *testing.T, r *Registry, name string) Type {
	t.Helper()
	it, ok := r.ResolveItem(name)
	require.True(t, ok, "item %s", name)
	return it
}

func mustEnchantment(t *testing.T, r *Registry, name string) EnchantmentType {
	t.Helper()
	e, ok := r.ResolveEnchantment(name)
	require.True(t, ok, "enchantment %s", name)
	return e
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()
	codec, r := newTestCodec()

	descriptors := []Descriptor{
		{Type: mustItem(t, r, "diamond_sword"), Count: 1},
		{
			Type:       mustItem(t, r, "diamond_chestplate"),
			CustomName: "Bulwark",
			Lore:       []string{"line one", "line two"},
			Count:      1,
			Enchantments: []Enchantment{
				{Type: mustEnchantment(t, r, "protection"), Level: 4},
				{Type: mustEnchantment(t, r, "unbreaking"), Level: 3},
			},
		},
		{Type: mustItem(t, r, "golden_apple"), CustomName: "Snack", Count: 64},
	}

	for _, d := range descriptors {
		got, err := codec.Decode(codec.Encode(d))
		require.NoError(t, err)
		require.Equal(t, d, got)
	}
}

func TestCodecRoundTripNormalizesEmptyLists(t *testing.T) {
	t.Parallel()
	codec, r := newTestCodec()

	d := Descriptor{
		Type:         mustItem(t, r, "diamond_sword"),
		Lore:         []string{},
		Count:        1,
		Enchantments: []Enchantment{},
	}
	got, err := codec.Decode(codec.Encode(d))
	require.NoError(t, err)
	require.Nil(t, got.Lore)
	require.Nil(t, got.Enchantments)
	require.Equal(t, d.Clone(), got)
}

func TestCodecRoundTripThroughJSON(t *testing.T) {
	t.Parallel()
	codec, r := newTestCodec()

	d := Descriptor{
		Type:         mustItem(t, r, "bow"),
		Lore:         []string{"twang"},
		Count:        1,
		Enchantments: []Enchantment{{Type: mustEnchantment(t, r, "power"), Level: 5}},
	}
	payload, err := json.Marshal(codec.Encode(d))
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	var record Record
	require.NoError(t, dec.Decode(&record))

	got, err := codec.Decode(record)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestEncodeUsesCanonicalNames(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec()

	record := codec.Encode(Descriptor{
		Type:         Type{Name: "Diamond Sword"},
		Count:        1,
		Enchantments: []Enchantment{{Type: EnchantmentType{Name: "Fire Aspect"}, Level: 2}},
	})
	require.Equal(t, "diamond_sword", record[FieldName])
	enchantments := record[FieldEnchantments].([]any)
	require.Equal(t, "fire_aspect", enchantments[0].(map[string]any)[FieldEnchantmentName])
}

func TestEncodeDropsRuntimeFlags(t *testing.T) {
	t.Parallel()
	codec, r := newTestCodec()

	d := Descriptor{Type: mustItem(t, r, "iron_sword"), Count: 1, Lock: LockInSlot, Unbreakable: true}
	got, err := codec.Decode(codec.Encode(d))
	require.NoError(t, err)
	require.Equal(t, d.Persisted(), got)
}

func TestDecodeDefaultsOptionalFields(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec()

	got, err := codec.Decode(Record{FieldName: "Ender Pearl", FieldCount: json.Number("16")})
	require.NoError(t, err)
	require.Equal(t, "ender_pearl", got.Name())
	require.Empty(t, got.CustomName)
	require.Nil(t, got.Lore)
	require.Nil(t, got.Enchantments)
	require.Equal(t, 16, got.Count)
}

func TestDecodeValidationErrors(t *testing.T) {
	t.Parallel()
	codec, _ := newTestCodec()

	valid := func() Record {
		return Record{
			FieldName:       "diamond_sword",
			FieldCustomName: "",
			FieldLore:       []any{},
			FieldCount:      1,
			FieldEnchantments: []any{
				map[string]any{FieldEnchantmentName: "sharpness", FieldEnchantmentLevel: 5},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(Record)
		field  string
	}{
		{"missing name", func(r Record) { delete(r, FieldName) }, "name"},
		{"name not string", func(r Record) { r[FieldName] = 7 }, "name"},
		{"unknown item", func(r Record) { r[FieldName] = "laser_rifle" }, "name"},
		{"custom name not string", func(r Record) { r[FieldCustomName] = true }, "custom_name"},
		{"lore not list", func(r Record) { r[FieldLore] = "text" }, "lore"},
		{"lore line not string", func(r Record) { r[FieldLore] = []any{"ok", 3} }, "lore.1"},
		{"missing count", func(r Record) { delete(r, FieldCount) }, "count"},
		{"count not integer", func(r Record) { r[FieldCount] = "one" }, "count"},
		{"fractional count", func(r Record) { r[FieldCount] = 1.5 }, "count"},
		{"zero count", func(r Record) { r[FieldCount] = 0 }, "count"},
		{"count above stack size", func(r Record) { r[FieldCount] = 2 }, "count"},
		{"enchantments not list", func(r Record) { r[FieldEnchantments] = map[string]any{} }, "enchantments"},
		{"enchantment not object", func(r Record) { r[FieldEnchantments] = []any{"sharpness"} }, "enchantments.0"},
		{"unknown enchantment", func(r Record) {
			r[FieldEnchantments] = []any{map[string]any{FieldEnchantmentName: "vampirism", FieldEnchantmentLevel: 1}}
		}, "enchantments.0.name"},
		{"enchantment level not integer", func(r Record) {
			r[FieldEnchantments] = []any{map[string]any{FieldEnchantmentName: "sharpness", FieldEnchantmentLevel: "V"}}
		}, "enchantments.0.level"},
		{"enchantment level zero", func(r Record) {
			r[FieldEnchantments] = []any{map[string]any{FieldEnchantmentName: "sharpness", FieldEnchantmentLevel: 0}}
		}, "enchantments.0.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := valid()
			tc.mutate(record)

			got, err := codec.Decode(record)
			require.Error(t, err)
			require.Equal(t, Descriptor{}, got)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
			require.Equal(t, NoSlot, verr.Slot)
			require.ErrorIs(t, err, ErrInvalidEntry)
			require.ErrorIs(t, err, apperrors.New(apperrors.CodeKitInvalidEntry, ""))
		})
	}
}

func TestValidationErrorLocation(t *testing.T) {
	t.Parallel()

	err := invalidField("enchantments.0.name", "is not a valid enchantment").At("inventory", 3)
	require.Equal(t, "inventory.3.enchantments.0.name", err.Path())
	require.Equal(t, `value of "inventory.3.enchantments.0.name" is not a valid enchantment`, err.Error())

	categoryOnly := invalidField("", "must be a mapping of slot to item").At("armorInventory", NoSlot)
	require.Equal(t, "armorInventory", categoryOnly.Path())
}

func TestAsInt(t *testing.T) {
	t.Parallel()

	for _, raw := range []any{3, int64(3), float64(3), json.Number("3"), json.Number("3.0"), uint8(3)} {
		n, ok := asInt(raw)
		require.True(t, ok, "%T", raw)
		require.Equal(t, 3, n)
	}
	for _, raw := range []any{"3", 3.2, json.Number("x"), nil, true} {
		_, ok := asInt(raw)
		require.False(t, ok, "%v", raw)
	}
}
