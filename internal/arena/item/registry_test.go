package item

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Diamond Sword":            "diamond_sword",
		"  minecraft:IRON_HELMET ": "iron_helmet",
		"bane-of-arthropods":       "bane_of_arthropods",
		"":                         "",
	}
	for in, want := range cases {
		require.Equal(t, want, CanonicalName(in), "input %q", in)
	}
}

func TestDefaultRegistryResolvesAliases(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()

	sword, ok := r.ResolveItem("Diamond Sword")
	require.True(t, ok)
	require.Equal(t, "diamond_sword", sword.Name)
	require.True(t, sword.Durable())

	apple, ok := r.ResolveItem("gapple")
	require.True(t, ok)
	require.Equal(t, "golden_apple", apple.Name)
	require.False(t, apple.Durable())

	sharpness, ok := r.ResolveEnchantment("SHARPNESS")
	require.True(t, ok)
	require.Equal(t, "sharpness", sharpness.Name)

	_, ok = r.ResolveItem("laser_rifle")
	require.False(t, ok)
	_, ok = r.ResolveEnchantment("vampirism")
	require.False(t, ok)
}

func TestRegisterItemRejectsConflictingAlias(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	require.NoError(t, r.RegisterItem(Type{Name: "stick", MaxStackSize: 64}, "twig"))
	require.Error(t, r.RegisterItem(Type{Name: "branch", MaxStackSize: 64}, "twig"))
	require.NoError(t, r.RegisterItem(Type{Name: "stick", MaxStackSize: 64}, "twig"))
}

func TestRegisterItemValidates(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	require.Error(t, r.RegisterItem(Type{Name: " ", MaxStackSize: 1}))
	require.Error(t, r.RegisterItem(Type{Name: "air"}))
	require.Error(t, r.RegisterEnchantment(EnchantmentType{}))
}
