package item

// Durability values follow the vanilla tool and armor tiers.
var (
	armorMaterials = []struct {
		name       string
		display    string
		durability [4]int // helmet, chestplate, leggings, boots
	}{
		{"leather", "Leather", [4]int{55, 80, 75, 65}},
		{"chainmail", "Chainmail", [4]int{165, 240, 225, 195}},
		{"iron", "Iron", [4]int{165, 240, 225, 195}},
		{"golden", "Golden", [4]int{77, 112, 105, 91}},
		{"diamond", "Diamond", [4]int{363, 528, 495, 429}},
		{"netherite", "Netherite", [4]int{407, 592, 555, 481}},
	}
	armorPieces = [4]struct{ name, display string }{
		{"helmet", "Helmet"},
		{"chestplate", "Chestplate"},
		{"leggings", "Leggings"},
		{"boots", "Boots"},
	}
	toolTiers = []struct {
		name       string
		display    string
		durability int
	}{
		{"wooden", "Wooden", 59},
		{"stone", "Stone", 131},
		{"iron", "Iron", 250},
		{"golden", "Golden", 32},
		{"diamond", "Diamond", 1561},
		{"netherite", "Netherite", 2031},
	}
	toolKinds = []struct{ name, display string }{
		{"sword", "Sword"},
		{"axe", "Axe"},
		{"pickaxe", "Pickaxe"},
		{"shovel", "Shovel"},
	}
	miscItems = []struct {
		t       Type
		aliases []string
	}{
		{Type{Name: "bow", DisplayName: "Bow", MaxStackSize: 1, MaxDurability: 384}, nil},
		{Type{Name: "crossbow", DisplayName: "Crossbow", MaxStackSize: 1, MaxDurability: 465}, nil},
		{Type{Name: "shield", DisplayName: "Shield", MaxStackSize: 1, MaxDurability: 336}, nil},
		{Type{Name: "fishing_rod", DisplayName: "Fishing Rod", MaxStackSize: 1, MaxDurability: 384}, []string{"rod"}},
		{Type{Name: "arrow", DisplayName: "Arrow", MaxStackSize: 64}, nil},
		{Type{Name: "snowball", DisplayName: "Snowball", MaxStackSize: 16}, nil},
		{Type{Name: "ender_pearl", DisplayName: "Ender Pearl", MaxStackSize: 16}, []string{"pearl"}},
		{Type{Name: "golden_apple", DisplayName: "Golden Apple", MaxStackSize: 64}, []string{"gapple"}},
		{Type{Name: "enchanted_golden_apple", DisplayName: "Enchanted Golden Apple", MaxStackSize: 64}, []string{"god_apple", "notch_apple"}},
		{Type{Name: "steak", DisplayName: "Steak", MaxStackSize: 64}, []string{"cooked_beef"}},
		{Type{Name: "bread", DisplayName: "Bread", MaxStackSize: 64}, nil},
		{Type{Name: "totem", DisplayName: "Totem of Undying", MaxStackSize: 1}, []string{"totem_of_undying"}},
		{Type{Name: "cobweb", DisplayName: "Cobweb", MaxStackSize: 64}, []string{"web"}},
		{Type{Name: "oak_planks", DisplayName: "Oak Planks", MaxStackSize: 64}, []string{"planks", "wood"}},
		{Type{Name: "water_bucket", DisplayName: "Water Bucket", MaxStackSize: 1}, nil},
		{Type{Name: "lava_bucket", DisplayName: "Lava Bucket", MaxStackSize: 1}, nil},
		{Type{Name: "flint_and_steel", DisplayName: "Flint and Steel", MaxStackSize: 1, MaxDurability: 64}, nil},
	}
	enchantmentCatalog = []struct {
		e       EnchantmentType
		aliases []string
	}{
		{EnchantmentType{Name: "protection", DisplayName: "Protection", MaxLevel: 4}, nil},
		{EnchantmentType{Name: "fire_protection", DisplayName: "Fire Protection", MaxLevel: 4}, nil},
		{EnchantmentType{Name: "feather_falling", DisplayName: "Feather Falling", MaxLevel: 4}, nil},
		{EnchantmentType{Name: "blast_protection", DisplayName: "Blast Protection", MaxLevel: 4}, nil},
		{EnchantmentType{Name: "projectile_protection", DisplayName: "Projectile Protection", MaxLevel: 4}, nil},
		{EnchantmentType{Name: "thorns", DisplayName: "Thorns", MaxLevel: 3}, nil},
		{EnchantmentType{Name: "respiration", DisplayName: "Respiration", MaxLevel: 3}, nil},
		{EnchantmentType{Name: "depth_strider", DisplayName: "Depth Strider", MaxLevel: 3}, nil},
		{EnchantmentType{Name: "aqua_affinity", DisplayName: "Aqua Affinity", MaxLevel: 1}, nil},
		{EnchantmentType{Name: "sharpness", DisplayName: "Sharpness", MaxLevel: 5}, nil},
		{EnchantmentType{Name: "smite", DisplayName: "Smite", MaxLevel: 5}, nil},
		{EnchantmentType{Name: "bane_of_arthropods", DisplayName: "Bane of Arthropods", MaxLevel: 5}, nil},
		{EnchantmentType{Name: "knockback", DisplayName: "Knockback", MaxLevel: 2}, nil},
		{EnchantmentType{Name: "fire_aspect", DisplayName: "Fire Aspect", MaxLevel: 2}, nil},
		{EnchantmentType{Name: "looting", DisplayName: "Looting", MaxLevel: 3}, nil},
		{EnchantmentType{Name: "efficiency", DisplayName: "Efficiency", MaxLevel: 5}, nil},
		{EnchantmentType{Name: "silk_touch", DisplayName: "Silk Touch", MaxLevel: 1}, nil},
		{EnchantmentType{Name: "unbreaking", DisplayName: "Unbreaking", MaxLevel: 3}, nil},
		{EnchantmentType{Name: "fortune", DisplayName: "Fortune", MaxLevel: 3}, nil},
		{EnchantmentType{Name: "power", DisplayName: "Power", MaxLevel: 5}, nil},
		{EnchantmentType{Name: "punch", DisplayName: "Punch", MaxLevel: 2}, nil},
		{EnchantmentType{Name: "flame", DisplayName: "Flame", MaxLevel: 1}, nil},
		{EnchantmentType{Name: "infinity", DisplayName: "Infinity", MaxLevel: 1}, nil},
		{EnchantmentType{Name: "mending", DisplayName: "Mending", MaxLevel: 1}, nil},
		{EnchantmentType{Name: "frost_walker", DisplayName: "Frost Walker", MaxLevel: 2}, nil},
		{EnchantmentType{Name: "swift_sneak", DisplayName: "Swift Sneak", MaxLevel: 3}, nil},
	}
)

// DefaultRegistry returns a registry preloaded with the arena catalogue.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, material := range armorMaterials {
		for i, piece := range armorPieces {
			mustRegisterItem(r, Type{
				Name:          material.name + "_" + piece.name,
				DisplayName:   material.display + " " + piece.display,
				MaxStackSize:  1,
				MaxDurability: material.durability[i],
			})
		}
	}
	for _, tier := range toolTiers {
		for _, kind := range toolKinds {
			mustRegisterItem(r, Type{
				Name:          tier.name + "_" + kind.name,
				DisplayName:   tier.display + " " + kind.display,
				MaxStackSize:  1,
				MaxDurability: tier.durability,
			})
		}
	}
	for _, misc := range miscItems {
		mustRegisterItem(r, misc.t, misc.aliases...)
	}
	for _, entry := range enchantmentCatalog {
		if err := r.RegisterEnchantment(entry.e, entry.aliases...); err != nil {
			panic(err)
		}
	}
	return r
}

func mustRegisterItem(r *Registry, t Type, aliases ...string) {
	if err := r.RegisterItem(t, aliases...); err != nil {
		panic(err)
	}
}
