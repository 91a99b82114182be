package resist

import (
	"maps"

	"github.com/mmynk/raidsplit/internal/models"
)

// Table maps item and enchant ids to the resistance they grant.
// Unknown ids contribute zero.
type Table struct {
	items    map[int]int
	enchants map[int]int
}

// NewTable copies the given lookups into a Table.
func NewTable(items, enchants map[int]int) *Table {
	t := &Table{
		items:    make(map[int]int, len(items)),
		enchants: make(map[int]int, len(enchants)),
	}
	maps.Copy(t.items, items)
	maps.Copy(t.enchants, enchants)
	return t
}

// Merge returns a new Table with other's entries layered over t's.
func (t *Table) Merge(other *Table) *Table {
	merged := NewTable(t.items, t.enchants)
	if other != nil {
		maps.Copy(merged.items, other.items)
		maps.Copy(merged.enchants, other.enchants)
	}
	return merged
}

// Item returns the resistance of an item id.
func (t *Table) Item(id int) int {
	return t.items[id]
}

// Enchant returns the resistance of an enchant id.
func (t *Table) Enchant(id int) int {
	return t.enchants[id]
}

// Len returns the number of item and enchant entries.
func (t *Table) Len() (items, enchants int) {
	return len(t.items), len(t.enchants)
}

// GearResist sums the resistance of every equipped slot.
func (t *Table) GearResist(items []models.EquippedItem) int {
	total := 0
	for _, it := range items {
		total += t.Item(it.ItemID)
		if it.EnchantID != 0 {
			total += t.Enchant(it.EnchantID)
		}
	}
	return total
}
