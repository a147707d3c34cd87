package main

import (
	"sort"
	"time"
)

// ItemType tags a coin's effect on collection.
type ItemType string

const (
	ItemNormal   ItemType = "normal"   // +1
	ItemBonus    ItemType = "bonus"    // +5
	ItemTrap     ItemType = "trap"     // -3, floored at 0
	ItemNegative ItemType = "negative" // slow debuff, respawned 1:1
)

// Item is one collectible coin. Ids are unique within a generation.
type Item struct {
	ID   int
	X, Y float64
	Type ItemType
}

// itemField owns the live coins of one round and their replenishment
// rules: exactly one negative hazard stays live, and normal coins are
// topped up in batches when running low.
type itemField struct {
	cfg    *Config
	items  map[int]*Item
	nextID int
}

func newItemField(cfg *Config) *itemField {
	return &itemField{cfg: cfg, items: make(map[int]*Item)}
}

// Generate populates a fresh field: TotalPoints normal coins, then
// three distinct ones retyped to negative, bonus and trap.
func (f *itemField) Generate() {
	f.items = make(map[int]*Item, f.cfg.TotalPoints)
	ids := make([]int, 0, f.cfg.TotalPoints)
	for i := 0; i < f.cfg.TotalPoints; i++ {
		it := f.spawn(ItemNormal)
		ids = append(ids, it.ID)
	}
	if len(ids) < 3 {
		return
	}
	special := [3]ItemType{ItemNegative, ItemBonus, ItemTrap}
	for i, t := range special {
		// Pick from the not-yet-retyped tail so the three stay distinct.
		j := i + int(randFloat()*float64(len(ids)-i))
		if j >= len(ids) {
			j = len(ids) - 1
		}
		ids[i], ids[j] = ids[j], ids[i]
		f.items[ids[i]].Type = t
	}
}

// spawn places a new coin at a random spot inside the field margins.
func (f *itemField) spawn(t ItemType) *Item {
	r := f.cfg.PointRadius
	it := &Item{
		ID:   f.nextID,
		X:    r + randFloat()*(f.cfg.FieldWidth-2*r),
		Y:    r + randFloat()*(f.cfg.FieldHeight-2*r),
		Type: t,
	}
	f.nextID++
	f.items[it.ID] = it
	return it
}

// Collect applies the effect of coin id to p. Returns the coin's type
// and false when the id is already gone, which resolves
// double-collection races in favor of the first message.
func (f *itemField) Collect(id int, p *Player, now time.Time) (ItemType, bool) {
	it, ok := f.items[id]
	if !ok {
		return "", false
	}
	delete(f.items, id)

	switch it.Type {
	case ItemBonus:
		p.Score += 5
	case ItemTrap:
		p.Score -= 3
		if p.Score < 0 {
			p.Score = 0
		}
	case ItemNegative:
		p.SlowUntil = now.Add(f.cfg.SlowDuration)
		f.spawn(ItemNegative)
	default:
		p.Score++
		if f.CountType(ItemNormal) < f.cfg.NormalRefillBelow {
			for i := 0; i < f.cfg.NormalRefillBatch; i++ {
				f.spawn(ItemNormal)
			}
		}
	}
	return it.Type, true
}

func (f *itemField) CountType(t ItemType) int {
	n := 0
	for _, it := range f.items {
		if it.Type == t {
			n++
		}
	}
	return n
}

func (f *itemField) Count() int { return len(f.items) }

func (f *itemField) Clear() {
	f.items = make(map[int]*Item)
}

// States returns the broadcastable coin list, ordered by id so
// snapshots are deterministic.
func (f *itemField) States() []ItemState {
	out := make([]ItemState, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, ItemState{ID: it.ID, X: it.X, Y: it.Y, Type: string(it.Type)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
