package main

import (
	"testing"
	"time"
)

func testNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerateFieldComposition(t *testing.T) {
	cfg := testConfig()
	f := newItemField(cfg)
	f.Generate()

	if f.Count() != cfg.TotalPoints {
		t.Fatalf("generated %d items, want %d", f.Count(), cfg.TotalPoints)
	}
	for _, special := range []ItemType{ItemNegative, ItemBonus, ItemTrap} {
		if n := f.CountType(special); n != 1 {
			t.Errorf("%s count = %d, want exactly 1", special, n)
		}
	}
	if n := f.CountType(ItemNormal); n != cfg.TotalPoints-3 {
		t.Errorf("normal count = %d, want %d", n, cfg.TotalPoints-3)
	}
	for _, it := range f.items {
		if it.X < 0 || it.X > cfg.FieldWidth || it.Y < 0 || it.Y > cfg.FieldHeight {
			t.Errorf("item %d at (%v,%v) outside field", it.ID, it.X, it.Y)
		}
	}
}

func TestCollectScoring(t *testing.T) {
	cases := []struct {
		itemType  ItemType
		before    int
		after     int
	}{
		{ItemNormal, 0, 1},
		{ItemBonus, 0, 5},
		{ItemTrap, 10, 7},
		{ItemTrap, 1, 0}, // floored at zero
		{ItemNegative, 4, 4},
	}
	for _, tc := range cases {
		f := newItemField(testConfig())
		it := f.spawn(tc.itemType)
		p := &Player{ID: "p1", Score: tc.before}

		got, ok := f.Collect(it.ID, p, testNow())
		if !ok || got != tc.itemType {
			t.Fatalf("Collect(%s) = (%v, %v)", tc.itemType, got, ok)
		}
		if p.Score != tc.after {
			t.Errorf("%s: score %d -> %d, want %d", tc.itemType, tc.before, p.Score, tc.after)
		}
	}
}

func TestCollectNegativeSlowsAndRespawns(t *testing.T) {
	cfg := testConfig()
	f := newItemField(cfg)
	it := f.spawn(ItemNegative)
	p := &Player{ID: "p1"}
	now := testNow()

	if _, ok := f.Collect(it.ID, p, now); !ok {
		t.Fatal("collect failed")
	}
	if want := now.Add(cfg.SlowDuration); !p.SlowUntil.Equal(want) {
		t.Errorf("SlowUntil = %v, want %v", p.SlowUntil, want)
	}
	// Exactly one hazard stays live.
	if n := f.CountType(ItemNegative); n != 1 {
		t.Errorf("negative count after collect = %d, want 1", n)
	}
}

func TestCollectNormalRefillsWhenLow(t *testing.T) {
	cfg := testConfig()
	f := newItemField(cfg)
	for i := 0; i < cfg.NormalRefillBelow; i++ {
		f.spawn(ItemNormal)
	}
	p := &Player{ID: "p1"}

	// Drop under the threshold: the batch tops the field back up.
	var anyID int
	for id := range f.items {
		anyID = id
		break
	}
	f.Collect(anyID, p, testNow())
	want := cfg.NormalRefillBelow - 1 + cfg.NormalRefillBatch
	if n := f.CountType(ItemNormal); n != want {
		t.Errorf("normal count after refill = %d, want %d", n, want)
	}
}

func TestCollectTwiceIsNoOp(t *testing.T) {
	f := newItemField(testConfig())
	it := f.spawn(ItemBonus)
	p := &Player{ID: "p1"}

	if _, ok := f.Collect(it.ID, p, testNow()); !ok {
		t.Fatal("first collect should succeed")
	}
	if _, ok := f.Collect(it.ID, p, testNow()); ok {
		t.Error("second collect of the same id should be a no-op")
	}
	if p.Score != 5 {
		t.Errorf("score = %d, want 5 (awarded once)", p.Score)
	}
}

func TestCollectUnknownID(t *testing.T) {
	f := newItemField(testConfig())
	p := &Player{ID: "p1"}
	if _, ok := f.Collect(12345, p, testNow()); ok {
		t.Error("collecting an unknown id should be a no-op")
	}
	if p.Score != 0 {
		t.Errorf("score = %d, want 0", p.Score)
	}
}
