package ecs

import (
	"testing"

	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// recordingSystem counts hook calls and pushes a constant force on its target.
type recordingSystem struct {
	component.Destroyable
	target     Entity
	force      vmath.Vector
	applied    int
	bodyLists  int
	lastBodies int
	lastColl   int
}

func (s *recordingSystem) Apply(w *World, dt float64) {
	s.applied++
	if !s.target.Valid() {
		return
	}
	b, ok := w.Body(s.target)
	if !ok {
		s.Destroy()
		return
	}
	b.AddForce(s.force, vmath.Zero)
}

func (s *recordingSystem) OnBodyListUpdate(w *World, bodies []*component.Body) {
	s.bodyLists++
	s.lastBodies = len(bodies)
}

func (s *recordingSystem) OnCollisionListUpdate(w *World, collisions []CollisionInfo) {
	s.lastColl = len(collisions)
}

func TestEntityStoreLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var s entityStore
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, s.create())
			}
			if s.alive() != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, s.alive())
			}
			if c.destroyIndex < 0 {
				return
			}
			dead := ents[c.destroyIndex]
			if !s.destroy(dead) {
				t.Fatalf("destroy should return true for alive entity")
			}
			if s.isAlive(dead) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if s.destroy(dead) {
				t.Fatalf("destroying twice should fail")
			}

			reused := s.create()
			if reused.slot() != dead.slot() {
				t.Fatalf("expected slot %d to be reused, got %d", dead.slot(), reused.slot())
			}
			if reused.gen() == dead.gen() {
				t.Fatalf("reused slot must carry a new epoch")
			}
			if s.isAlive(dead) || !s.isAlive(reused) {
				t.Fatalf("stale handle resolved or fresh handle did not")
			}
		})
	}
}

func TestZeroEntityInvalid(t *testing.T) {
	var s entityStore
	if Entity(0).Valid() || s.isAlive(0) {
		t.Fatalf("zero entity must never resolve")
	}
}

func TestEntityString(t *testing.T) {
	var s entityStore
	first := s.create()
	s.destroy(first)
	second := s.create()
	if first.String() != "1@0" || second.String() != "1@1" {
		t.Fatalf("expected 1@0 and 1@1, got %s and %s", first, second)
	}
}

func TestSparseSetSwapRemove(t *testing.T) {
	var s SparseSet[string]
	s.Set(1, "a")
	s.Set(2, "b")
	s.Set(3, "c")

	if !s.Remove(1) {
		t.Fatalf("remove should succeed")
	}
	if s.Has(1) || s.Len() != 2 {
		t.Fatalf("unexpected set state after remove")
	}
	if v, ok := s.Get(3); !ok || v != "c" {
		t.Fatalf("expected c, got %q ok=%v", v, ok)
	}
	if s.Index(3) != 0 {
		t.Fatalf("last value should fill the hole, got index %d", s.Index(3))
	}
	if s.Remove(1) {
		t.Fatalf("second remove should fail")
	}
	s.Set(2, "B")
	if v, _ := s.Get(2); v != "B" {
		t.Fatalf("update failed, got %q", v)
	}
}

func TestWorldHousekeeping(t *testing.T) {
	w := NewWorld(DefaultConfig())
	a := w.RegisterBody(component.NewDynamicBody(vmath.V(0, 0), 1, 1))
	b := w.RegisterBody(component.NewDynamicBody(vmath.V(10, 0), 1, 1))
	c := w.RegisterBody(component.NewDynamicBody(vmath.V(20, 0), 1, 1))

	sys := &recordingSystem{target: b, force: vmath.V(1, 0)}
	w.RegisterSystem(sys, false)

	w.Update(0.1, 2)
	if sys.bodyLists != 1 || sys.lastBodies != 3 {
		t.Fatalf("expected one body list update with 3 bodies, got %d/%d", sys.bodyLists, sys.lastBodies)
	}

	w.Update(0.1, 2)
	if sys.bodyLists != 1 {
		t.Fatalf("unchanged membership should not resend body list, got %d", sys.bodyLists)
	}

	if !w.DestroyBody(b) {
		t.Fatalf("destroy body failed")
	}
	if _, ok := w.Body(b); ok {
		t.Fatalf("flagged body must not resolve")
	}
	if w.BodyCount() != 3 {
		t.Fatalf("removal must wait for housekeeping")
	}

	w.Update(0.1, 2)
	if w.BodyCount() != 2 || w.IsAlive(b) {
		t.Fatalf("body not swept: count=%d alive=%v", w.BodyCount(), w.IsAlive(b))
	}
	if !w.IsAlive(a) || !w.IsAlive(c) {
		t.Fatalf("survivors lost")
	}
	if sys.bodyLists != 2 || sys.lastBodies != 2 {
		t.Fatalf("expected resync with 2 bodies, got %d/%d", sys.bodyLists, sys.lastBodies)
	}
	if !sys.Destroyed() || w.SystemCount() != 0 {
		t.Fatalf("system should have destroyed itself and been swept, count=%d", w.SystemCount())
	}

	kinds := map[EventKind]int{}
	for _, evt := range w.Events().Drain() {
		kinds[evt.Kind]++
	}
	if kinds[EventBodyRemoved] != 1 || kinds[EventSystemRemoved] != 1 {
		t.Fatalf("unexpected events %v", kinds)
	}
	if w.Frame() != 3 {
		t.Fatalf("expected 3 frames, got %d", w.Frame())
	}
}

func TestWorldEntitiesMatchBodies(t *testing.T) {
	w := NewWorld(DefaultConfig())
	for i := 0; i < 5; i++ {
		w.RegisterBody(component.NewInertBody(vmath.V(float64(i), 0), 0))
	}
	bodies := w.Bodies()
	for i, e := range w.Entities() {
		b, ok := w.Body(e)
		if !ok || b != bodies[i] {
			t.Fatalf("entity %s does not map to body %d", e, i)
		}
	}
}

func TestWorldSubstepsClamp(t *testing.T) {
	w := NewWorld(DefaultConfig())
	e := w.RegisterBody(component.NewDynamicBody(vmath.Zero, 0, 1))
	w.RegisterSystem(&recordingSystem{target: e, force: vmath.V(2, 0)}, true)

	w.Update(1, 0)
	b, _ := w.Body(e)
	if b.Position().X != 1 {
		t.Fatalf("expected x=1 with a single sub-step, got %v", b.Position().X)
	}
}

func TestNilWorldAccessors(t *testing.T) {
	var w *World
	low, high := w.Systems()
	if low != nil || high != nil {
		t.Fatalf("nil world should have no systems")
	}
	if w.Frame() != 0 || w.Time() != 0 || w.Workers() != 0 {
		t.Fatalf("nil world should report zero frame, time and workers")
	}
	if w.BodyCount() != 0 || w.SystemCount() != 0 || w.CandidateGroups() != nil {
		t.Fatalf("nil world should be empty")
	}
	w.Update(0.01, 1)
}
