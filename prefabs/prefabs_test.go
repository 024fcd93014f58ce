package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/dotengine/ecs/system"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedScenesBuild(t *testing.T) {
	cases := []struct {
		name       string
		wantBodies int
		wantSys    []string
	}{
		{"playground", 45, []string{"drag", "gravity", "blocking", "push", "jump", "run", "pendulum", "breeze"}},
		{"orbits", 202, []string{"astral", "blocking", "thrust"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := LoadScene(c.name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			w, scene, err := Build(spec)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			defer w.Close()

			if w.BodyCount() != c.wantBodies || len(scene.Order) != c.wantBodies {
				t.Fatalf("expected %d bodies, got %d", c.wantBodies, w.BodyCount())
			}
			for _, name := range c.wantSys {
				if _, ok := scene.Systems[name]; !ok {
					t.Fatalf("missing system %q", name)
				}
			}
			if w.SystemCount() != len(c.wantSys) {
				t.Fatalf("expected %d systems, got %d", len(c.wantSys), w.SystemCount())
			}

			for i := 0; i < 5; i++ {
				w.Update(spec.Engine.Dt, spec.Engine.Substeps)
			}
			if w.SystemCount() != len(c.wantSys) {
				t.Fatalf("systems dropped while running: %d", w.SystemCount())
			}
		})
	}
}

func TestSceneNames(t *testing.T) {
	names := map[string]bool{}
	for _, n := range SceneNames() {
		names[n] = true
	}
	if !names["playground"] || !names["orbits"] {
		t.Fatalf("embedded scenes missing: %v", names)
	}
}

func TestPlaygroundControls(t *testing.T) {
	spec, err := LoadScene("scenes/playground.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w, scene, err := Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer w.Close()

	if scene.Push() == nil || scene.Jump() == nil || scene.Run() == nil {
		t.Fatalf("controls not resolved")
	}
	if !scene.Run().Intuitive {
		t.Fatalf("run force should be intuitive")
	}
	if _, ok := scene.Systems["pendulum"].(*system.RopeLink); !ok {
		t.Fatalf("pendulum should be a rope")
	}
	if len(scene.Colors) == 0 {
		t.Fatalf("colors not collected")
	}
	if b, ok := scene.Body(w, "player"); !ok || b.Mass() != 1 {
		t.Fatalf("player not resolvable")
	}
}

func TestVecForms(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		want    Vec
		wantErr bool
	}{
		{"sequence", "v: [1.5, -2]", Vec{1.5, -2}, false},
		{"mapping", "v: {x: 3, y: 4}", Vec{3, 4}, false},
		{"partial_mapping", "v: {y: 4}", Vec{0, 4}, false},
		{"too_short", "v: [1]", Vec{}, true},
		{"scalar", "v: 7", Vec{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out struct {
				V Vec `yaml:"v"`
			}
			err := yaml.Unmarshal([]byte(c.doc), &out)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.V != c.want {
				t.Fatalf("expected %v, got %v", c.want, out.V)
			}
		})
	}
}

func TestBuildSceneErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown_kind",
			doc:  "bodies:\n  - {name: a, kind: ghost}",
			want: ErrUnknownKind,
		},
		{
			name: "duplicate_body",
			doc:  "bodies:\n  - {name: a}\n  - {name: a}",
			want: ErrDuplicateName,
		},
		{
			name: "unknown_target",
			doc:  "bodies:\n  - {name: a}\nforces:\n  - {name: f, type: targeted, target: b}",
			want: ErrUnknownBody,
		},
		{
			name: "unknown_star",
			doc:  "laws:\n  astral: {g: 1, stars: [nope]}",
			want: ErrUnknownBody,
		},
		{
			name: "unknown_force",
			doc:  "bodies:\n  - {name: a}\nforces:\n  - {name: f, type: magnet, target: a}",
			want: ErrUnknownForce,
		},
		{
			name: "limited_without_max_speed",
			doc:  "bodies:\n  - {name: a, kind: limited}",
			want: ErrInvalidValue,
		},
		{
			name: "temporary_without_duration",
			doc:  "bodies:\n  - {name: a}\nforces:\n  - {name: f, type: temporary, target: a, value: [1, 0]}",
			want: ErrInvalidValue,
		},
		{
			name: "duplicate_force",
			doc:  "bodies:\n  - {name: a}\nforces:\n  - {name: f, type: targeted, target: a}\n  - {name: f, type: targeted, target: a}",
			want: ErrDuplicateName,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := ParseScene([]byte(c.doc))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, _, err = Build(spec)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestBuildSceneDefaults(t *testing.T) {
	doc := `
bodies:
  - {name: a, position: [0, 0], size: 1}
  - {name: b, position: [5, 0], size: 1}
forces:
  - {name: link, type: spring, a: a, b: b, length: 5, hardness: 10}
  - {name: nudge, type: targeted, target: a, value: [1, 0], high_resolution: true}
  - {name: inline, type: script, target: b, source: "force_y = 1.0"}
`
	spec, err := ParseScene([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.Engine.Dt != DefaultDt || spec.Engine.Substeps != DefaultSubsteps {
		t.Fatalf("engine defaults not applied: %+v", spec.Engine)
	}
	w, scene, err := Build(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer w.Close()

	low, high := w.Systems()
	if len(low) != 1 || len(high) != 2 {
		t.Fatalf("expected 1 low and 2 high resolution systems, got %d/%d", len(low), len(high))
	}
	a, _ := scene.Body(w, "a")
	if !a.IsDynamic() || a.Mass() != 1 {
		t.Fatalf("default kind should be a unit-mass dynamic body")
	}
}

func TestScatterIsSeeded(t *testing.T) {
	doc := `
scatter:
  - {prefix: p, count: 10, seed: 3, min: [0, 0], max: [10, 10], template: {size: 0.1}}
`
	positions := func() map[string][2]float64 {
		spec, err := ParseScene([]byte(doc))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		w, scene, err := Build(spec)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		defer w.Close()
		out := map[string][2]float64{}
		for _, name := range scene.Order {
			b, _ := scene.Body(w, name)
			p := b.Position()
			if p.X < 0 || p.X > 10 || p.Y < 0 || p.Y > 10 {
				t.Fatalf("%s outside the scatter box: %v", name, p)
			}
			out[name] = [2]float64{p.X, p.Y}
		}
		return out
	}
	first, second := positions(), positions()
	if len(first) != 10 {
		t.Fatalf("expected 10 bodies, got %d", len(first))
	}
	for name, p := range first {
		if second[name] != p {
			t.Fatalf("%s differs between builds", name)
		}
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prefabs", "scenes"), 0o755); err != nil {
		t.Fatal(err)
	}
	override := "name: custom\nbodies:\n  - {name: only}\n"
	if err := os.WriteFile(filepath.Join(dir, "prefabs", "scenes", "playground.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	spec, err := LoadScene("playground")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Name != "custom" || len(spec.Bodies) != 1 {
		t.Fatalf("disk override ignored: %+v", spec)
	}
	if _, ok := ModTime("scenes/playground.yaml"); !ok {
		t.Fatalf("mod time should be available for disk files")
	}
	if _, err := LoadScript("wind.tengo"); err != nil {
		t.Fatalf("embedded script should still load: %v", err)
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	scene := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(scene, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != scene {
			t.Fatalf("expected %s, got %s", scene, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no event received")
	}
}
