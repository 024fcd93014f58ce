package system

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// Script globals. Inputs are refreshed before every run; the script assigns
// force_x and force_y, which start each run at zero.
var scriptInputs = []string{"position_x", "position_y", "speed_x", "speed_y", "mass", "time", "dt"}

var scriptOutputs = []string{"force_x", "force_y"}

// ScriptedForce computes the force on its target with a tengo script.
type ScriptedForce struct {
	component.Destroyable
	Target ecs.Entity
	Name   string

	compiled *tengo.Compiled
	elapsed  float64
}

// NewScriptedForce compiles src. Scripts may import the tengo stdlib modules.
func NewScriptedForce(name string, target ecs.Entity, src []byte) (*ScriptedForce, error) {
	script := tengo.NewScript(src)
	for _, v := range scriptInputs {
		_ = script.Add(v, 0.0)
	}
	for _, v := range scriptOutputs {
		_ = script.Add(v, 0.0)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scripted force %s: compile: %w", name, err)
	}
	return &ScriptedForce{Target: target, Name: name, compiled: compiled}, nil
}

func (s *ScriptedForce) Apply(w *ecs.World, dt float64) {
	b, ok := w.Body(s.Target)
	if !ok {
		s.Destroy()
		return
	}

	force, err := s.eval(b, dt)
	if err != nil {
		log.Printf("ScriptedForce: %s disabled: %v", s.Name, err)
		s.Destroy()
		return
	}
	s.elapsed += dt
	b.AddForce(force, vmath.Zero)
}

func (s *ScriptedForce) eval(b *component.Body, dt float64) (vmath.Vector, error) {
	pos := b.Position()
	speed := b.Speed()
	inputs := map[string]float64{
		"position_x": pos.X,
		"position_y": pos.Y,
		"speed_x":    speed.X,
		"speed_y":    speed.Y,
		"mass":       b.Mass(),
		"time":       s.elapsed,
		"dt":         dt,
		"force_x":    0,
		"force_y":    0,
	}
	for name, v := range inputs {
		if err := s.compiled.Set(name, v); err != nil {
			return vmath.Zero, err
		}
	}
	if err := s.compiled.Run(); err != nil {
		return vmath.Zero, err
	}
	return vmath.V(s.compiled.Get("force_x").Float(), s.compiled.Get("force_y").Float()), nil
}
