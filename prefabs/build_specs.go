package prefabs

import (
	"fmt"
	"image/color"
	"log"
	"math/rand"

	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/ecs/system"
)

// Scene is the result of building a SceneSpec into a world.
type Scene struct {
	Spec *SceneSpec

	// Bodies maps body names to handles; Order keeps declaration order.
	Bodies map[string]ecs.Entity
	Order  []string
	Colors map[ecs.Entity]color.Color

	// Systems maps force names to systems. Laws and collision effects are
	// registered as "drag", "gravity", "astral" and "blocking".
	Systems map[string]ecs.System
}

// Body resolves a body by name.
func (s *Scene) Body(w *ecs.World, name string) (*component.Body, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.Bodies[name]
	if !ok {
		return nil, false
	}
	return w.Body(e)
}

// Push returns the controlled targeted force, if any.
func (s *Scene) Push() *system.TargetedForce {
	f, _ := s.control(s.Spec.Controls.Push).(*system.TargetedForce)
	return f
}

// Jump returns the controlled jump force, if any.
func (s *Scene) Jump() *system.JumpForce {
	f, _ := s.control(s.Spec.Controls.Jump).(*system.JumpForce)
	return f
}

// Run returns the controlled running force, if any.
func (s *Scene) Run() *system.RunningForce {
	f, _ := s.control(s.Spec.Controls.Run).(*system.RunningForce)
	return f
}

func (s *Scene) control(name string) ecs.System {
	if s == nil || name == "" {
		return nil
	}
	return s.Systems[name]
}

// Build creates a world configured by spec.Engine and populates it.
func Build(spec *SceneSpec) (*ecs.World, *Scene, error) {
	w := ecs.NewWorld(spec.Engine.Config())
	scene, err := BuildScene(w, spec)
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	return w, scene, nil
}

// BuildScene registers the bodies and systems of spec into w. On error w is
// left partially populated and should be discarded.
func BuildScene(w *ecs.World, spec *SceneSpec) (*Scene, error) {
	if w == nil || spec == nil {
		return nil, fmt.Errorf("prefabs: build scene: %w: nil world or spec", ErrInvalidValue)
	}
	scene := &Scene{
		Spec:    spec,
		Bodies:  make(map[string]ecs.Entity),
		Colors:  make(map[ecs.Entity]color.Color),
		Systems: make(map[string]ecs.System),
	}

	for _, bs := range spec.Bodies {
		if err := scene.addBody(w, bs); err != nil {
			return nil, err
		}
	}
	for _, sc := range spec.Scatter {
		if err := scene.scatter(w, sc); err != nil {
			return nil, err
		}
	}
	if err := scene.addLaws(w, spec.Laws); err != nil {
		return nil, err
	}
	if spec.Collisions.Blocking {
		scene.register(w, "blocking", system.NewBlockingEffect(), true)
	}
	for _, fs := range spec.Forces {
		if err := scene.addForce(w, fs); err != nil {
			return nil, err
		}
	}

	log.Printf("Scene: built %q with %d bodies and %d systems", spec.Name, len(scene.Bodies), len(scene.Systems))
	return scene, nil
}

// NewBody creates the body described by bs.
func NewBody(bs BodySpec) (*component.Body, error) {
	kind := bs.Kind
	if kind == "" {
		kind = KindDynamic
	}
	var b *component.Body
	switch kind {
	case KindInert:
		b = component.NewInertBody(bs.Position.Vector(), bs.Size)
	case KindStatic:
		b = component.NewStaticBody(bs.Position.Vector(), bs.Size, massOrDefault(bs.Mass), bs.Hardness, bs.Damping)
	case KindDynamic, KindLimited:
		if bs.Mass < 0 {
			return nil, fmt.Errorf("prefabs: body %s: %w: mass %v", bs.Name, ErrInvalidValue, bs.Mass)
		}
		if kind == KindLimited {
			if bs.MaxSpeed <= 0 {
				return nil, fmt.Errorf("prefabs: body %s: %w: max_speed %v", bs.Name, ErrInvalidValue, bs.MaxSpeed)
			}
			b = component.NewLimitedDynamicBody(bs.Position.Vector(), bs.Size, massOrDefault(bs.Mass), bs.MaxSpeed)
		} else {
			b = component.NewDynamicBody(bs.Position.Vector(), bs.Size, massOrDefault(bs.Mass))
		}
		b.SetHardness(bs.Hardness)
		b.SetDamping(bs.Damping)
		b.SetSpeed(bs.Speed.Vector())
	default:
		return nil, fmt.Errorf("prefabs: body %s: %w %q", bs.Name, ErrUnknownKind, bs.Kind)
	}
	b.SetWeakCollision(bs.WeakCollision)
	return b, nil
}

func massOrDefault(m float64) float64 {
	if m == 0 {
		return 1
	}
	return m
}

func (s *Scene) addBody(w *ecs.World, bs BodySpec) error {
	if bs.Name == "" {
		return fmt.Errorf("prefabs: body: %w: missing name", ErrInvalidValue)
	}
	if _, ok := s.Bodies[bs.Name]; ok {
		return fmt.Errorf("prefabs: body %s: %w", bs.Name, ErrDuplicateName)
	}
	b, err := NewBody(bs)
	if err != nil {
		return err
	}
	e := w.RegisterBody(b)
	s.Bodies[bs.Name] = e
	s.Order = append(s.Order, bs.Name)
	if bs.Color != nil {
		s.Colors[e] = bs.Color.Color
	}
	return nil
}

func (s *Scene) scatter(w *ecs.World, sc ScatterSpec) error {
	if sc.Count < 0 {
		return fmt.Errorf("prefabs: scatter %s: %w: count %d", sc.Prefix, ErrInvalidValue, sc.Count)
	}
	prefix := sc.Prefix
	if prefix == "" {
		prefix = "scatter"
	}
	rng := rand.New(rand.NewSource(sc.Seed))
	for i := 0; i < sc.Count; i++ {
		bs := sc.Template
		bs.Name = fmt.Sprintf("%s_%d", prefix, i)
		bs.Position = Vec{
			X: sc.Min.X + rng.Float64()*(sc.Max.X-sc.Min.X),
			Y: sc.Min.Y + rng.Float64()*(sc.Max.Y-sc.Min.Y),
		}
		if err := s.addBody(w, bs); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) addLaws(w *ecs.World, laws LawsSpec) error {
	if laws.Drag != 0 {
		s.register(w, "drag", system.NewDrag(laws.Drag), false)
	}
	if laws.Gravity != nil {
		s.register(w, "gravity", system.NewGravity(laws.Gravity.Vector()), false)
	}
	if laws.Astral != nil {
		astral := system.NewAstralGravity(laws.Astral.G)
		for _, name := range laws.Astral.Stars {
			e, err := s.lookup("astral", name)
			if err != nil {
				return err
			}
			astral.RegisterStar(e)
		}
		s.register(w, "astral", astral, false)
	}
	return nil
}

func (s *Scene) register(w *ecs.World, name string, sys ecs.System, highResolution bool) {
	s.Systems[name] = sys
	w.RegisterSystem(sys, highResolution)
}

func (s *Scene) lookup(owner, name string) (ecs.Entity, error) {
	e, ok := s.Bodies[name]
	if !ok {
		return 0, fmt.Errorf("prefabs: %s: %w %q", owner, ErrUnknownBody, name)
	}
	return e, nil
}

func (s *Scene) addForce(w *ecs.World, fs ForceSpec) error {
	if fs.Name == "" {
		return fmt.Errorf("prefabs: force: %w: missing name", ErrInvalidValue)
	}
	if _, ok := s.Systems[fs.Name]; ok {
		return fmt.Errorf("prefabs: force %s: %w", fs.Name, ErrDuplicateName)
	}

	sys, high, err := s.newForce(fs)
	if err != nil {
		return err
	}
	if fs.HighResolution != nil {
		high = *fs.HighResolution
	}
	s.register(w, fs.Name, sys, high)
	return nil
}

// newForce returns the system and its default resolution.
func (s *Scene) newForce(fs ForceSpec) (ecs.System, bool, error) {
	switch fs.Type {
	case ForceTargeted, ForceTemporary:
		target, err := s.lookup(fs.Name, fs.Target)
		if err != nil {
			return nil, false, err
		}
		if fs.Type == ForceTargeted {
			return system.NewTargetedForce(target, fs.Value.Vector()), false, nil
		}
		if fs.Duration <= 0 {
			return nil, false, fmt.Errorf("prefabs: force %s: %w: duration %v", fs.Name, ErrInvalidValue, fs.Duration)
		}
		return system.NewTemporaryForce(target, fs.Value.Vector(), fs.Duration), false, nil

	case ForceSpring, ForceRope:
		a, err := s.lookup(fs.Name, fs.A)
		if err != nil {
			return nil, false, err
		}
		b, err := s.lookup(fs.Name, fs.B)
		if err != nil {
			return nil, false, err
		}
		if fs.Type == ForceSpring {
			return system.NewSpringLink(a, b, fs.Length, fs.Hardness, fs.Damping), true, nil
		}
		return system.NewRopeLink(a, b, fs.Length, fs.Hardness, fs.Damping), true, nil

	case ForceJump:
		jumper, err := s.lookup(fs.Name, fs.Target)
		if err != nil {
			return nil, false, err
		}
		j := system.NewJumpForce(jumper, fs.InitialValue, fs.DegradationRate, fs.DistanceThreshold)
		for _, name := range fs.Walls {
			wall, err := s.lookup(fs.Name, name)
			if err != nil {
				return nil, false, err
			}
			j.AddWall(wall)
		}
		return j, false, nil

	case ForceRunning:
		runner, err := s.lookup(fs.Name, fs.Target)
		if err != nil {
			return nil, false, err
		}
		r := system.NewRunningForce(runner, fs.Magnitude, fs.DistanceThreshold, fs.Intuitive)
		for _, floor := range fs.Floors {
			e, err := s.lookup(fs.Name, floor.Name)
			if err != nil {
				return nil, false, err
			}
			r.AddFloor(e, floor.Friction)
		}
		r.SetDirection(fs.Direction)
		return r, false, nil

	case ForceScript:
		target, err := s.lookup(fs.Name, fs.Target)
		if err != nil {
			return nil, false, err
		}
		src := []byte(fs.Source)
		if fs.Script != "" {
			src, err = LoadScript(fs.Script)
			if err != nil {
				return nil, false, fmt.Errorf("prefabs: force %s: load script %s: %w", fs.Name, fs.Script, err)
			}
		}
		sf, err := system.NewScriptedForce(fs.Name, target, src)
		if err != nil {
			return nil, false, fmt.Errorf("prefabs: force %s: %w", fs.Name, err)
		}
		return sf, false, nil
	}
	return nil, false, fmt.Errorf("prefabs: force %s: %w %q", fs.Name, ErrUnknownForce, fs.Type)
}

// Spawn registers one more body into an already built scene.
func (s *Scene) Spawn(w *ecs.World, bs BodySpec) (ecs.Entity, error) {
	if err := s.addBody(w, bs); err != nil {
		return 0, err
	}
	return s.Bodies[bs.Name], nil
}
