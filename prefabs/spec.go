package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/vmath"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownBody   = errors.New("unknown body")
	ErrUnknownKind   = errors.New("unknown body kind")
	ErrUnknownForce  = errors.New("unknown force type")
	ErrDuplicateName = errors.New("duplicate name")
	ErrInvalidValue  = errors.New("invalid value")
)

// SceneSpec describes a world: engine tuning, bodies and the systems acting on them.
type SceneSpec struct {
	Name       string         `yaml:"name"`
	Engine     EngineSpec     `yaml:"engine"`
	Bodies     []BodySpec     `yaml:"bodies"`
	Scatter    []ScatterSpec  `yaml:"scatter"`
	Laws       LawsSpec       `yaml:"laws"`
	Collisions CollisionsSpec `yaml:"collisions"`
	Forces     []ForceSpec    `yaml:"forces"`
	Controls   ControlsSpec   `yaml:"controls"`
}

type EngineSpec struct {
	Dt            float64 `yaml:"dt"`
	Substeps      int     `yaml:"substeps"`
	Workers       int     `yaml:"workers"`
	SpinWait      bool    `yaml:"spin_wait"`
	SortMinBodies int     `yaml:"sort_min_bodies"`
	SortMaxDepth  int     `yaml:"sort_max_depth"`
}

const (
	DefaultDt       = 0.01
	DefaultSubsteps = 10
)

// WithDefaults fills unset fields.
func (e EngineSpec) WithDefaults() EngineSpec {
	if e.Dt <= 0 {
		e.Dt = DefaultDt
	}
	if e.Substeps < 1 {
		e.Substeps = DefaultSubsteps
	}
	if e.SortMinBodies <= 0 {
		e.SortMinBodies = ecs.DefaultSortMinBodies
	}
	if e.SortMaxDepth <= 0 {
		e.SortMaxDepth = ecs.DefaultSortMaxDepth
	}
	return e
}

// Config converts the spec into a world configuration.
func (e EngineSpec) Config() ecs.Config {
	e = e.WithDefaults()
	return ecs.Config{
		Workers:       e.Workers,
		SpinWait:      e.SpinWait,
		SortMinBodies: e.SortMinBodies,
		SortMaxDepth:  e.SortMaxDepth,
	}
}

// Body kinds.
const (
	KindInert   = "inert"
	KindStatic  = "static"
	KindDynamic = "dynamic"
	KindLimited = "limited"
)

type BodySpec struct {
	Name          string     `yaml:"name"`
	Kind          string     `yaml:"kind"`
	Position      Vec        `yaml:"position"`
	Speed         Vec        `yaml:"speed"`
	Size          float64    `yaml:"size"`
	Mass          float64    `yaml:"mass"`
	Hardness      float64    `yaml:"hardness"`
	Damping       float64    `yaml:"damping"`
	MaxSpeed      float64    `yaml:"max_speed"`
	WeakCollision bool       `yaml:"weak_collision"`
	Color         *YAMLColor `yaml:"color"`
}

// ScatterSpec spawns Count copies of Template at seeded random positions in
// the box [Min, Max]. Bodies are named Prefix_0 .. Prefix_{Count-1}.
type ScatterSpec struct {
	Prefix   string   `yaml:"prefix"`
	Count    int      `yaml:"count"`
	Seed     int64    `yaml:"seed"`
	Min      Vec      `yaml:"min"`
	Max      Vec      `yaml:"max"`
	Template BodySpec `yaml:"template"`
}

type LawsSpec struct {
	Drag    float64     `yaml:"drag"`
	Gravity *Vec        `yaml:"gravity"`
	Astral  *AstralSpec `yaml:"astral"`
}

type AstralSpec struct {
	G     float64  `yaml:"g"`
	Stars []string `yaml:"stars"`
}

type CollisionsSpec struct {
	Blocking bool `yaml:"blocking"`
}

// Force types.
const (
	ForceTargeted  = "targeted"
	ForceTemporary = "temporary"
	ForceSpring    = "spring"
	ForceRope      = "rope"
	ForceJump      = "jump"
	ForceRunning   = "running"
	ForceScript    = "script"
)

type ForceSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Target string `yaml:"target"`
	A      string `yaml:"a"`
	B      string `yaml:"b"`

	Value     Vec     `yaml:"value"`
	Magnitude float64 `yaml:"magnitude"`
	Duration  float64 `yaml:"duration"`

	Length   float64 `yaml:"length"`
	Hardness float64 `yaml:"hardness"`
	Damping  float64 `yaml:"damping"`

	InitialValue      float64     `yaml:"initial_value"`
	DegradationRate   float64     `yaml:"degradation_rate"`
	DistanceThreshold float64     `yaml:"distance_threshold"`
	Walls             []string    `yaml:"walls"`
	Floors            []FloorSpec `yaml:"floors"`
	Intuitive         bool        `yaml:"intuitive"`
	Direction         int         `yaml:"direction"`

	Script string `yaml:"script"`
	Source string `yaml:"source"`

	// HighResolution overrides the default phase: links run every
	// sub-step, everything else once per frame.
	HighResolution *bool `yaml:"high_resolution"`
}

type FloorSpec struct {
	Name     string  `yaml:"name"`
	Friction float64 `yaml:"friction"`
}

// ControlsSpec names the forces the interactive harness drives.
type ControlsSpec struct {
	Push string  `yaml:"push"`
	Jump string  `yaml:"jump"`
	Run  string  `yaml:"run"`
	Gain float64 `yaml:"gain"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadScene loads a scene by name, e.g. "playground" or "scenes/playground.yaml".
func LoadScene(name string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](scenePath(name))
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = sceneName(name)
	}
	spec.Engine = spec.Engine.WithDefaults()
	return &spec, nil
}

// ParseScene decodes a scene document.
func ParseScene(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal scene: %w", err)
	}
	spec.Engine = spec.Engine.WithDefaults()
	return &spec, nil
}

// Vec is a 2D vector written either as [x, y] or as {x: .., y: ..}.
type Vec struct {
	X float64
	Y float64
}

func (v Vec) Vector() vmath.Vector {
	return vmath.V(v.X, v.Y)
}

func (v *Vec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("vector must have 2 components, got %d", len(xy))
		}
		v.X, v.Y = xy[0], xy[1]
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		v.X, v.Y = m.X, m.Y
	default:
		return fmt.Errorf("vector must be a sequence or a mapping")
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
