// Package scenecfg loads a solstice scene fixture from YAML: sun, optional
// atmosphere, materials, shapes, objects, and instances, plus the solve
// parameters to run against them. It exists for tests and the demonstration
// command (cmd/solstice), not for the core solver itself (spec.md §1 "the
// CLI" and scene/resource construction are out of scope for the core).
//
// Grounded on the teacher's pkg/scene/*.go per-scenario-function idiom
// (NewCornellScene, NewDefaultScene, ...), adapted here from Go literals to
// data-driven YAML the way gazed-vu/load/shd.go maps a yaml document onto
// engine structs through small string-keyed lookup tables.
package scenecfg

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arfontalvo/solstice/internal/solverr"
	"github.com/arfontalvo/solstice/pkg/carving"
	"github.com/arfontalvo/solstice/pkg/material"
	"github.com/arfontalvo/solstice/pkg/quadric"
	"github.com/arfontalvo/solstice/pkg/scene"
	"github.com/arfontalvo/solstice/pkg/shape"
	"github.com/arfontalvo/solstice/pkg/solver"
	"github.com/arfontalvo/solstice/pkg/spectrum"
	"github.com/arfontalvo/solstice/pkg/sun"
	"github.com/arfontalvo/solstice/pkg/vecmath"
	"gonum.org/v1/gonum/mat"
)

// Built is the assembled result of loading a document: a finalized scene,
// its sun, an optional atmosphere, and the solve parameters the document
// requested.
type Built struct {
	Scene      *scene.Scene
	Sun        *sun.Sun
	Atmosphere *spectrum.Atmosphere
	Solve      solver.Config
}

type sampleDoc struct {
	Wavelength float64 `yaml:"wavelength"`
	Intensity  float64 `yaml:"intensity"`
}

func (s sampleDoc) toSample() spectrum.Sample {
	return spectrum.Sample{Wavelength: s.Wavelength, Intensity: s.Intensity}
}

type sunDoc struct {
	Kind      string      `yaml:"kind"`
	Direction [3]float64  `yaml:"direction"`
	DNI       float64     `yaml:"dni"`
	HalfAngle float64     `yaml:"half_angle"`
	CSR       float64     `yaml:"csr"`
	Spectrum  []sampleDoc `yaml:"spectrum"`
}

type atmosphereDoc struct {
	Extinction []sampleDoc `yaml:"extinction"`
}

type shaderDoc struct {
	Reflectivity float64 `yaml:"reflectivity"`
	Roughness    float64 `yaml:"roughness"`
}

type mediumDoc struct {
	Name string  `yaml:"name"`
	IOR  float64 `yaml:"ior"`
}

type materialDoc struct {
	Kind          string    `yaml:"kind"` // matte|mirror|dielectric|thin_dielectric|virtual
	Shader        shaderDoc `yaml:"shader"`
	Outside       mediumDoc `yaml:"outside"`
	Inside        mediumDoc `yaml:"inside"`
	SlabIOR       float64   `yaml:"slab_ior"`
	Absorptivity  float64   `yaml:"absorptivity"`
	Thickness     float64   `yaml:"thickness"`
}

type shapeDoc struct {
	Kind string `yaml:"kind"` // rect|quadric

	// rect
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`

	// quadric
	QuadricKind string  `yaml:"quadric_kind"` // plane|parabol|parabolic_cylinder|hemisphere|hyperbol
	Focal       float64 `yaml:"focal"`
	RealFocal   float64 `yaml:"real_focal"`
	ImgFocal    float64 `yaml:"img_focal"`
	Radius      float64 `yaml:"radius"`
	CarveWidth  float64 `yaml:"carve_half_width"`
	CarveHeight float64 `yaml:"carve_half_height"`
}

type partDoc struct {
	Shape         string `yaml:"shape"`
	FrontMaterial string `yaml:"front_material"`
	BackMaterial  string `yaml:"back_material"`
}

type objectDoc struct {
	Parts []partDoc `yaml:"parts"`
}

type instanceDoc struct {
	Object              string     `yaml:"object"`
	Translation         [3]float64 `yaml:"translation"`
	Orientation         string     `yaml:"orientation"` // identity|flip_x|flip_y|flip_z
	Receiver            string     `yaml:"receiver"`    // none|front|back|both
	Sample              *bool      `yaml:"sample"`
	PerPrimitiveScoring bool       `yaml:"per_primitive_scoring"`
}

type solveDoc struct {
	Realisations uint64 `yaml:"realisations"`
	Seed         uint64 `yaml:"seed"`
	Threads      int    `yaml:"threads"`
	MaxDepth     int    `yaml:"max_depth"`
}

// Document is the top-level YAML shape a scene fixture is unmarshalled
// into, prior to being resolved into live solstice types by Load.
type Document struct {
	Sun        sunDoc                 `yaml:"sun"`
	Atmosphere *atmosphereDoc         `yaml:"atmosphere"`
	Materials  map[string]materialDoc `yaml:"materials"`
	Shapes     map[string]shapeDoc    `yaml:"shapes"`
	Objects    map[string]objectDoc   `yaml:"objects"`
	Instances  map[string]instanceDoc `yaml:"instances"`
	Solve      solveDoc               `yaml:"solve"`
}

var orientations = map[string]func() vecmath.Affine{
	"":         vecmath.Identity,
	"identity": vecmath.Identity,
	"flip_x":   func() vecmath.Affine { return rotationAbout(1, 0, 0) },
	"flip_y":   func() vecmath.Affine { return rotationAbout(0, 1, 0) },
	"flip_z":   func() vecmath.Affine { return rotationAbout(0, 0, 1) },
}

var receiverMasks = map[string]scene.ReceiverMask{
	"":      scene.ReceiverNone,
	"none":  scene.ReceiverNone,
	"front": scene.ReceiverFront,
	"back":  scene.ReceiverBack,
	"both":  scene.ReceiverFront | scene.ReceiverBack,
}

// Load parses a YAML document and resolves it into a Built scene ready to
// hand to solver.Solve.
func Load(data []byte) (*Built, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, solverr.Wrap(solverr.BadArgument, err, "scenecfg: invalid yaml")
	}
	return build(&doc)
}

func build(doc *Document) (*Built, error) {
	sn, err := buildSun(doc.Sun)
	if err != nil {
		return nil, err
	}

	var atm *spectrum.Atmosphere
	if doc.Atmosphere != nil {
		spec, err := buildSpectrum(doc.Atmosphere.Extinction)
		if err != nil {
			return nil, solverr.Wrap(solverr.BadArgument, err, "scenecfg: atmosphere")
		}
		uniform := spectrum.NewUniform(spec)
		atm = &uniform
	}

	materials := make(map[string]material.Material, len(doc.Materials))
	for name, m := range doc.Materials {
		built, err := buildMaterial(m)
		if err != nil {
			return nil, solverr.Wrap(solverr.BadArgument, err, fmt.Sprintf("scenecfg: material %q", name))
		}
		materials[name] = built
	}

	shapes := make(map[string]scene.Shape, len(doc.Shapes))
	for name, sh := range doc.Shapes {
		built, err := buildShape(sh)
		if err != nil {
			return nil, solverr.Wrap(solverr.BadArgument, err, fmt.Sprintf("scenecfg: shape %q", name))
		}
		shapes[name] = built
	}

	objects := make(map[string]*scene.Object, len(doc.Objects))
	for name, obj := range doc.Objects {
		parts := make([]scene.Part, len(obj.Parts))
		for i, p := range obj.Parts {
			sh, ok := shapes[p.Shape]
			if !ok {
				return nil, solverr.Newf(solverr.BadArgument, "scenecfg: object %q references unknown shape %q", name, p.Shape)
			}
			front, err := lookupMaterial(materials, p.FrontMaterial)
			if err != nil {
				return nil, solverr.Wrap(solverr.BadArgument, err, fmt.Sprintf("scenecfg: object %q front material", name))
			}
			back, err := lookupMaterial(materials, p.BackMaterial)
			if err != nil {
				return nil, solverr.Wrap(solverr.BadArgument, err, fmt.Sprintf("scenecfg: object %q back material", name))
			}
			parts[i] = scene.Part{Shape: sh, FrontMaterial: front, BackMaterial: back}
		}
		objects[name] = scene.NewObject(parts...)
	}

	s := scene.NewScene()
	var id uint64 = 1
	for name, inst := range doc.Instances {
		obj, ok := objects[inst.Object]
		if !ok {
			return nil, solverr.Newf(solverr.BadArgument, "scenecfg: instance %q references unknown object %q", name, inst.Object)
		}
		orient, ok := orientations[inst.Orientation]
		if !ok {
			return nil, solverr.Newf(solverr.BadArgument, "scenecfg: instance %q has unknown orientation %q", name, inst.Orientation)
		}
		mask, ok := receiverMasks[inst.Receiver]
		if !ok {
			return nil, solverr.Newf(solverr.BadArgument, "scenecfg: instance %q has unknown receiver mask %q", name, inst.Receiver)
		}
		translation := vecmath.NewAffine(identityLinear(), vecmath.NewVec3(inst.Translation[0], inst.Translation[1], inst.Translation[2]))
		transform := vecmath.Compose(translation, orient())
		built := scene.NewInstance(id, obj, transform, mask)
		if inst.Sample != nil {
			built.Sample = *inst.Sample
		}
		built.PerPrimitiveScoring = inst.PerPrimitiveScoring
		s.AttachInstance(built)
		id++
	}
	s.Finalize()

	return &Built{
		Scene:      s,
		Sun:        sn,
		Atmosphere: atm,
		Solve: solver.Config{
			Scene:        s,
			Sun:          sn,
			Atmosphere:   atm,
			Realisations: doc.Solve.Realisations,
			Seed:         doc.Solve.Seed,
			Threads:      doc.Solve.Threads,
			MaxDepth:     doc.Solve.MaxDepth,
		},
	}, nil
}

func lookupMaterial(materials map[string]material.Material, name string) (material.Material, error) {
	if name == "" {
		return nil, nil
	}
	m, ok := materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	return m, nil
}

func buildSpectrum(samples []sampleDoc) (*spectrum.Spectrum, error) {
	out := make([]spectrum.Sample, len(samples))
	for i, s := range samples {
		out[i] = s.toSample()
	}
	return spectrum.New(out)
}

func buildSun(doc sunDoc) (*sun.Sun, error) {
	spec, err := buildSpectrum(doc.Spectrum)
	if err != nil {
		return nil, solverr.Wrap(solverr.BadArgument, err, "scenecfg: sun spectrum")
	}
	dir := vecmath.NewVec3(doc.Direction[0], doc.Direction[1], doc.Direction[2])

	var kind sun.Kind
	switch doc.Kind {
	case "", "directional":
		kind = sun.Directional
	case "pillbox":
		kind = sun.PillBox
	case "buie":
		kind = sun.Buie
	default:
		return nil, solverr.Newf(solverr.BadArgument, "scenecfg: unknown sun kind %q", doc.Kind)
	}
	return sun.New(kind, dir, doc.DNI, spec, doc.HalfAngle, doc.CSR)
}

func buildMaterial(doc materialDoc) (material.Material, error) {
	shader := material.ConstantShader{ReflectivityValue: doc.Shader.Reflectivity, RoughnessValue: doc.Shader.Roughness}
	switch doc.Kind {
	case "matte":
		return material.NewMatte(shader), nil
	case "mirror":
		return material.NewMirror(shader), nil
	case "dielectric":
		outside := material.Medium{Name: doc.Outside.Name, IOR: doc.Outside.IOR}
		inside := material.Medium{Name: doc.Inside.Name, IOR: doc.Inside.IOR}
		return material.NewDielectric(outside, inside), nil
	case "thin_dielectric":
		outside := material.Medium{Name: doc.Outside.Name, IOR: doc.Outside.IOR}
		return material.NewThinDielectric(outside, doc.SlabIOR, doc.Absorptivity, doc.Thickness), nil
	case "virtual":
		return &material.Virtual{}, nil
	default:
		return nil, fmt.Errorf("unknown material kind %q", doc.Kind)
	}
}

func buildShape(doc shapeDoc) (scene.Shape, error) {
	switch doc.Kind {
	case "rect":
		return rectMesh(doc.HalfWidth, doc.HalfHeight)
	case "quadric":
		return buildQuadricShape(doc)
	default:
		return nil, fmt.Errorf("unknown shape kind %q", doc.Kind)
	}
}

func rectMesh(halfWidth, halfHeight float64) (*shape.Mesh, error) {
	positions := []vecmath.Vec3{
		vecmath.NewVec3(-halfWidth, -halfHeight, 0),
		vecmath.NewVec3(halfWidth, -halfHeight, 0),
		vecmath.NewVec3(halfWidth, halfHeight, 0),
		vecmath.NewVec3(-halfWidth, halfHeight, 0),
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return shape.NewMesh(positions, indices, nil, nil)
}

func buildQuadricShape(doc shapeDoc) (*shape.Punched, error) {
	identity := vecmath.Identity()

	var q *quadric.Quadric
	var err error
	switch doc.QuadricKind {
	case "plane":
		q = quadric.NewPlane(identity)
	case "parabol":
		q, err = quadric.NewParabol(doc.Focal, identity)
	case "parabolic_cylinder":
		q, err = quadric.NewParabolicCylinder(doc.Focal, identity)
	case "hemisphere":
		q, err = quadric.NewHemisphere(doc.Radius, identity)
	case "hyperbol":
		q, err = quadric.NewHyperbol(doc.RealFocal, doc.ImgFocal, identity)
	default:
		return nil, fmt.Errorf("unknown quadric kind %q", doc.QuadricKind)
	}
	if err != nil {
		return nil, err
	}

	var carvings []*carving.Carving
	if doc.QuadricKind != "hemisphere" {
		w, h := doc.CarveWidth, doc.CarveHeight
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("quadric shape requires carve_half_width and carve_half_height")
		}
		rect := []vecmath.Vec2{
			vecmath.NewVec2(-w, -h),
			vecmath.NewVec2(w, -h),
			vecmath.NewVec2(w, h),
			vecmath.NewVec2(-w, h),
		}
		c, err := carving.New(rect, carving.AND, nil)
		if err != nil {
			return nil, err
		}
		carvings = []*carving.Carving{c}
	}

	return shape.NewPunched(q, carvings)
}

func identityLinear() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// rotationAbout builds the 180-degree rotation about the given axis (a unit
// basis vector), used by the "flip_*" named orientations: flip_x and flip_y
// turn a +Z-facing rectangle to face -Z, while flip_z keeps it facing +Z and
// turns it a half-turn within its own plane.
func rotationAbout(x, y, z float64) vecmath.Affine {
	// A 180-degree rotation about a coordinate axis negates the other two
	// diagonal entries and leaves the axis's own entry at +1.
	diag := [3]float64{1, 1, 1}
	switch {
	case x != 0:
		diag[1], diag[2] = -1, -1
	case y != 0:
		diag[0], diag[2] = -1, -1
	case z != 0:
		diag[0], diag[1] = -1, -1
	}
	return vecmath.NewAffine(mat.NewDense(3, 3, []float64{
		diag[0], 0, 0,
		0, diag[1], 0,
		0, 0, diag[2],
	}), vecmath.Vec3{})
}
