package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/meshsurgery/pkg/cache"
	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/shapes"
)

func TestValidateShape(t *testing.T) {
	tests := []struct {
		shape   string
		wantErr bool
	}{
		{"tetrahedron", false},
		{"icosahedron", false},
		{"grid", false},
		{"sphere", false},
		{"file", false},
		{"Sphere", false}, // case-insensitive
		{"torus", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateShape(tt.shape)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateShape(%q) error = %v, wantErr %v", tt.shape, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Shape: "sphere"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Resolution != resolutions[ShapeSphere].def {
		t.Errorf("Resolution should be %d, got %d", resolutions[ShapeSphere].def, opts.Resolution)
	}
	if opts.Radius != DefaultRadius {
		t.Errorf("Radius should be %g, got %g", DefaultRadius, opts.Radius)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	opts = Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Shape != DefaultShape {
		t.Errorf("Shape should be %s, got %s", DefaultShape, opts.Shape)
	}
	if opts.Resolution != 0 {
		t.Errorf("platonic solids take no resolution, got %d", opts.Resolution)
	}
}

func TestOptionsValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown shape", Options{Shape: "torus"}, errors.ErrCodeInvalidShape},
		{"grid too fine", Options{Shape: "grid", Resolution: 1000}, errors.ErrCodeInvalidInput},
		{"fan too small", Options{Shape: "fan", Resolution: 2}, errors.ErrCodeInvalidInput},
		{"negative radius", Options{Shape: "box", Radius: -1}, errors.ErrCodeInvalidInput},
		{"file without input", Options{Shape: "file"}, errors.ErrCodeInvalidInput},
		{"shape and input", Options{Shape: "grid", Input: "m.json"}, errors.ErrCodeInvalidInput},
		{"bad path", Options{Input: "a\x00b"}, errors.ErrCodeInvalidPath},
		{"not a soup file", Options{Input: "mesh.obj"}, errors.ErrCodeUnsupported},
		{"negative collapses", Options{Collapses: -1}, errors.ErrCodeInvalidInput},
		{"zero halfedge", Options{Edges: []int{3, 0}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Shape: " Grid "}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	if opts.Shape != ShapeGrid {
		t.Errorf("Shape should be normalized to %q, got %q", ShapeGrid, opts.Shape)
	}
	res := opts.Resolution

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Resolution != res {
		t.Error("Resolution changed on second call")
	}
}

func TestInputImpliesFileShape(t *testing.T) {
	opts := Options{Input: "mesh.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Shape != ShapeFile {
		t.Errorf("Shape = %q, want %q", opts.Shape, ShapeFile)
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		opts  Options
		verts int
	}{
		{Options{Shape: ShapeTetrahedron}, 4},
		{Options{Shape: ShapeOctahedron}, 6},
		{Options{Shape: ShapeIcosahedron}, 12},
		{Options{Shape: ShapeGrid, Resolution: 3}, 16},
		{Options{Shape: ShapeFan, Resolution: 5}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.opts.Shape, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			m, err := Generate(context.Background(), opts)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if m.NumVertices() != tt.verts {
				t.Errorf("NumVertices() = %d, want %d", m.NumVertices(), tt.verts)
			}
		})
	}
}

func TestGenerateSDF(t *testing.T) {
	if testing.Short() {
		t.Skip("marching cubes in short mode")
	}
	for _, shape := range []string{ShapeSphere, ShapeBox, ShapeCylinder} {
		t.Run(shape, func(t *testing.T) {
			opts := Options{Shape: shape, Resolution: 10}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			m, err := Generate(context.Background(), opts)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if err := m.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func writeSoup(t *testing.T, m *mesh.Mesh) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := m.WriteSoup(f); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateFile(t *testing.T) {
	path := writeSoup(t, shapes.Octahedron())
	opts := Options{Input: path}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	m, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !mesh.Equal(m, shapes.Octahedron()) {
		t.Error("mesh read from file differs from the written one")
	}

	opts = Options{Input: filepath.Join(t.TempDir(), "missing.json")}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if _, err := Generate(context.Background(), opts); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCollapseExplicit(t *testing.T) {
	m := shapes.Octahedron()
	h := m.FindHalfedge(5, 1)

	out, err := Collapse(context.Background(), m, Options{Edges: []int{int(h)}})
	if err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	if out.Collapsed != 1 || out.Classes["join-both"] != 1 {
		t.Errorf("outcome = %+v, want one join-both", out)
	}

	// The same half-edge is gone now.
	before := m.Clone()
	_, err = Collapse(context.Background(), m, Options{Edges: []int{int(h)}})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second collapse error = %v, want NOT_FOUND", err)
	}
	if !mesh.Equal(m, before) {
		t.Error("failed stage modified the mesh")
	}
}

func TestCollapseExplicitStopsAtFirstError(t *testing.T) {
	m := shapes.Grid(2, 2)
	good := m.FindHalfedge(1, 2) // border edge (0,0) -> (1,0)
	// Top far vertex is the degree-2 corner.
	bad := m.FindHalfedge(6, 2) // (2,1) -> (1,0)

	out, err := Collapse(context.Background(), m, Options{Edges: []int{int(good), int(bad), int(good)}})
	if !errors.Is(err, errors.ErrCodePrecondition) {
		t.Fatalf("error = %v, want PRECONDITION_VIOLATION", err)
	}
	if out.Collapsed != 1 {
		t.Errorf("Collapsed = %d, want 1", out.Collapsed)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestCollapseRandom(t *testing.T) {
	run := func() (*mesh.Mesh, Outcome) {
		m := shapes.Grid(6, 6)
		out, err := Collapse(context.Background(), m, Options{Collapses: 20, Seed: 7})
		if err != nil {
			t.Fatalf("Collapse: %v", err)
		}
		return m, out
	}

	m1, out := run()
	if out.Collapsed != 20 {
		t.Errorf("Collapsed = %d, want 20", out.Collapsed)
	}
	if got := 49 - m1.NumVertices(); got != 20 {
		t.Errorf("removed %d vertices, want 20", got)
	}
	if err := m1.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	total := 0
	for _, n := range out.Classes {
		total += n
	}
	if total != out.Collapsed {
		t.Errorf("class counts sum to %d, want %d", total, out.Collapsed)
	}
	if n := shapes.Grid(6, 6).NumHalfedges(); out.Rejected > n {
		t.Errorf("Rejected = %d exceeds the %d halfedges that ever existed", out.Rejected, n)
	}

	// Same seed, same result.
	m2, _ := run()
	if !mesh.Equal(m1, m2) {
		t.Error("random collapses are not reproducible for a fixed seed")
	}
}

func TestCollapseRandomRunsOut(t *testing.T) {
	m := shapes.Octahedron()
	out, err := Collapse(context.Background(), m, Options{Collapses: 100})
	if err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	// Octahedron, bipyramid, tetrahedron.
	if m.NumVertices() != 4 || out.Collapsed != 2 {
		t.Errorf("vertices = %d, collapsed = %d, want 4 and 2", m.NumVertices(), out.Collapsed)
	}
	// Every half-edge of the final tetrahedron is refused; each counts once
	// however many rounds drew it.
	if out.Rejected < 12 || out.Rejected > 24 {
		t.Errorf("Rejected = %d, want between 12 and the octahedron's 24 halfedges", out.Rejected)
	}
}

func TestCollapseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collapse(ctx, shapes.Icosahedron(), Options{Collapses: 3})
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Shape: ShapeGrid, Resolution: 4, Collapses: 5, Validate: true}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.RunID == "" {
		t.Error("RunID not set")
	}
	if res.CacheHit {
		t.Error("first run should miss the cache")
	}
	if res.Before.Vertices != 25 || res.After.Vertices != 20 {
		t.Errorf("vertices %d -> %d, want 25 -> 20", res.Before.Vertices, res.After.Vertices)
	}
	if res.Before.EulerCharacteristic() != res.After.EulerCharacteristic() {
		t.Error("Euler characteristic changed")
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheHit {
		t.Error("second run should hit the cache")
	}
	if again.RunID == res.RunID {
		t.Error("RunID reused across runs")
	}
	if !mesh.Equal(again.Mesh, res.Mesh) {
		t.Error("cached build led to a different result")
	}

	opts.Refresh = true
	fresh, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerExecuteInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Shape: "torus"}); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("error = %v, want INVALID_SHAPE", err)
	}
}
