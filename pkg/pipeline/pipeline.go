// Package pipeline provides the build → collapse → validate pipeline shared
// by the meshsurgery commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: generate a shape or read a soup file (cached by [cache.Keyer])
//  2. Collapse: apply explicit half-edge collapses in order, or a number of
//     random collapses among the edges that pass the link condition
//  3. Validate: optionally check every mesh invariant
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Shape:      "sphere",
//	    Resolution: 24,
//	    Collapses:  200,
//	    Validate:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Before, "->", result.After)
//
// Stages can be run on their own with [Runner.Build] and [Collapse].
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshsurgery/pkg/cache"
	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI commands
// =============================================================================

const (
	// DefaultShape is generated when no shape or input is given.
	DefaultShape = ShapeIcosahedron

	// DefaultRadius is the radius (or half-size) of the SDF shapes.
	DefaultRadius = 1.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Shape names.
const (
	ShapeTetrahedron = "tetrahedron"
	ShapeOctahedron  = "octahedron"
	ShapeIcosahedron = "icosahedron"
	ShapeGrid        = "grid"
	ShapeFan         = "fan"
	ShapeSphere      = "sphere"
	ShapeBox         = "box"
	ShapeCylinder    = "cylinder"

	// ShapeFile reads a polygon soup from Options.Input.
	ShapeFile = "file"
)

// Shapes lists the generated shapes in display order.
var Shapes = []string{
	ShapeTetrahedron, ShapeOctahedron, ShapeIcosahedron,
	ShapeGrid, ShapeFan,
	ShapeSphere, ShapeBox, ShapeCylinder,
}

// resolution is the accepted resolution range and default of a shape.
// Shapes without an entry ignore Resolution.
type resolution struct{ lo, hi, def int }

var resolutions = map[string]resolution{
	ShapeGrid:     {1, 256, 8},
	ShapeFan:      {3, 4096, 8},
	ShapeSphere:   {2, 256, 24},
	ShapeBox:      {2, 256, 24},
	ShapeCylinder: {2, 256, 24},
}

// IsSDF reports whether shape is polygonized from a signed distance field.
func IsSDF(shape string) bool {
	return shape == ShapeSphere || shape == ShapeBox || shape == ShapeCylinder
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Build options
	Shape      string  `json:"shape"`
	Resolution int     `json:"resolution,omitempty"` // grid cells per side, fan triangles, or marching cubes cells
	Radius     float64 `json:"radius,omitempty"`     // SDF shapes only
	Input      string  `json:"input,omitempty"`      // soup JSON path; implies shape "file"
	Refresh    bool    `json:"refresh,omitempty"`    // bypass the mesh cache

	// Collapse options. Edges takes precedence over Collapses.
	Edges     []int  `json:"edges,omitempty"`
	Collapses int    `json:"collapses,omitempty"`
	Seed      uint64 `json:"seed,omitempty"`

	// Validate runs a full invariant check after the collapses.
	Validate bool `json:"validate,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Mesh is the mesh after all collapses.
	Mesh *mesh.Mesh

	Before mesh.Counts
	After  mesh.Counts

	// Collapsed is the number of successful collapses. Rejected counts the
	// distinct random candidates that were refused, each once.
	Collapsed int
	Rejected  int

	// Classes counts successful collapses per topology class name.
	Classes map[string]int

	// Stats contains timing information.
	Stats Stats

	// CacheHit reports whether the initial mesh came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BuildTime    time.Duration
	CollapseTime time.Duration
	ValidateTime time.Duration
}

// =============================================================================
// Validation
// =============================================================================

// ValidateShape checks that a shape name is known.
func ValidateShape(shape string) error {
	return errors.ValidateShapeName(shape, append(Shapes[:len(Shapes):len(Shapes)], ShapeFile))
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input != "" {
		if o.Shape != "" && o.Shape != ShapeFile {
			return errors.New(errors.ErrCodeInvalidInput, "shape %q given together with an input file", o.Shape)
		}
		o.Shape = ShapeFile
		if err := errors.ValidatePath(o.Input); err != nil {
			return err
		}
		if ext := filepath.Ext(o.Input); ext != ".json" {
			return errors.New(errors.ErrCodeUnsupported, "input %s: only polygon soup .json files are supported", o.Input)
		}
	}
	o.Shape = strings.ToLower(strings.TrimSpace(o.Shape))
	if o.Shape == "" {
		o.Shape = DefaultShape
	}
	if err := ValidateShape(o.Shape); err != nil {
		return err
	}
	if o.Shape == ShapeFile && o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "shape %q needs an input path", ShapeFile)
	}

	if r, ok := resolutions[o.Shape]; ok {
		if o.Resolution == 0 {
			o.Resolution = r.def
		}
		if err := errors.ValidateResolution(o.Resolution, r.lo, r.hi); err != nil {
			return err
		}
	}
	if IsSDF(o.Shape) {
		if o.Radius == 0 {
			o.Radius = DefaultRadius
		}
		if err := errors.ValidateRadius(o.Radius); err != nil {
			return err
		}
	}

	if o.Collapses < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "collapses must be >= 0, got %d", o.Collapses)
	}
	for _, h := range o.Edges {
		if h <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "halfedge IDs start at 1, got %d", h)
		}
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// MeshKeyOpts returns cache key options for the build stage. inputHash is
// the content hash of the input file, if any.
func (o *Options) MeshKeyOpts(inputHash string) cache.MeshKeyOpts {
	return cache.MeshKeyOpts{
		Resolution: o.Resolution,
		Radius:     o.Radius,
		Input:      inputHash,
	}
}

// String summarizes the build options for log lines.
func (o *Options) String() string {
	switch {
	case o.Shape == ShapeFile:
		return fmt.Sprintf("file %s", o.Input)
	case IsSDF(o.Shape):
		return fmt.Sprintf("%s r=%g cells=%d", o.Shape, o.Radius, o.Resolution)
	case o.Resolution > 0:
		return fmt.Sprintf("%s n=%d", o.Shape, o.Resolution)
	}
	return o.Shape
}
