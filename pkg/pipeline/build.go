package pipeline

import (
	"bytes"
	"context"
	"os"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/sdfmesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/shapes"
)

// roundRatio is the edge rounding of the box and cylinder relative to the
// radius.
const roundRatio = 0.1

// Generate builds the initial mesh described by opts without caching.
// opts must have been validated.
func Generate(ctx context.Context, opts Options) (*mesh.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, r := opts.Resolution, opts.Radius

	switch opts.Shape {
	case ShapeTetrahedron:
		return shapes.Tetrahedron(), nil
	case ShapeOctahedron:
		return shapes.Octahedron(), nil
	case ShapeIcosahedron:
		return shapes.Icosahedron(), nil
	case ShapeGrid:
		return shapes.Grid(n, n), nil
	case ShapeFan:
		return shapes.Fan(n), nil
	case ShapeSphere:
		return sdfmesh.Sphere(r, n)
	case ShapeBox:
		return sdfmesh.Box(v3.Vec{X: 2 * r, Y: 2 * r, Z: 2 * r}, r*roundRatio, n)
	case ShapeCylinder:
		return sdfmesh.Cylinder(2*r, r, r*roundRatio, n)
	case ShapeFile:
		data, err := readInput(opts.Input)
		if err != nil {
			return nil, err
		}
		return mesh.ReadSoup(bytes.NewReader(data))
	}
	return nil, errors.New(errors.ErrCodeInvalidShape, "unknown shape %q", opts.Shape)
}

// readInput reads a soup file, mapping a missing file to FILE_NOT_FOUND.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read input %s", path)
	}
	return data, nil
}
