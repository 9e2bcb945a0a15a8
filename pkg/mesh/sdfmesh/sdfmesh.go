// Package sdfmesh polygonizes signed distance fields into half-edge meshes.
//
// Fields are built and rendered with github.com/deadsy/sdfx: a uniform
// marching cubes pass produces a triangle soup with one copy of every vertex
// per triangle, which is then welded and handed to [mesh.FromPolygons].
package sdfmesh

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
)

// weldRatio scales the bounding box diagonal into the weld tolerance.
const weldRatio = 1e-7

// Sphere polygonizes a sphere of the given radius centered at the origin.
// cells is the number of marching cubes cells along the longest axis.
func Sphere(radius float64, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "sphere")
	}
	return FromSDF(s, cells)
}

// Box polygonizes an axis-aligned box centered at the origin with edges
// rounded by round.
func Box(size v3.Vec, round float64, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Box3D(size, round)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "box")
	}
	return FromSDF(s, cells)
}

// Cylinder polygonizes a Z-aligned cylinder centered at the origin.
func Cylinder(height, radius, round float64, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, round)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cylinder")
	}
	return FromSDF(s, cells)
}

// FromSDF polygonizes s and builds a mesh from the welded soup.
func FromSDF(s sdf.SDF3, cells int) (*mesh.Mesh, error) {
	soup, err := Soup(s, cells)
	if err != nil {
		return nil, err
	}
	m, err := mesh.FromSoup(soup)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "polygonized field is not a manifold mesh")
	}
	return m, nil
}

// Soup renders s with marching cubes and welds coincident vertices.
// Triangles that degenerate under welding, and repeats of a triangle already
// emitted, are dropped.
func Soup(s sdf.SDF3, cells int) (mesh.Soup, error) {
	if cells < 2 {
		return mesh.Soup{}, errors.New(errors.ErrCodeInvalidInput, "marching cubes needs at least 2 cells, got %d", cells)
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	bb := s.BoundingBox()
	dx, dy, dz := bb.Max.X-bb.Min.X, bb.Max.Y-bb.Min.Y, bb.Max.Z-bb.Min.Z
	w := newWelder(math.Sqrt(dx*dx+dy*dy+dz*dz) * weldRatio)

	seen := make(map[[3]int]bool, len(triangles))
	polys := make([][]int, 0, len(triangles))
	for _, tri := range triangles {
		a, b, c := w.add(tri[0]), w.add(tri[1]), w.add(tri[2])
		if a == b || b == c || c == a {
			continue
		}
		k := sorted3(a, b, c)
		if seen[k] {
			continue
		}
		seen[k] = true
		polys = append(polys, []int{a, b, c})
	}
	if len(polys) == 0 {
		return mesh.Soup{}, errors.New(errors.ErrCodeInvalidInput, "field produced no triangles at %d cells", cells)
	}

	out := mesh.Soup{
		Points:   make([][3]float64, len(w.points)),
		Polygons: polys,
	}
	for i, p := range w.points {
		out.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out, nil
}

// welder merges points closer than tol using a hash grid with tol-sized
// buckets, probing the 27 buckets around each query.
type welder struct {
	tol     float64
	buckets map[[3]int64][]int
	points  []v3.Vec
}

func newWelder(tol float64) *welder {
	if tol <= 0 {
		tol = 1e-12
	}
	return &welder{tol: tol, buckets: make(map[[3]int64][]int)}
}

func (w *welder) key(p v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

func (w *welder) add(p v3.Vec) int {
	k := w.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.buckets[[3]int64{k[0] + dx, k[1] + dy, k[2] + dz}] {
					q := w.points[i]
					if math.Abs(q.X-p.X) <= w.tol && math.Abs(q.Y-p.Y) <= w.tol && math.Abs(q.Z-p.Z) <= w.tol {
						return i
					}
				}
			}
		}
	}
	i := len(w.points)
	w.points = append(w.points, p)
	w.buckets[k] = append(w.buckets[k], i)
	return i
}

func sorted3(a, b, c int) [3]int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]int{a, b, c}
}
