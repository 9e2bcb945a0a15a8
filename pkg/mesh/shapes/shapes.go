// Package shapes generates small triangulated meshes with known topology.
//
// The closed solids ([Tetrahedron], [Octahedron], [Icosahedron]) have no
// border. [Grid] and [Fan] are disks with a single border loop. All faces are
// counter-clockwise seen from outside (or from +Z for the planar shapes).
package shapes

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/matzehuels/meshsurgery/pkg/mesh"
)

func build(points []v3.Vec, tris [][]int) *mesh.Mesh {
	m, err := mesh.FromPolygons(points, tris)
	if err != nil {
		panic(fmt.Sprintf("shapes: %v", err))
	}
	return m
}

// Tetrahedron returns a regular tetrahedron: 4 vertices, 6 edges, 4 faces.
func Tetrahedron() *mesh.Mesh {
	points := []v3.Vec{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
	tris := [][]int{
		{0, 1, 2},
		{0, 3, 1},
		{0, 2, 3},
		{1, 3, 2},
	}
	return build(points, tris)
}

// Octahedron returns a unit octahedron: 6 vertices, 12 edges, 8 faces.
// Vertex indices are +X, -X, +Y, -Y, +Z, -Z.
func Octahedron() *mesh.Mesh {
	points := []v3.Vec{
		{X: 1}, {X: -1},
		{Y: 1}, {Y: -1},
		{Z: 1}, {Z: -1},
	}
	tris := [][]int{
		{4, 0, 2}, {4, 2, 1}, {4, 1, 3}, {4, 3, 0},
		{5, 2, 0}, {5, 1, 2}, {5, 3, 1}, {5, 0, 3},
	}
	return build(points, tris)
}

// Icosahedron returns a regular icosahedron inscribed in the unit sphere:
// 12 vertices, 30 edges, 20 faces.
func Icosahedron() *mesh.Mesh {
	phi := (1 + math.Sqrt(5)) / 2
	raw := [][3]float64{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	r := math.Sqrt(1 + phi*phi)
	points := make([]v3.Vec, len(raw))
	for i, p := range raw {
		points[i] = v3.Vec{X: p[0] / r, Y: p[1] / r, Z: p[2] / r}
	}
	tris := [][]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return build(points, tris)
}

// GridIndex returns the soup index of grid vertex (i, j), 0 <= i <= nx and
// 0 <= j <= ny. The mesh VertexID is GridIndex + 1.
func GridIndex(nx, i, j int) int { return j*(nx+1) + i }

// Grid returns a planar nx-by-ny grid in the XY plane. Each unit cell with
// lower-left corner (i, j) is split along its (i, j)-(i+1, j+1) diagonal.
// It has (nx+1)(ny+1) vertices and 2*nx*ny faces.
func Grid(nx, ny int) *mesh.Mesh {
	if nx < 1 || ny < 1 {
		panic(fmt.Sprintf("shapes: grid %dx%d", nx, ny))
	}
	points := make([]v3.Vec, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			points = append(points, v3.Vec{X: float64(i), Y: float64(j)})
		}
	}
	tris := make([][]int, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00 := GridIndex(nx, i, j)
			v10 := GridIndex(nx, i+1, j)
			v01 := GridIndex(nx, i, j+1)
			v11 := GridIndex(nx, i+1, j+1)
			tris = append(tris, []int{v00, v10, v11}, []int{v00, v11, v01})
		}
	}
	return build(points, tris)
}

// Fan returns a disk of n triangles around a center vertex (index 0) with
// rim vertices 1..n on the unit circle. n must be at least 3.
func Fan(n int) *mesh.Mesh {
	if n < 3 {
		panic(fmt.Sprintf("shapes: fan of %d triangles", n))
	}
	points := make([]v3.Vec, 0, n+1)
	points = append(points, v3.Vec{})
	for k := range n {
		a := 2 * math.Pi * float64(k) / float64(n)
		points = append(points, v3.Vec{X: math.Cos(a), Y: math.Sin(a)})
	}
	tris := make([][]int, 0, n)
	for k := range n {
		tris = append(tris, []int{0, 1 + k, 1 + (k+1)%n})
	}
	return build(points, tris)
}
