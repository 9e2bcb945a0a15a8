package euler

import (
	"slices"
	"testing"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/shapes"
)

// gridVertex maps grid coordinates to a VertexID.
func gridVertex(nx, i, j int) mesh.VertexID {
	return mesh.VertexID(shapes.GridIndex(nx, i, j) + 1)
}

func mustFind(t *testing.T, m *mesh.Mesh, from, to mesh.VertexID) mesh.HalfedgeID {
	t.Helper()
	h := m.FindHalfedge(from, to)
	if h == mesh.NoHalfedge {
		t.Fatalf("no halfedge %d -> %d", from, to)
	}
	return h
}

func mustValidate(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestJoinFacet(t *testing.T) {
	m := shapes.Octahedron()
	h := mustFind(t, m, 5, 1) // +Z -> +X
	gone, keep := m.Face(h), m.Face(m.Opposite(h))

	got, err := JoinFacet(m, h)
	if err != nil {
		t.Fatalf("JoinFacet: %v", err)
	}
	if got != keep {
		t.Errorf("JoinFacet returned face %d, want %d", got, keep)
	}
	if m.HasFace(gone) {
		t.Errorf("face %d of h still live", gone)
	}
	if d := m.FaceDegree(keep); d != 4 {
		t.Errorf("merged face degree = %d, want 4", d)
	}
	want := mesh.Counts{Vertices: 6, Edges: 11, Faces: 7}
	if c := m.Counts(); c != want {
		t.Errorf("Counts() = %+v, want %+v", c, want)
	}
	mustValidate(t, m)
}

func TestJoinFacetPreconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) (*mesh.Mesh, mesh.HalfedgeID)
	}{
		{"border edge", func(t *testing.T) (*mesh.Mesh, mesh.HalfedgeID) {
			m := shapes.Grid(1, 1)
			return m, m.Opposite(mustFind(t, m, gridVertex(1, 0, 0), gridVertex(1, 1, 0)))
		}},
		{"interior side of border edge", func(t *testing.T) (*mesh.Mesh, mesh.HalfedgeID) {
			m := shapes.Grid(1, 1)
			return m, mustFind(t, m, gridVertex(1, 0, 0), gridVertex(1, 1, 0))
		}},
		{"dead halfedge", func(t *testing.T) (*mesh.Mesh, mesh.HalfedgeID) {
			return shapes.Tetrahedron(), mesh.HalfedgeID(999)
		}},
		{"antenna", func(t *testing.T) (*mesh.Mesh, mesh.HalfedgeID) {
			m := shapes.Tetrahedron()
			h := m.Edges()[0]
			if _, err := JoinFacet(m, h); err != nil {
				t.Fatalf("first JoinFacet: %v", err)
			}
			// The endpoints of h now have degree 2.
			w := m.Target(m.Prev(m.Next(m.Opposite(h))))
			for _, e := range m.Halfedges() {
				if m.Target(e) == w && !m.IsBorder(e) && m.Face(e) != m.Face(m.Opposite(e)) {
					return m, e
				}
			}
			t.Fatal("no edge at degree-2 vertex")
			return nil, mesh.NoHalfedge
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := tt.setup(t)
			before := m.Clone()
			_, err := JoinFacet(m, h)
			if !errors.Is(err, errors.ErrCodePrecondition) {
				t.Fatalf("JoinFacet error = %v, want PRECONDITION_VIOLATION", err)
			}
			if !mesh.Equal(m, before) {
				t.Error("rejected JoinFacet modified the mesh")
			}
		})
	}
}

func TestEraseFacetCorner(t *testing.T) {
	m := shapes.Grid(2, 2)
	corner := gridVertex(2, 2, 0)
	h := mustFind(t, m, gridVertex(2, 1, 0), corner)
	before := m.Counts()

	removed, err := EraseFacet(m, h)
	if err != nil {
		t.Fatalf("EraseFacet: %v", err)
	}
	if !slices.Equal(removed, []mesh.VertexID{corner}) {
		t.Errorf("removed = %v, want [%d]", removed, corner)
	}
	if m.HasVertex(corner) {
		t.Error("corner vertex still live")
	}
	diff := m.Counts().Sub(before)
	want := mesh.Counts{Vertices: -1, Edges: -2, Faces: -1, BorderEdges: -1}
	if diff != want {
		t.Errorf("count change = %+v, want %+v", diff, want)
	}
	mustValidate(t, m)

	// The diagonal survives as a border edge.
	d := mustFind(t, m, gridVertex(2, 2, 1), gridVertex(2, 1, 0))
	if !m.IsBorder(d) {
		t.Error("diagonal of the erased face was not demoted to border")
	}
}

func TestEraseFacetPreconditions(t *testing.T) {
	tests := []struct {
		name string
		m    *mesh.Mesh
		h    func(m *mesh.Mesh) mesh.HalfedgeID
	}{
		{"interior face", shapes.Octahedron(), func(m *mesh.Mesh) mesh.HalfedgeID { return m.Edges()[0] }},
		{"border halfedge", shapes.Fan(4), func(m *mesh.Mesh) mesh.HalfedgeID {
			return m.FindHalfedge(3, 2)
		}},
		{"nil halfedge", shapes.Fan(4), func(*mesh.Mesh) mesh.HalfedgeID { return mesh.NoHalfedge }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.m.Clone()
			_, err := EraseFacet(tt.m, tt.h(tt.m))
			if !errors.Is(err, errors.ErrCodePrecondition) {
				t.Fatalf("EraseFacet error = %v, want PRECONDITION_VIOLATION", err)
			}
			if !mesh.Equal(tt.m, before) {
				t.Error("rejected EraseFacet modified the mesh")
			}
		})
	}
}

func TestJoinVertex(t *testing.T) {
	m := shapes.Grid(1, 1)
	p, q := gridVertex(1, 0, 0), gridVertex(1, 1, 0)

	// Merge the two triangles into a quad first so both loops of p-q have
	// four half-edges.
	diag := mustFind(t, m, p, gridVertex(1, 1, 1))
	if _, err := JoinFacet(m, diag); err != nil {
		t.Fatalf("JoinFacet: %v", err)
	}
	pq := mustFind(t, m, p, q)

	got, err := JoinVertex(m, pq)
	if err != nil {
		t.Fatalf("JoinVertex: %v", err)
	}
	if got != q {
		t.Errorf("JoinVertex returned %d, want %d", got, q)
	}
	if m.HasVertex(p) || !m.HasVertex(q) {
		t.Errorf("HasVertex(p) = %t, HasVertex(q) = %t", m.HasVertex(p), m.HasVertex(q))
	}
	for _, h := range m.Halfedges() {
		if m.Target(h) == p {
			t.Errorf("halfedge %d still targets removed vertex %d", h, p)
		}
	}
	want := mesh.Counts{Vertices: 3, Edges: 3, Faces: 1, BorderEdges: 3}
	if c := m.Counts(); c != want {
		t.Errorf("Counts() = %+v, want %+v", c, want)
	}
	mustValidate(t, m)
}

func TestJoinVertexRejectsTriangles(t *testing.T) {
	m := shapes.Octahedron()
	before := m.Clone()

	_, err := JoinVertex(m, mustFind(t, m, 5, 1))
	if !errors.Is(err, errors.ErrCodePrecondition) {
		t.Fatalf("JoinVertex error = %v, want PRECONDITION_VIOLATION", err)
	}
	if !mesh.Equal(m, before) {
		t.Error("rejected JoinVertex modified the mesh")
	}
}
