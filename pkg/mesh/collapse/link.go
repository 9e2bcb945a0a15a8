package collapse

import (
	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
)

// CheckLink reports whether collapsing pq keeps the mesh a 2-manifold
// without duplicated edges, returning an error coded NOT_COLLAPSIBLE if not.
// It also runs [Classify], so a nil result means [Collapse] will succeed on a
// valid mesh.
//
// The conditions are:
//   - the only vertices adjacent to both p and q are the far vertices t and b
//   - an interior edge must have distinct far vertices
//   - an interior edge must not join two border vertices
//   - a closed mesh must keep more than four vertices
//
// Collapse itself never calls CheckLink; choosing collapsible edges is the
// driver's job.
func CheckLink(m *mesh.Mesh, pq mesh.HalfedgeID) error {
	t, err := Classify(m, pq)
	if err != nil {
		return err
	}

	if t.TopFace && t.BottomFace && t.T == t.B {
		return errors.New(errors.ErrCodeNotCollapsible, "both faces of halfedge %d have far vertex %d", pq, t.T)
	}

	ring := make(map[mesh.VertexID]bool)
	for h := range m.Incoming(t.P) {
		ring[m.Source(h)] = true
	}
	for h := range m.Incoming(t.Q) {
		u := m.Source(h)
		if !ring[u] || u == t.P {
			continue
		}
		if (t.TopFace && u == t.T) || (t.BottomFace && u == t.B) {
			continue
		}
		return errors.New(errors.ErrCodeNotCollapsible, "vertices %d and %d share neighbour %d outside their faces", t.P, t.Q, u)
	}

	if t.TopFace && t.BottomFace && m.IsBorderVertex(t.P) && m.IsBorderVertex(t.Q) {
		return errors.New(errors.ErrCodeNotCollapsible, "interior edge joins border vertices %d and %d", t.P, t.Q)
	}
	if m.NumBorderHalfedges() == 0 && m.NumVertices() <= 4 {
		return errors.New(errors.ErrCodeNotCollapsible, "closed mesh has only %d vertices", m.NumVertices())
	}
	return nil
}

// Collapsible returns the edges of m, one half-edge each, that pass
// [CheckLink] in either direction. The half-edge returned is the direction
// that passed, preferring the lower ID.
func Collapsible(m *mesh.Mesh) []mesh.HalfedgeID {
	var out []mesh.HalfedgeID
	for _, h := range m.Edges() {
		switch {
		case CheckLink(m, h) == nil:
			out = append(out, h)
		case CheckLink(m, m.Opposite(h)) == nil:
			out = append(out, m.Opposite(h))
		}
	}
	return out
}
