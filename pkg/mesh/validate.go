package mesh

import (
	"github.com/matzehuels/meshsurgery/pkg/errors"
)

// Validate checks the structural invariants of the whole mesh:
//
//   - opposite(opposite(h)) == h, and an edge never joins a vertex to itself
//   - next(prev(h)) == h, prev(next(h)) == h and target(prev(h)) == source(h)
//   - every loop closes, has at least three half-edges and a single owner
//     (one face, or the border)
//   - face and vertex back-pointers refer to live elements of the right loop
//     or fan
//   - every vertex has a single fan covering all of its incoming half-edges
//   - the live counters agree with the arenas
//
// It returns the first violation found, coded INVARIANT_VIOLATION.
func (m *Mesh) Validate() error {
	var nv, nh, nf int
	for i := 1; i < len(m.vertices); i++ {
		if !m.vertices[i].removed {
			nv++
		}
	}
	for i := 1; i < len(m.halfedges); i++ {
		if !m.halfedges[i].removed {
			nh++
		}
	}
	for i := 1; i < len(m.faces); i++ {
		if !m.faces[i].removed {
			nf++
		}
	}
	if nv != m.numVertices || nh != m.numHalfedges || nf != m.numFaces {
		return errors.New(errors.ErrCodeInvariant, "live counters (%d, %d, %d) disagree with arenas (%d, %d, %d)",
			m.numVertices, m.numHalfedges, m.numFaces, nv, nh, nf)
	}

	for _, h := range m.Halfedges() {
		if err := m.checkLinks(h); err != nil {
			return err
		}
	}

	visited := make([]bool, len(m.halfedges))
	for _, f := range m.Faces() {
		if err := m.checkFace(f); err != nil {
			return err
		}
	}
	for _, h := range m.Halfedges() {
		if visited[h] {
			continue
		}
		if err := m.checkLoop(h); err != nil {
			return err
		}
		for g := range m.Loop(h) {
			visited[g] = true
		}
	}

	incoming := make([]int, len(m.vertices))
	for _, h := range m.Halfedges() {
		incoming[m.Target(h)]++
	}
	for _, v := range m.Vertices() {
		if err := m.checkFan(v); err != nil {
			return err
		}
		if d := m.Degree(v); d != incoming[v] {
			return errors.New(errors.ErrCodeInvariant, "vertex %d: fan reaches %d of %d incoming half-edges", v, d, incoming[v])
		}
	}
	return nil
}

// CheckHalfedge validates the loops on both sides of h's edge.
func (m *Mesh) CheckHalfedge(h HalfedgeID) error {
	if !m.HasHalfedge(h) {
		return errors.New(errors.ErrCodeInvariant, "halfedge %d is not live", h)
	}
	for _, s := range [2]HalfedgeID{h, m.Opposite(h)} {
		if err := m.checkLinks(s); err != nil {
			return err
		}
		if err := m.checkLoop(s); err != nil {
			return err
		}
	}
	return nil
}

// CheckVertex validates the fan around v and every loop that touches it.
func (m *Mesh) CheckVertex(v VertexID) error {
	if err := m.checkFan(v); err != nil {
		return err
	}
	for h := range m.Incoming(v) {
		if err := m.CheckHalfedge(h); err != nil {
			return err
		}
	}
	return nil
}

// checkLinks checks the pointers of a single half-edge.
func (m *Mesh) checkLinks(h HalfedgeID) error {
	he := m.halfedges[h]
	switch {
	case !m.HasVertex(he.target):
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: target %d is not live", h, he.target)
	case !m.HasHalfedge(he.opposite) || he.opposite == h:
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: opposite %d is not a live partner", h, he.opposite)
	case m.halfedges[he.opposite].opposite != h:
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: opposite(opposite(h)) = %d", h, m.halfedges[he.opposite].opposite)
	case !m.HasHalfedge(he.next) || !m.HasHalfedge(he.prev):
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: next %d or prev %d is not live", h, he.next, he.prev)
	case m.halfedges[he.next].prev != h:
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: prev(next(h)) = %d", h, m.halfedges[he.next].prev)
	case m.halfedges[he.prev].next != h:
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: next(prev(h)) = %d", h, m.halfedges[he.prev].next)
	case m.Source(h) == he.target:
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: loops on vertex %d", h, he.target)
	case m.Target(he.prev) != m.Source(h):
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: prev ends at %d, h starts at %d", h, m.Target(he.prev), m.Source(h))
	case he.face != NoFace && !m.HasFace(he.face):
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: face %d is not live", h, he.face)
	case m.halfedges[he.next].face != he.face:
		return errors.New(errors.ErrCodeInvariant, "halfedge %d: next belongs to face %d, h to face %d", h, m.halfedges[he.next].face, he.face)
	}
	return nil
}

// checkLoop walks the loop containing h: it must close, have at least three
// half-edges and a single owner.
func (m *Mesh) checkLoop(h HalfedgeID) error {
	owner := m.Face(h)
	n, closed := 0, false
	g := h
	for range len(m.halfedges) {
		if !m.HasHalfedge(g) {
			return errors.New(errors.ErrCodeInvariant, "loop of halfedge %d: reaches dead halfedge %d", h, g)
		}
		if m.Face(g) != owner {
			return errors.New(errors.ErrCodeInvariant, "loop of halfedge %d: halfedge %d owned by face %d, want %d", h, g, m.Face(g), owner)
		}
		n++
		g = m.Next(g)
		if g == h {
			closed = true
			break
		}
	}
	if !closed {
		return errors.New(errors.ErrCodeInvariant, "loop of halfedge %d does not close", h)
	}
	if n < 3 {
		return errors.New(errors.ErrCodeInvariant, "loop of halfedge %d has %d halfedges", h, n)
	}
	return nil
}

func (m *Mesh) checkFace(f FaceID) error {
	h := m.faces[f].halfedge
	if !m.HasHalfedge(h) || m.Face(h) != f {
		return errors.New(errors.ErrCodeInvariant, "face %d: halfedge %d does not bound it", f, h)
	}
	return nil
}

// checkFan checks v's back-pointer and that every half-edge of its fan
// targets v.
func (m *Mesh) checkFan(v VertexID) error {
	if !m.HasVertex(v) {
		return errors.New(errors.ErrCodeInvariant, "vertex %d is not live", v)
	}
	h := m.vertices[v].halfedge
	if !m.HasHalfedge(h) || m.Target(h) != v {
		return errors.New(errors.ErrCodeInvariant, "vertex %d: halfedge %d does not target it", v, h)
	}
	n, closed := 0, false
	g := h
	for range len(m.halfedges) {
		if !m.HasHalfedge(g) || m.Target(g) != v {
			return errors.New(errors.ErrCodeInvariant, "vertex %d: fan reaches halfedge %d", v, g)
		}
		n++
		nx := m.Next(g)
		if !m.HasHalfedge(nx) {
			return errors.New(errors.ErrCodeInvariant, "vertex %d: fan reaches dead halfedge %d", v, nx)
		}
		g = m.Opposite(nx)
		if g == h {
			closed = true
			break
		}
	}
	if !closed {
		return errors.New(errors.ErrCodeInvariant, "vertex %d: fan does not close", v)
	}
	if n < 2 {
		return errors.New(errors.ErrCodeInvariant, "vertex %d has degree %d", v, n)
	}
	return nil
}
