package euler

import (
	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
)

// JoinFacet removes the edge of h and merges the face of h into the face on
// the other side. The face of h is deleted; the face of opposite(h) survives
// and is returned.
//
// The edge must be interior, the two faces distinct, and both endpoints must
// keep degree >= 2 afterwards so that no antenna is left behind. Violations
// are reported as PRECONDITION_VIOLATION before anything is written.
func JoinFacet(m *mesh.Mesh, h mesh.HalfedgeID) (mesh.FaceID, error) {
	if !m.HasHalfedge(h) {
		return mesh.NoFace, errors.New(errors.ErrCodePrecondition, "join facet: halfedge %d is not live", h)
	}
	g := m.Opposite(h)
	f, keep := m.Face(h), m.Face(g)
	switch {
	case f == mesh.NoFace || keep == mesh.NoFace:
		return mesh.NoFace, errors.New(errors.ErrCodePrecondition, "join facet: edge of halfedge %d is a border edge", h)
	case f == keep:
		return mesh.NoFace, errors.New(errors.ErrCodePrecondition, "join facet: halfedge %d has face %d on both sides", h, f)
	}
	if d := m.Degree(m.Target(h)); d < 3 {
		return mesh.NoFace, errors.New(errors.ErrCodePrecondition, "join facet: vertex %d has degree %d", m.Target(h), d)
	}
	if d := m.Degree(m.Target(g)); d < 3 {
		return mesh.NoFace, errors.New(errors.ErrCodePrecondition, "join facet: vertex %d has degree %d", m.Target(g), d)
	}

	hp, hn := m.Prev(h), m.Next(h)
	gp, gn := m.Prev(g), m.Next(g)

	// Hand the half-edges of h's loop over to the surviving face first, while
	// the loop is still intact.
	for e := hn; e != h; e = m.Next(e) {
		m.SetFace(e, keep)
	}
	m.Link(gp, hn)
	m.Link(hp, gn)

	if u := m.Target(h); m.VertexHalfedge(u) == h {
		m.SetVertexHalfedge(u, gp)
	}
	if u := m.Target(g); m.VertexHalfedge(u) == g {
		m.SetVertexHalfedge(u, hp)
	}
	if m.FaceHalfedge(keep) == g {
		m.SetFaceHalfedge(keep, gn)
	}

	m.RemoveEdge(h)
	m.RemoveFace(f)
	return keep, nil
}

// EraseFacet deletes the face of h, turning it into part of the border.
// Each half-edge of the face loop whose opposite is already a border
// half-edge is deleted together with that opposite; the others are demoted
// to border half-edges. Vertices left without edges are deleted and returned.
//
// h must not be a border half-edge and the face must touch the border along
// at least one of its edges.
func EraseFacet(m *mesh.Mesh, h mesh.HalfedgeID) ([]mesh.VertexID, error) {
	if !m.HasHalfedge(h) {
		return nil, errors.New(errors.ErrCodePrecondition, "erase facet: halfedge %d is not live", h)
	}
	f := m.Face(h)
	if f == mesh.NoFace {
		return nil, errors.New(errors.ErrCodePrecondition, "erase facet: halfedge %d is a border halfedge", h)
	}

	var loop []mesh.HalfedgeID
	touches := false
	for e := range m.Loop(h) {
		loop = append(loop, e)
		if m.IsBorder(m.Opposite(e)) {
			touches = true
		}
	}
	if !touches {
		return nil, errors.New(errors.ErrCodePrecondition, "erase facet: face %d has no border edge", f)
	}

	for _, e := range loop {
		m.SetFace(e, mesh.NoFace)
	}
	m.RemoveFace(f)

	var isolated []mesh.VertexID
	for _, e := range loop {
		if !m.HasHalfedge(e) || !m.IsBorder(m.Opposite(e)) {
			continue
		}
		isolated = append(isolated, removeBorderEdge(m, e)...)
	}
	return isolated, nil
}

// removeBorderEdge deletes an edge with no face on either side, splicing the
// border loops around it, and returns endpoints that lose their last edge.
func removeBorderEdge(m *mesh.Mesh, h mesh.HalfedgeID) []mesh.VertexID {
	o := m.Opposite(h)
	hp, hn := m.Prev(h), m.Next(h)
	op, on := m.Prev(o), m.Next(o)
	w, u := m.Target(h), m.Target(o)

	var isolated []mesh.VertexID
	if hn == o {
		isolated = append(isolated, w)
	} else {
		m.Link(op, hn)
		if m.VertexHalfedge(w) == h {
			m.SetVertexHalfedge(w, op)
		}
	}
	if on == h {
		isolated = append(isolated, u)
	} else {
		m.Link(hp, on)
		if m.VertexHalfedge(u) == o {
			m.SetVertexHalfedge(u, hp)
		}
	}

	m.RemoveEdge(h)
	for _, v := range isolated {
		m.RemoveVertex(v)
	}
	return isolated
}

// JoinVertex removes the edge of pq and merges p = source(pq) into
// q = target(pq): every half-edge that targeted p is retargeted to q and p is
// deleted. It returns q.
//
// The loops on both sides of pq, face or border, must have at least four
// half-edges so that neither collapses below a triangle. Whether the merge is
// geometrically or topologically sensible beyond that (the link condition) is
// the caller's concern.
func JoinVertex(m *mesh.Mesh, pq mesh.HalfedgeID) (mesh.VertexID, error) {
	if !m.HasHalfedge(pq) {
		return mesh.NoVertex, errors.New(errors.ErrCodePrecondition, "join vertex: halfedge %d is not live", pq)
	}
	qp := m.Opposite(pq)
	p, q := m.Target(qp), m.Target(pq)
	if p == q {
		return mesh.NoVertex, errors.New(errors.ErrCodePrecondition, "join vertex: halfedge %d is a loop", pq)
	}
	for e := range m.Loop(pq) {
		if e == qp {
			return mesh.NoVertex, errors.New(errors.ErrCodePrecondition, "join vertex: both sides of halfedge %d lie on one loop", pq)
		}
	}
	for _, s := range [2]mesh.HalfedgeID{pq, qp} {
		if n := m.LoopLength(s); n < 4 {
			return mesh.NoVertex, errors.New(errors.ErrCodePrecondition,
				"join vertex: loop of halfedge %d has %d halfedges, need at least 4", s, n)
		}
	}

	var retarget []mesh.HalfedgeID
	for e := range m.Incoming(p) {
		if e != qp {
			retarget = append(retarget, e)
		}
	}

	hp, hn := m.Prev(pq), m.Next(pq)
	op, on := m.Prev(qp), m.Next(qp)

	for _, e := range retarget {
		m.SetTarget(e, q)
	}
	m.Link(hp, hn)
	m.Link(op, on)

	if f := m.Face(pq); f != mesh.NoFace && m.FaceHalfedge(f) == pq {
		m.SetFaceHalfedge(f, hn)
	}
	if f := m.Face(qp); f != mesh.NoFace && m.FaceHalfedge(f) == qp {
		m.SetFaceHalfedge(f, on)
	}
	if m.VertexHalfedge(q) == pq {
		m.SetVertexHalfedge(q, op)
	}

	m.RemoveEdge(pq)
	m.RemoveVertex(p)
	return q, nil
}
