package collapse

import (
	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
)

// Action is what happens to one side (wedge) of the collapsed edge.
type Action uint8

const (
	// ActionNone: there is no face on this side.
	ActionNone Action = iota
	// ActionJoin: the side face is merged into its neighbour across the far edge.
	ActionJoin
	// ActionErase: the neighbour is missing, so the side face is erased.
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionJoin:
		return "join"
	case ActionErase:
		return "erase"
	}
	return "none"
}

// Class is the local topology of an edge collapse: the pair of actions taken
// on the top (face of pq) and bottom (face of qp) sides.
type Class uint8

const (
	ClassJoinBoth Class = iota
	ClassJoinTopEraseBottom
	ClassEraseTopJoinBottom
	ClassEraseBoth
	ClassJoinTop
	ClassEraseTop
	ClassJoinBottom
	ClassEraseBottom
)

// Classes lists every topology class.
var Classes = []Class{
	ClassJoinBoth, ClassJoinTopEraseBottom, ClassEraseTopJoinBottom, ClassEraseBoth,
	ClassJoinTop, ClassEraseTop, ClassJoinBottom, ClassEraseBottom,
}

var classNames = [...]string{
	ClassJoinBoth:           "join-both",
	ClassJoinTopEraseBottom: "join-top-erase-bottom",
	ClassEraseTopJoinBottom: "erase-top-join-bottom",
	ClassEraseBoth:          "erase-both",
	ClassJoinTop:            "join-top",
	ClassEraseTop:           "erase-top",
	ClassJoinBottom:         "join-bottom",
	ClassEraseBottom:        "erase-bottom",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Actions returns the top and bottom actions of c.
func (c Class) Actions() (top, bottom Action) {
	switch c {
	case ClassJoinBoth:
		return ActionJoin, ActionJoin
	case ClassJoinTopEraseBottom:
		return ActionJoin, ActionErase
	case ClassEraseTopJoinBottom:
		return ActionErase, ActionJoin
	case ClassEraseBoth:
		return ActionErase, ActionErase
	case ClassJoinTop:
		return ActionJoin, ActionNone
	case ClassEraseTop:
		return ActionErase, ActionNone
	case ClassJoinBottom:
		return ActionNone, ActionJoin
	case ClassEraseBottom:
		return ActionNone, ActionErase
	}
	return ActionNone, ActionNone
}

// FacesRemoved returns how many faces a collapse of class c deletes.
func (c Class) FacesRemoved() int {
	top, bottom := c.Actions()
	n := 0
	if top != ActionNone {
		n++
	}
	if bottom != ActionNone {
		n++
	}
	return n
}

func classOf(top, bottom Action) Class {
	for _, c := range Classes {
		if t, b := c.Actions(); t == top && b == bottom {
			return c
		}
	}
	panic("collapse: edge has no face on either side")
}

// Topology is the classified neighbourhood of a half-edge pq.
//
//	        t
//	      /   \
//	 top-left  top
//	    /       \
//	   p ------> q
//	    \       /
//	  bottom  bottom-right
//	      \   /
//	        b
//
// The top face is the face of pq, the bottom face the face of qp. The
// top-left face lies across edge p-t, the bottom-right face across q-b.
type Topology struct {
	PQ, QP mesh.HalfedgeID
	P, Q   mesh.VertexID

	// TP is prev(pq), running t -> p in the top face. BQ is prev(qp),
	// running b -> q in the bottom face. Unset when the side has no face.
	TP, BQ mesh.HalfedgeID
	T, B   mesh.VertexID

	TopFace, BottomFace, TopLeftFace, BottomRightFace bool

	Class Class
}

// SurvivorIsP reports whether the collapse keeps p, which happens only when
// the bottom face is erased with no top face.
func (t Topology) SurvivorIsP() bool { return t.Class == ClassEraseBottom }

// Classify derives the presence predicates around pq and checks the
// preconditions of a collapse. Nothing is written.
//
// A collapse requires at least one face on pq's edge, triangular faces on the
// present sides, and a far vertex of degree > 2 on each present side. An edge
// classed [ClassEraseBoth] is rejected too: erasing the top face leaves p-q on
// the border and erasing the bottom face then deletes it. Violations are coded
// PRECONDITION_VIOLATION.
func Classify(m *mesh.Mesh, pq mesh.HalfedgeID) (Topology, error) {
	if !m.HasHalfedge(pq) {
		return Topology{}, errors.New(errors.ErrCodePrecondition, "halfedge %d is not live", pq)
	}
	qp := m.Opposite(pq)
	t := Topology{
		PQ: pq,
		QP: qp,
		P:  m.Target(qp),
		Q:  m.Target(pq),
	}
	t.TopFace = !m.IsBorder(pq)
	t.BottomFace = !m.IsBorder(qp)
	if !t.TopFace && !t.BottomFace {
		return Topology{}, errors.New(errors.ErrCodePrecondition, "edge of halfedge %d has no incident face", pq)
	}

	top, bottom := ActionNone, ActionNone
	if t.TopFace {
		if n := m.LoopLength(pq); n != 3 {
			return Topology{}, errors.New(errors.ErrCodePrecondition, "top face %d is not a triangle (%d edges)", m.Face(pq), n)
		}
		t.TP = m.Prev(pq)
		t.T = m.Source(t.TP)
		if d := m.Degree(t.T); d <= 2 {
			return Topology{}, errors.New(errors.ErrCodePrecondition, "top far vertex %d has degree %d", t.T, d)
		}
		t.TopLeftFace = !m.IsBorder(m.Opposite(t.TP))
		top = ActionErase
		if t.TopLeftFace {
			top = ActionJoin
		}
	}
	if t.BottomFace {
		if n := m.LoopLength(qp); n != 3 {
			return Topology{}, errors.New(errors.ErrCodePrecondition, "bottom face %d is not a triangle (%d edges)", m.Face(qp), n)
		}
		t.BQ = m.Prev(qp)
		t.B = m.Source(t.BQ)
		if d := m.Degree(t.B); d <= 2 {
			return Topology{}, errors.New(errors.ErrCodePrecondition, "bottom far vertex %d has degree %d", t.B, d)
		}
		t.BottomRightFace = !m.IsBorder(m.Opposite(t.BQ))
		bottom = ActionErase
		if t.BottomRightFace {
			bottom = ActionJoin
		}
	}
	t.Class = classOf(top, bottom)
	if t.Class == ClassEraseBoth {
		return Topology{}, errors.New(errors.ErrCodePrecondition,
			"halfedge %d: both faces must be erased, which would delete the edge itself", pq)
	}
	return t, nil
}
