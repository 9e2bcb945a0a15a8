package collapse

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/euler"
)

// Collapser performs edge collapses. The zero value is ready to use.
type Collapser struct {
	// Logger, if set, receives a debug line for every step of a collapse.
	Logger *log.Logger
}

// Collapse collapses the edge of pq with a zero [Collapser].
func Collapse(m *mesh.Mesh, pq mesh.HalfedgeID) (mesh.VertexID, error) {
	var c Collapser
	return c.Collapse(m, pq)
}

// Collapse merges the endpoints p = source(pq) and q = target(pq) into one
// vertex and returns the survivor. The faces on either side of the edge are
// removed: merged into their neighbour across the far edge when it exists,
// erased otherwise.
//
// Preconditions are checked by [Classify] before anything is written. The
// edits run inside a transaction; if a primitive rejects its input or the
// surviving vertex's neighbourhood fails validation, every write is undone
// and the mesh is left [mesh.Equal] to its prior state. When the mesh already
// has an open transaction the collapse joins it, rolling back to a savepoint
// on failure.
//
// The link condition is not checked; see [CheckLink].
func (c *Collapser) Collapse(m *mesh.Mesh, pq mesh.HalfedgeID) (mesh.VertexID, error) {
	t, err := Classify(m, pq)
	if err != nil {
		return mesh.NoVertex, err
	}
	if err := m.CheckHalfedge(pq); err != nil {
		return mesh.NoVertex, err
	}
	c.debug("collapsing p-q", "edge", pq, "p", t.P, "q", t.Q, "class", t.Class)

	undo := begin(m)
	v, err := c.apply(m, t)
	if err == nil {
		if verr := m.CheckVertex(v); verr != nil {
			err = errors.Wrap(errors.ErrCodeInvariant, verr, "after collapsing halfedge %d", pq)
		}
	}
	if err != nil {
		undo(false)
		c.debug("collapse rolled back", "edge", pq, "err", err)
		return mesh.NoVertex, err
	}
	undo(true)
	return v, nil
}

// begin opens a transaction, or a savepoint in the caller's transaction, and
// returns its finisher.
func begin(m *mesh.Mesh) func(commit bool) {
	if tx := m.Tx(); tx != nil {
		mark := tx.Mark()
		return func(commit bool) {
			if !commit {
				tx.RollbackTo(mark)
			}
		}
	}
	tx := m.Begin()
	return func(commit bool) {
		if commit {
			tx.Commit()
		} else {
			tx.Rollback()
		}
	}
}

func (c *Collapser) apply(m *mesh.Mesh, t Topology) (mesh.VertexID, error) {
	var pErased, qErased bool
	var err error

	switch t.Class {
	case ClassJoinBoth:
		if err = c.joinTop(m, t); err == nil {
			err = c.joinBottom(m, t)
		}
	case ClassJoinTopEraseBottom:
		if err = c.joinTop(m, t); err == nil {
			err = c.eraseBottom(m, t, false)
		}
	case ClassEraseTopJoinBottom:
		if err = c.eraseTop(m, t, false); err == nil {
			err = c.joinBottom(m, t)
		}
	case ClassEraseBoth:
		return mesh.NoVertex, errors.New(errors.ErrCodeInternal, "halfedge %d: %v passed classification", t.PQ, t.Class)
	case ClassJoinTop:
		err = c.joinTop(m, t)
	case ClassEraseTop:
		err = c.eraseTop(m, t, true)
		pErased = true
	case ClassJoinBottom:
		err = c.joinBottom(m, t)
	case ClassEraseBottom:
		err = c.eraseBottom(m, t, true)
		qErased = true
	default:
		return mesh.NoVertex, errors.New(errors.ErrCodeInternal, "unknown topology class %d", t.Class)
	}
	if err != nil {
		return mesh.NoVertex, err
	}

	if pErased && qErased {
		return mesh.NoVertex, errors.New(errors.ErrCodeInternal, "collapse of halfedge %d erased both endpoints", t.PQ)
	}
	if !pErased && !qErased {
		c.debug("removing vertex p by joining p-q", "p", t.P, "q", t.Q)
		if _, err := euler.JoinVertex(m, t.PQ); err != nil {
			return mesh.NoVertex, err
		}
		pErased = true
	}
	if pErased {
		return t.Q, nil
	}
	return t.P, nil
}

func (c *Collapser) joinTop(m *mesh.Mesh, t Topology) error {
	c.debug("removing p-t by joining top-left face", "edge", m.Opposite(t.TP), "p", t.P, "t", t.T)
	_, err := euler.JoinFacet(m, t.TP)
	return err
}

func (c *Collapser) joinBottom(m *mesh.Mesh, t Topology) error {
	c.debug("removing q-b by joining bottom-right face", "edge", m.Opposite(t.BQ), "q", t.Q, "b", t.B)
	_, err := euler.JoinFacet(m, t.BQ)
	return err
}

// eraseTop erases the top face. When lonely is set there is no bottom face
// and p must be among the vertices the erase isolates; otherwise p must
// survive it.
func (c *Collapser) eraseTop(m *mesh.Mesh, t Topology, lonely bool) error {
	c.debug("removing p-t by erasing top face", "edge", m.Opposite(t.TP), "p", t.P, "t", t.T)
	removed, err := euler.EraseFacet(m, t.TP)
	if err != nil {
		return err
	}
	if lonely {
		c.debug("bottom face doesn't exist so vertex p already removed", "p", t.P)
	}
	return checkErased(removed, t.P, lonely, t.Q)
}

// eraseBottom is eraseTop for the bottom face, with q in place of p.
func (c *Collapser) eraseBottom(m *mesh.Mesh, t Topology, lonely bool) error {
	c.debug("removing q-b by erasing bottom face", "edge", m.Opposite(t.BQ), "q", t.Q, "b", t.B)
	removed, err := euler.EraseFacet(m, t.BQ)
	if err != nil {
		return err
	}
	if lonely {
		c.debug("top face doesn't exist so vertex q already removed", "q", t.Q)
	}
	return checkErased(removed, t.Q, lonely, t.P)
}

// checkErased verifies that an erase removed exactly the endpoint it was
// expected to, and never the other one.
func checkErased(removed []mesh.VertexID, v mesh.VertexID, want bool, other mesh.VertexID) error {
	if got := slices.Contains(removed, v); got != want {
		return errors.New(errors.ErrCodeInvariant, "erase left vertex %d removed=%t, want %t", v, got, want)
	}
	if slices.Contains(removed, other) {
		return errors.New(errors.ErrCodeInvariant, "erase removed surviving vertex %d", other)
	}
	return nil
}

func (c *Collapser) debug(msg string, keyvals ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, keyvals...)
	}
}
