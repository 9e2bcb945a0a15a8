package mesh

type entryKind uint8

const (
	kindVertex entryKind = iota
	kindHalfedge
	kindFace
	kindAppendVertex
	kindAppendHalfedge
	kindAppendFace
)

// entry is a before-image: either a full record copy or, for appends, the
// arena length prior to the append.
type entry struct {
	kind     entryKind
	index    int32
	vertex   vertex
	halfedge halfedge
	face     face
}

// Tx is an open write transaction on a [Mesh]. While a Tx is open every write
// made through the mesh's methods is journaled so that [Tx.Rollback] can
// restore the exact prior state.
//
// At most one Tx may be open per mesh. A Tx must be finished with exactly one
// call to Commit or Rollback; using it afterwards panics.
type Tx struct {
	m       *Mesh
	entries []entry
	done    bool
}

// Begin opens a transaction. It panics if one is already open.
func (m *Mesh) Begin() *Tx {
	if m.tx != nil {
		panic("mesh: transaction already open")
	}
	m.tx = &Tx{m: m}
	return m.tx
}

// InTx reports whether a transaction is open.
func (m *Mesh) InTx() bool { return m.tx != nil }

// Tx returns the open transaction, or nil.
func (m *Mesh) Tx() *Tx { return m.tx }

// Len returns the number of journaled writes.
func (tx *Tx) Len() int { return len(tx.entries) }

// Mark returns a savepoint for [Tx.RollbackTo].
func (tx *Tx) Mark() int { return len(tx.entries) }

// RollbackTo undoes the writes made after mark and keeps the transaction
// open.
func (tx *Tx) RollbackTo(mark int) {
	if tx.done {
		panic("mesh: transaction already finished")
	}
	m := tx.m
	m.tx = nil
	for i := len(tx.entries) - 1; i >= mark; i-- {
		m.restore(&tx.entries[i])
	}
	tx.entries = tx.entries[:mark]
	m.tx = tx
}

// Commit keeps every write made since Begin.
func (tx *Tx) Commit() {
	tx.finish()
}

// Rollback undoes every write made since Begin, newest first.
func (tx *Tx) Rollback() {
	if tx.done {
		panic("mesh: transaction already finished")
	}
	m := tx.m
	m.tx = nil
	for i := len(tx.entries) - 1; i >= 0; i-- {
		m.restore(&tx.entries[i])
	}
	tx.finish()
}

func (tx *Tx) finish() {
	if tx.done {
		panic("mesh: transaction already finished")
	}
	tx.done = true
	tx.entries = nil
	tx.m.tx = nil
}

func (m *Mesh) saveVertex(v VertexID) {
	if m.tx != nil {
		m.tx.entries = append(m.tx.entries, entry{kind: kindVertex, index: int32(v), vertex: m.vertices[v]})
	}
}

func (m *Mesh) saveHalfedge(h HalfedgeID) {
	if m.tx != nil {
		m.tx.entries = append(m.tx.entries, entry{kind: kindHalfedge, index: int32(h), halfedge: m.halfedges[h]})
	}
}

func (m *Mesh) saveFace(f FaceID) {
	if m.tx != nil {
		m.tx.entries = append(m.tx.entries, entry{kind: kindFace, index: int32(f), face: m.faces[f]})
	}
}

func (m *Mesh) saveLen(kind entryKind, n int) {
	if m.tx != nil {
		m.tx.entries = append(m.tx.entries, entry{kind: kind, index: int32(n)})
	}
}

// restore applies one before-image, keeping the live counters in step with
// the removed flags it flips.
func (m *Mesh) restore(e *entry) {
	switch e.kind {
	case kindVertex:
		m.numVertices += liveDelta(m.vertices[e.index].removed, e.vertex.removed)
		m.vertices[e.index] = e.vertex
	case kindHalfedge:
		m.numHalfedges += liveDelta(m.halfedges[e.index].removed, e.halfedge.removed)
		m.halfedges[e.index] = e.halfedge
	case kindFace:
		m.numFaces += liveDelta(m.faces[e.index].removed, e.face.removed)
		m.faces[e.index] = e.face
	case kindAppendVertex:
		for _, v := range m.vertices[e.index:] {
			m.numVertices += liveDelta(v.removed, true)
		}
		m.vertices = m.vertices[:e.index]
	case kindAppendHalfedge:
		for _, h := range m.halfedges[e.index:] {
			m.numHalfedges += liveDelta(h.removed, true)
		}
		m.halfedges = m.halfedges[:e.index]
	case kindAppendFace:
		for _, f := range m.faces[e.index:] {
			m.numFaces += liveDelta(f.removed, true)
		}
		m.faces = m.faces[:e.index]
	}
}

// liveDelta is the change in live count when a record's removed flag goes
// from cur to old.
func liveDelta(cur, old bool) int {
	switch {
	case cur && !old:
		return 1
	case !cur && old:
		return -1
	}
	return 0
}
