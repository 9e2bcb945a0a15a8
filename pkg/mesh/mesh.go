package mesh

import (
	"iter"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertexID identifies a vertex in a [Mesh]. IDs are 1-indexed, allowing the
// zero value [NoVertex] to represent nil.
type VertexID int32

// HalfedgeID identifies a half-edge in a [Mesh]. The zero value is [NoHalfedge].
type HalfedgeID int32

// FaceID identifies a face in a [Mesh]. The zero value is [NoFace], which is
// also the face of every border half-edge.
type FaceID int32

const (
	NoVertex   VertexID   = 0
	NoHalfedge HalfedgeID = 0
	NoFace     FaceID     = 0
)

type vertex struct {
	halfedge HalfedgeID // an incoming half-edge (target == this vertex)
	point    v3.Vec
	removed  bool
}

type halfedge struct {
	target   VertexID
	opposite HalfedgeID
	next     HalfedgeID
	prev     HalfedgeID
	face     FaceID
	removed  bool
}

type face struct {
	halfedge HalfedgeID
	removed  bool
}

// Mesh is a polygon mesh stored as a half-edge graph in three index arenas.
//
// Removed elements are tombstoned rather than reclaimed, so IDs held by a
// caller stay valid (and keep meaning "removed") across edits. Use
// [Mesh.Compact] to obtain a dense copy.
//
// The accessors and relinking methods perform no consistency checks: keeping
// the invariants is the responsibility of the Euler operators built on top.
// Passing an out-of-range ID panics.
//
// The zero value is not usable - use [New] or [FromPolygons].
// Mesh is not safe for concurrent use.
type Mesh struct {
	vertices  []vertex
	halfedges []halfedge
	faces     []face

	numVertices  int
	numHalfedges int
	numFaces     int

	tx *Tx
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{
		vertices:  make([]vertex, 1),
		halfedges: make([]halfedge, 1),
		faces:     make([]face, 1),
	}
}

// Counts summarizes the size of a mesh.
type Counts struct {
	Vertices    int `json:"vertices"`
	Edges       int `json:"edges"`
	Faces       int `json:"faces"`
	BorderEdges int `json:"border_edges"`
}

// Sub returns c - o component-wise.
func (c Counts) Sub(o Counts) Counts {
	return Counts{
		Vertices:    c.Vertices - o.Vertices,
		Edges:       c.Edges - o.Edges,
		Faces:       c.Faces - o.Faces,
		BorderEdges: c.BorderEdges - o.BorderEdges,
	}
}

// EulerCharacteristic returns V - E + F.
func (c Counts) EulerCharacteristic() int {
	return c.Vertices - c.Edges + c.Faces
}

// Counts returns the number of live elements.
func (m *Mesh) Counts() Counts {
	return Counts{
		Vertices:    m.numVertices,
		Edges:       m.numHalfedges / 2,
		Faces:       m.numFaces,
		BorderEdges: m.NumBorderHalfedges(),
	}
}

func (m *Mesh) NumVertices() int  { return m.numVertices }
func (m *Mesh) NumHalfedges() int { return m.numHalfedges }
func (m *Mesh) NumEdges() int     { return m.numHalfedges / 2 }
func (m *Mesh) NumFaces() int     { return m.numFaces }

// NumBorderHalfedges counts live half-edges that own no face.
func (m *Mesh) NumBorderHalfedges() int {
	n := 0
	for i := 1; i < len(m.halfedges); i++ {
		if he := &m.halfedges[i]; !he.removed && he.face == NoFace {
			n++
		}
	}
	return n
}

// HasVertex reports whether v names a live vertex.
func (m *Mesh) HasVertex(v VertexID) bool {
	return v > 0 && int(v) < len(m.vertices) && !m.vertices[v].removed
}

// HasHalfedge reports whether h names a live half-edge.
func (m *Mesh) HasHalfedge(h HalfedgeID) bool {
	return h > 0 && int(h) < len(m.halfedges) && !m.halfedges[h].removed
}

// HasFace reports whether f names a live face.
func (m *Mesh) HasFace(f FaceID) bool {
	return f > 0 && int(f) < len(m.faces) && !m.faces[f].removed
}

// =============================================================================
// Traversal
// =============================================================================

func (m *Mesh) Target(h HalfedgeID) VertexID     { return m.halfedges[h].target }
func (m *Mesh) Opposite(h HalfedgeID) HalfedgeID { return m.halfedges[h].opposite }
func (m *Mesh) Next(h HalfedgeID) HalfedgeID     { return m.halfedges[h].next }
func (m *Mesh) Prev(h HalfedgeID) HalfedgeID     { return m.halfedges[h].prev }
func (m *Mesh) Face(h HalfedgeID) FaceID         { return m.halfedges[h].face }

// Source returns the vertex h starts at, the target of its opposite.
func (m *Mesh) Source(h HalfedgeID) VertexID {
	return m.halfedges[m.halfedges[h].opposite].target
}

// IsBorder reports whether h owns no face.
func (m *Mesh) IsBorder(h HalfedgeID) bool { return m.halfedges[h].face == NoFace }

// VertexHalfedge returns a half-edge whose target is v.
func (m *Mesh) VertexHalfedge(v VertexID) HalfedgeID { return m.vertices[v].halfedge }

// FaceHalfedge returns a half-edge of f's loop.
func (m *Mesh) FaceHalfedge(f FaceID) HalfedgeID { return m.faces[f].halfedge }

// Point returns the position attached to v. The mesh never interprets it.
func (m *Mesh) Point(v VertexID) v3.Vec { return m.vertices[v].point }

// Incoming iterates the half-edges targeting v, rotating around the vertex
// fan via opposite(next(h)). Border half-edges are included.
//
// The walk stops after visiting every half-edge once, so a corrupted fan
// cannot loop forever.
func (m *Mesh) Incoming(v VertexID) iter.Seq[HalfedgeID] {
	return func(yield func(HalfedgeID) bool) {
		start := m.vertices[v].halfedge
		if start == NoHalfedge {
			return
		}
		h := start
		for range len(m.halfedges) {
			if !yield(h) {
				return
			}
			h = m.halfedges[m.halfedges[h].next].opposite
			if h == start {
				return
			}
		}
	}
}

// Loop iterates the loop containing h by following next pointers, starting at
// h. The loop is a face boundary or, for border half-edges, a border loop.
func (m *Mesh) Loop(h HalfedgeID) iter.Seq[HalfedgeID] {
	return func(yield func(HalfedgeID) bool) {
		g := h
		for range len(m.halfedges) {
			if !yield(g) {
				return
			}
			g = m.halfedges[g].next
			if g == h {
				return
			}
		}
	}
}

// Degree returns the number of edges incident to v.
func (m *Mesh) Degree(v VertexID) int {
	n := 0
	for range m.Incoming(v) {
		n++
	}
	return n
}

// LoopLength returns the number of half-edges in the loop containing h.
func (m *Mesh) LoopLength(h HalfedgeID) int {
	n := 0
	for range m.Loop(h) {
		n++
	}
	return n
}

// FaceDegree returns the number of edges bounding f.
func (m *Mesh) FaceDegree(f FaceID) int {
	return m.LoopLength(m.faces[f].halfedge)
}

// IsBorderVertex reports whether any edge incident to v is a border edge.
func (m *Mesh) IsBorderVertex(v VertexID) bool {
	for h := range m.Incoming(v) {
		if m.IsBorder(h) || m.IsBorder(m.Opposite(h)) {
			return true
		}
	}
	return false
}

// FindHalfedge returns the half-edge running from -> to, or [NoHalfedge].
func (m *Mesh) FindHalfedge(from, to VertexID) HalfedgeID {
	for h := range m.Incoming(to) {
		if m.Source(h) == from {
			return h
		}
	}
	return NoHalfedge
}

// Vertices returns the live vertices in ID order.
func (m *Mesh) Vertices() []VertexID {
	out := make([]VertexID, 0, m.numVertices)
	for i := 1; i < len(m.vertices); i++ {
		if !m.vertices[i].removed {
			out = append(out, VertexID(i))
		}
	}
	return out
}

// Halfedges returns the live half-edges in ID order.
func (m *Mesh) Halfedges() []HalfedgeID {
	out := make([]HalfedgeID, 0, m.numHalfedges)
	for i := 1; i < len(m.halfedges); i++ {
		if !m.halfedges[i].removed {
			out = append(out, HalfedgeID(i))
		}
	}
	return out
}

// Edges returns one half-edge per live edge, the one with the smaller ID.
func (m *Mesh) Edges() []HalfedgeID {
	out := make([]HalfedgeID, 0, m.numHalfedges/2)
	for i := 1; i < len(m.halfedges); i++ {
		he := &m.halfedges[i]
		if !he.removed && HalfedgeID(i) < he.opposite {
			out = append(out, HalfedgeID(i))
		}
	}
	return out
}

// Faces returns the live faces in ID order.
func (m *Mesh) Faces() []FaceID {
	out := make([]FaceID, 0, m.numFaces)
	for i := 1; i < len(m.faces); i++ {
		if !m.faces[i].removed {
			out = append(out, FaceID(i))
		}
	}
	return out
}

// =============================================================================
// Relinking
// =============================================================================

// Link sets next(h) = n and prev(n) = h.
func (m *Mesh) Link(h, n HalfedgeID) {
	m.saveHalfedge(h)
	m.saveHalfedge(n)
	m.halfedges[h].next = n
	m.halfedges[n].prev = h
}

// SetOpposite pairs a and b.
func (m *Mesh) SetOpposite(a, b HalfedgeID) {
	m.saveHalfedge(a)
	m.saveHalfedge(b)
	m.halfedges[a].opposite = b
	m.halfedges[b].opposite = a
}

func (m *Mesh) SetTarget(h HalfedgeID, v VertexID) {
	m.saveHalfedge(h)
	m.halfedges[h].target = v
}

func (m *Mesh) SetFace(h HalfedgeID, f FaceID) {
	m.saveHalfedge(h)
	m.halfedges[h].face = f
}

func (m *Mesh) SetVertexHalfedge(v VertexID, h HalfedgeID) {
	m.saveVertex(v)
	m.vertices[v].halfedge = h
}

func (m *Mesh) SetFaceHalfedge(f FaceID, h HalfedgeID) {
	m.saveFace(f)
	m.faces[f].halfedge = h
}

func (m *Mesh) SetPoint(v VertexID, p v3.Vec) {
	m.saveVertex(v)
	m.vertices[v].point = p
}

// RemoveVertex tombstones v.
func (m *Mesh) RemoveVertex(v VertexID) {
	m.saveVertex(v)
	m.vertices[v].removed = true
	m.numVertices--
}

// RemoveEdge tombstones h and its opposite.
func (m *Mesh) RemoveEdge(h HalfedgeID) {
	o := m.halfedges[h].opposite
	m.saveHalfedge(h)
	m.saveHalfedge(o)
	m.halfedges[h].removed = true
	m.halfedges[o].removed = true
	m.numHalfedges -= 2
}

// RemoveFace tombstones f.
func (m *Mesh) RemoveFace(f FaceID) {
	m.saveFace(f)
	m.faces[f].removed = true
	m.numFaces--
}

// =============================================================================
// Creation
// =============================================================================

// AddVertex appends an isolated vertex at p.
func (m *Mesh) AddVertex(p v3.Vec) VertexID {
	m.saveLen(kindAppendVertex, len(m.vertices))
	m.vertices = append(m.vertices, vertex{point: p})
	m.numVertices++
	return VertexID(len(m.vertices) - 1)
}

// AddEdge appends an opposite pair of half-edges between from and to and
// returns the one running from -> to. Both are border half-edges with unset
// next and prev pointers until linked.
func (m *Mesh) AddEdge(from, to VertexID) HalfedgeID {
	m.saveLen(kindAppendHalfedge, len(m.halfedges))
	h := HalfedgeID(len(m.halfedges))
	m.halfedges = append(m.halfedges,
		halfedge{target: to, opposite: h + 1},
		halfedge{target: from, opposite: h},
	)
	m.numHalfedges += 2
	return h
}

// AddFace appends a face whose loop contains h. The caller assigns the face
// to the loop's half-edges.
func (m *Mesh) AddFace(h HalfedgeID) FaceID {
	m.saveLen(kindAppendFace, len(m.faces))
	m.faces = append(m.faces, face{halfedge: h})
	m.numFaces++
	return FaceID(len(m.faces) - 1)
}
