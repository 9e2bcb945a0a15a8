// Package mesh provides an index-based half-edge mesh for oriented
// 2-manifold polygon meshes, possibly with boundary.
//
// # Overview
//
// Vertices, half-edges and faces live in three arenas addressed by
// [VertexID], [HalfedgeID] and [FaceID]. IDs start at 1; the zero value of
// each is the nil sentinel ([NoVertex], [NoHalfedge], [NoFace]). Each
// half-edge stores its target vertex, its opposite, the next and previous
// half-edges around its loop, and its face. Border half-edges have face
// [NoFace] and are linked into border loops just like face loops, so every
// half-edge has a valid next and prev.
//
// The two half-edges of an edge are always allocated together and never
// separated, so removing one removes both.
//
// # Building
//
// [FromPolygons] and [FromSoup] build a mesh from a polygon soup, pairing
// opposite half-edges and closing border loops. [Mesh.Soup] goes the other
// way; the JSON form ([Mesh.WriteSoup], [ReadSoup]) is the snapshot format
// used by the cache and the command line:
//
//	m, err := mesh.FromPolygons(points, [][]int{{0, 1, 2}, {0, 2, 3}})
//	if err != nil {
//		return err
//	}
//	fmt.Println(m.Counts())
//
// # Navigation
//
// [Mesh.Incoming] iterates the half-edges ending at a vertex and [Mesh.Loop]
// walks the loop of a half-edge. Both are bounded by the arena size, so a
// corrupted mesh terminates rather than looping forever.
//
// # Editing and transactions
//
// The mutators ([Mesh.Link], [Mesh.SetTarget], [Mesh.RemoveEdge], ...) write
// raw connectivity without checks. The topology-preserving operators live in
// the [euler] subpackage and the edge collapse in [collapse].
//
// Every mutator records a before-image in the open transaction, if any. Open
// one with [Mesh.Begin]; [Tx.Rollback] restores the mesh to a state
// [Equal] to the one at Begin, and [Tx.RollbackTo] undoes back to a
// [Tx.Mark] savepoint.
//
// # Validation
//
// [Mesh.Validate] checks every invariant of the whole mesh.
// [Mesh.CheckHalfedge] and [Mesh.CheckVertex] check a local neighbourhood
// and are cheap enough to run after each edit. Both report failures coded
// INVARIANT_VIOLATION.
//
// # Concurrency
//
// A Mesh is not safe for concurrent use. Distinct meshes, including a
// [Mesh.Clone], may be edited in parallel.
//
// [euler]: github.com/matzehuels/meshsurgery/pkg/mesh/euler
// [collapse]: github.com/matzehuels/meshsurgery/pkg/mesh/collapse
package mesh
