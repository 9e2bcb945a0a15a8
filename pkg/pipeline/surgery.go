package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshsurgery/pkg/errors"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/mesh/collapse"
	"github.com/matzehuels/meshsurgery/pkg/observability"
)

// Outcome summarizes the collapse stage.
type Outcome struct {
	Collapsed int

	// Rejected is the number of distinct half-edges that were drawn as
	// random candidates and refused at least once. A half-edge refused in
	// several rounds counts once.
	Rejected int

	Classes map[string]int
}

// Collapse runs the collapse stage on m.
//
// With opts.Edges set, the listed half-edges are collapsed in order and the
// first failure stops the stage; its error names the half-edge. The mesh
// keeps the collapses that succeeded before it. Otherwise opts.Collapses
// random edges are collapsed, each picked uniformly among the half-edges
// that pass [collapse.CheckLink]; the stage ends early when none is left.
func Collapse(ctx context.Context, m *mesh.Mesh, opts Options) (Outcome, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Outcome{}, err
	}
	s := surgeon{
		m:      m,
		c:      collapse.Collapser{Logger: opts.Logger},
		logger: opts.Logger,
		out:    Outcome{Classes: make(map[string]int)},
	}
	var err error
	if len(opts.Edges) > 0 {
		err = s.explicit(ctx, opts.Edges)
	} else {
		err = s.random(ctx, opts.Collapses, opts.Seed)
	}
	return s.out, err
}

type surgeon struct {
	m        *mesh.Mesh
	c        collapse.Collapser
	logger   *log.Logger
	out      Outcome
	rejected map[mesh.HalfedgeID]bool
}

// reject records a refused random candidate.
func (s *surgeon) reject(h mesh.HalfedgeID) {
	if s.rejected == nil {
		s.rejected = make(map[mesh.HalfedgeID]bool)
	}
	if !s.rejected[h] {
		s.rejected[h] = true
		s.out.Rejected++
	}
}

func (s *surgeon) explicit(ctx context.Context, edges []int) error {
	for _, e := range edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		h := mesh.HalfedgeID(e)
		if !s.m.HasHalfedge(h) {
			return errors.New(errors.ErrCodeNotFound, "halfedge %d does not exist", e)
		}
		if err := s.collapse(ctx, h); err != nil {
			return fmt.Errorf("collapse halfedge %d: %w", e, err)
		}
	}
	return nil
}

func (s *surgeon) random(ctx context.Context, n int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for s.out.Collapsed < n {
		if err := ctx.Err(); err != nil {
			return err
		}
		hs := s.m.Halfedges()
		rng.Shuffle(len(hs), func(i, j int) { hs[i], hs[j] = hs[j], hs[i] })

		found := false
		for _, h := range hs {
			if err := collapse.CheckLink(s.m, h); err != nil {
				s.reject(h)
				continue
			}
			if err := s.collapse(ctx, h); err != nil {
				if errors.Fatal(err) {
					return fmt.Errorf("collapse halfedge %d: %w", h, err)
				}
				s.reject(h)
				continue
			}
			found = true
			break
		}
		if !found {
			s.logger.Warn("no collapsible edge left", "collapsed", s.out.Collapsed, "requested", n)
			return nil
		}
	}
	return nil
}

func (s *surgeon) collapse(ctx context.Context, h mesh.HalfedgeID) error {
	class := ""
	if t, err := collapse.Classify(s.m, h); err == nil {
		class = t.Class.String()
	}
	_, err := s.c.Collapse(s.m, h)
	observability.Mesh().OnCollapse(ctx, class, err)
	if err != nil {
		return err
	}
	s.out.Collapsed++
	s.out.Classes[class]++
	return nil
}
