package fdtd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

// split holds split-field copies of E (3 parts), B (2 parts) and F (3
// parts) whose sums equal the plain fields.
type split struct {
	e, b grid.Vector
	f    *grid.Field
}

func splitOf(rng *rand.Rand, l grid.Layout, fs *fields) split {
	sp := split{
		e: l.NewE(fs.cells, guard, 3),
		b: l.NewB(fs.cells, guard, 2),
		f: l.NewF(fs.cells, guard, 3),
	}
	scatter := func(dst, src *grid.Field) {
		n := src.Grown().NumPts()
		parts := dst.NComp()
		for p := 0; p < n; p++ {
			rest := src.Data()[p]
			for c := 0; c < parts-1; c++ {
				v := rest * rng.Float64()
				dst.Data()[c*n+p] = v
				rest -= v
			}
			dst.Data()[(parts-1)*n+p] = rest
		}
	}
	for c := 0; c < 3; c++ {
		scatter(sp.e[c], fs.e[c])
		scatter(sp.b[c], fs.b[c])
	}
	scatter(sp.f, fs.f)
	return sp
}

func total(f *grid.Field, i, j, k int) float64 {
	s := 0.0
	for n := 0; n < f.NComp(); n++ {
		s += f.At(i, j, k, n)
	}
	return s
}

// assertSplitMatches checks that the parts of split sum to plain within
// rounding of the largest value of plain.
func assertSplitMatches(t *testing.T, plain, split *grid.Field) {
	t.Helper()
	tol := 1e-13 * plain.MaxAbsValid(0)
	grid.ParallelFor(plain.Valid(), func(i, j, k int) {
		assert.InDelta(t, plain.At(i, j, k, 0), total(split, i, j, k), tol, "at (%d, %d, %d)", i, j, k)
	})
}

type recordingPusher struct{ calls int }

func (r *recordingPusher) PushCurrent(e, j grid.Vector, dt float64) { r.calls++ }

func TestSplitFieldsMatchPlainUpdate(t *testing.T) {
	for _, geom := range []grid.Geometry{grid.Cartesian3D, grid.CartesianXZ} {
		t.Run(geom.String(), func(t *testing.T) {
			n := [3]int{5, 4, 6}
			if geom.Is2D() {
				n[1] = 1
			}
			s := mustSolver(t, Config{Geometry: geom, CellSize: [3]float64{1, 1, 1}})
			fs := newFields(s.Layout(), grid.CellBox(n), 1)

			rng := rand.New(rand.NewSource(5))
			randomize(rng, 1, fs.e[0], fs.e[1], fs.e[2])
			randomize(rng, 1/phys.C, fs.b[0], fs.b[1], fs.b[2])
			randomize(rng, 1, fs.f)
			sp := splitOf(rng, s.Layout(), fs)

			dt := 0.4 / phys.C
			pusher := &recordingPusher{}
			s.EvolveEPML(sp.e, sp.b, fs.j, sp.f, pusher, dt, false)
			s.EvolveE(fs.e, fs.b, fs.j, fs.f, dt)
			assert.Zero(t, pusher.calls)

			s.EvolveBPML(sp.b, sp.e, dt)
			s.EvolveB(fs.b, fs.e, dt)

			s.EvolveFPML(sp.f, sp.e, dt)
			s.EvolveF(fs.f, fs.e, nil, dt)

			// The c^2 dt grad F term makes E of order 1e8 here, so the
			// bounds follow each field's magnitude.
			for c := 0; c < 3; c++ {
				assertSplitMatches(t, fs.e[c], sp.e[c])
				assertSplitMatches(t, fs.b[c], sp.b[c])
			}
			assertSplitMatches(t, fs.f, sp.f)
		})
	}
}

func TestEvolveEPMLPushesCurrent(t *testing.T) {
	s := mustSolver(t, Config{Geometry: grid.Cartesian3D, CellSize: [3]float64{1, 1, 1}})
	fs := newFields(s.Layout(), grid.CellBox([3]int{3, 3, 3}), 1)
	sp := splitOf(rand.New(rand.NewSource(6)), s.Layout(), fs)

	pusher := &recordingPusher{}
	s.EvolveEPML(sp.e, sp.b, fs.j, nil, pusher, 1e-12, true)
	assert.Equal(t, 1, pusher.calls)

	s.EvolveEPML(sp.e, sp.b, grid.Vector{}, nil, pusher, 1e-12, true)
	assert.Equal(t, 1, pusher.calls, "no current, nothing pushed")
}

func TestSplitComponentCountChecked(t *testing.T) {
	s := mustSolver(t, Config{Geometry: grid.Cartesian3D, CellSize: [3]float64{1, 1, 1}})
	fs := newFields(s.Layout(), grid.CellBox([3]int{3, 3, 3}), 1)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.ErrorIs(t, r.(error), grid.ErrLayout)
	}()
	s.EvolveBPML(fs.b, fs.e, 1)
}
