package deposit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/parallel"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/shape"
)

var (
	ErrOrder    = errors.New("deposit: unsupported shape order")
	ErrStrategy = errors.New("deposit: unknown strategy")
	ErrGeometry = errors.New("deposit: unsupported geometry")
)

type Strategy uint8

const (
	// Esirkepov deposits a current that satisfies the discrete continuity
	// equation exactly.
	Esirkepov Strategy = iota
	// Direct deposits q w v at the mid-step position.
	Direct
)

func (s Strategy) String() string {
	switch s {
	case Esirkepov:
		return "esirkepov"
	case Direct:
		return "direct"
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "esirkepov", "":
		return Esirkepov, nil
	case "direct":
		return Direct, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrStrategy, s)
}

// Params describes the grid a batch is deposited on. XYZMin is the
// physical position of index Lo; in cylindrical geometry XYZMin[0] is the
// radius of index Lo[0].
type Params struct {
	Dt       float64
	CellSize [3]float64
	XYZMin   [3]float64
	Lo       [3]int
	// Q is the species charge.
	Q float64
	// NModes is the number of azimuthal modes in cylindrical geometry.
	NModes int
}

// Depositor accumulates the current (and, on request, the charge) of a
// batch onto the grid. Implementations keep no state between calls and
// write only through grid.Field.AtomicAdd, so several batches may be
// deposited concurrently into the same fields.
type Depositor interface {
	Strategy() Strategy
	Order() int
	Geometry() grid.Geometry
	// Deposit adds the current of b into j. Positions in b are at the end
	// of the step; momenta are those used to move them.
	Deposit(b *Batch, j grid.Vector, p Params)
	// Charge adds the charge density of b into rho at the end-of-step
	// positions, or at the start-of-step ones when atOld is set.
	Charge(b *Batch, rho *grid.Field, p Params, atOld bool)
}

func New(s Strategy, g grid.Geometry, order int) (Depositor, error) {
	if err := shape.Validate(order); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrder, err)
	}
	switch g {
	case grid.Cartesian3D, grid.CartesianXZ, grid.Cylindrical:
	default:
		return nil, fmt.Errorf("%w: %v", ErrGeometry, g)
	}
	b := base{geom: g, order: order}
	switch s {
	case Esirkepov:
		return esirkepov{b}, nil
	case Direct:
		return direct{b}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrStrategy, s)
}

type base struct {
	geom  grid.Geometry
	order int
}

func (b base) Order() int              { return b.order }
func (b base) Geometry() grid.Geometry { return b.geom }

func (b base) checkModes(name string, p Params, fs ...*grid.Field) {
	if b.geom != grid.Cylindrical {
		return
	}
	need := grid.ModeComponents(p.NModes)
	for _, f := range fs {
		if f.NComp() < need {
			panic(fmt.Errorf("%w: %s has %d components, %d modes need %d", grid.ErrLayout, name, f.NComp(), p.NModes, need))
		}
	}
}

// particleChunk is the smallest number of particles handed to a worker.
const particleChunk = 256

func forParticles(n int, fn func(ip int)) {
	parallel.For(n, particleChunk, func(start, end int) {
		for ip := start; ip < end; ip++ {
			fn(ip)
		}
	})
}

func gammaInv(ux, uy, uz float64) float64 {
	return 1 / math.Sqrt(1+(ux*ux+uy*uy+uz*uz)*phys.InvC2)
}

func chargeOf(b *Batch, q float64, ip int) float64 {
	wq := q * b.W[ip]
	if b.IonLevel != nil {
		wq *= float64(b.IonLevel[ip])
	}
	return wq
}

// phase returns the radius of (x, y) and e^{i theta}. On the axis the
// angle is taken to be zero.
func phase(x, y float64) (float64, complex128) {
	r := math.Sqrt(x*x + y*y)
	if r > 0 {
		return r, complex(x/r, y/r)
	}
	return r, 1
}
