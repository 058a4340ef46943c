package pml_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/pml"
)

func newRegion(g grid.Geometry, n [3]int, thickness int, dt float64) *pml.Region {
	r, err := pml.New(pml.Config{
		Geometry:  g,
		Domain:    grid.CellBox(n),
		Thickness: thickness,
		CellSize:  [3]float64{1e-3, 1e-3, 1e-3},
		Dt:        dt,
		Guard:     2,
	})
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("Apportion", func() {
	It("splits evenly when both damping coefficients are zero", func() {
		wa, wb := pml.Apportion(0, 0)
		Expect(wa).To(Equal(0.5))
		Expect(wb).To(Equal(0.5))
	})

	It("is proportional to the damping coefficients", func() {
		wa, wb := pml.Apportion(1, 3)
		Expect(wa).To(BeNumerically("~", 0.25, 1e-15))
		Expect(wb).To(BeNumerically("~", 0.75, 1e-15))

		wa, wb = pml.Apportion(5, 0)
		Expect(wa).To(Equal(1.0))
		Expect(wb).To(Equal(0.0))
	})

	It("always sums to exactly one", func() {
		rng := rand.New(rand.NewSource(7))
		for n := 0; n < 10000; n++ {
			a := rng.Float64() * math.Pow(10, float64(rng.Intn(30)-15))
			b := rng.Float64() * math.Pow(10, float64(rng.Intn(30)-15))
			wa, wb := pml.Apportion(a, b)
			Expect(wa + wb).To(Equal(1.0))
		}
	})
})

var _ = Describe("New", func() {
	base := pml.Config{
		Geometry:  grid.Cartesian3D,
		Domain:    grid.CellBox([3]int{16, 16, 16}),
		Thickness: 4,
		CellSize:  [3]float64{1, 1, 1},
		Dt:        1e-9,
	}

	DescribeTable("rejects bad configurations",
		func(mutate func(*pml.Config), want error) {
			cfg := base
			mutate(&cfg)
			_, err := pml.New(cfg)
			Expect(err).To(MatchError(want))
		},
		Entry("cylindrical", func(c *pml.Config) { c.Geometry = grid.Cylindrical }, pml.ErrUnsupported),
		Entry("no thickness", func(c *pml.Config) { c.Thickness = 0 }, pml.ErrConfig),
		Entry("no interior", func(c *pml.Config) { c.Thickness = 8 }, pml.ErrConfig),
		Entry("zero dt", func(c *pml.Config) { c.Dt = 0 }, pml.ErrConfig),
		Entry("negative strength", func(c *pml.Config) { c.Strength = -1 }, pml.ErrConfig),
		Entry("zero cell", func(c *pml.Config) { c.CellSize[2] = 0 }, pml.ErrConfig),
	)

	It("fills in the default strength and order", func() {
		r, err := pml.New(base)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Config().Strength).To(Equal(pml.DefaultStrength))
		Expect(r.Config().Order).To(Equal(pml.DefaultOrder))
		Expect(r.Inner()).To(Equal(grid.NewBox([3]int{4, 4, 4}, [3]int{11, 11, 11})))
	})
})

var _ = Describe("Profiles", func() {
	const dt = 1e-12
	var r *pml.Region

	BeforeEach(func() {
		r = newRegion(grid.Cartesian3D, [3]int{20, 12, 12}, 5, dt)
	})

	It("vanishes inside the inner box", func() {
		p := r.Profile(0, grid.Node)
		for i := 5; i <= 15; i++ {
			Expect(p.SigmaAt(i)).To(BeZero())
			Expect(p.DampAt(i)).To(Equal(1.0))
			Expect(p.CumAt(i)).To(Equal(1.0))
		}
		c := r.Profile(0, grid.Cell)
		for i := 5; i <= 14; i++ {
			Expect(c.SigmaAt(i)).To(BeZero())
		}
	})

	It("grows monotonically towards the outer edge", func() {
		p := r.Profile(0, grid.Node)
		for i := 5; i > -2; i-- {
			Expect(p.SigmaAt(i - 1)).To(BeNumerically(">", p.SigmaAt(i)))
			Expect(p.DampAt(i - 1)).To(BeNumerically("<", p.DampAt(i)))
			Expect(p.CumAt(i - 1)).To(BeNumerically("<", p.CumAt(i)))
		}
		for i := 15; i < 22; i++ {
			Expect(p.SigmaAt(i + 1)).To(BeNumerically(">", p.SigmaAt(i)))
		}
	})

	It("is symmetric between the two ends", func() {
		for _, t := range []grid.IndexType{grid.Node, grid.Cell} {
			p := r.Profile(1, t)
			top := 12
			if t == grid.Cell {
				top = 11
			}
			for i := 0; i <= 5; i++ {
				Expect(p.SigmaAt(i)).To(BeNumerically("~", p.SigmaAt(top-i), 1e-6*p.SigmaAt(0)))
			}
		}
	})

	It("reaches strength c/dx at the edge of the domain", func() {
		Expect(r.Profile(2, grid.Node).SigmaAt(0)).To(BeNumerically("~", 4*phys.C/1e-3, 1))
		Expect(r.Profile(2, grid.Node).DampAt(0)).To(BeNumerically("~", math.Exp(-4*phys.C/1e-3*dt), 1e-15))
	})

	It("depends on position only", func() {
		other := newRegion(grid.Cartesian3D, [3]int{20, 12, 12}, 5, 10*dt)
		Expect(other.Profile(0, grid.Cell).Sigma).To(Equal(r.Profile(0, grid.Cell).Sigma))
		Expect(other.Profile(0, grid.Cell).CumFac).To(Equal(r.Profile(0, grid.Cell).CumFac))
	})

	It("is flat along the degenerate axis of XZ", func() {
		xz := newRegion(grid.CartesianXZ, [3]int{12, 1, 12}, 3, dt)
		p := xz.Profile(1, grid.Cell)
		Expect(p.Len()).To(Equal(1))
		Expect(p.CumAt(0)).To(Equal(1.0))
		Expect(xz.Inner().Lo[1]).To(Equal(0))
	})
})
