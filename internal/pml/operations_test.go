package pml_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/pml"
)

const opDt = 1e-12

func newCurrent(r *pml.Region, value float64) grid.Vector {
	l := r.Layout()
	j := l.NewJ(r.Config().Domain, r.Config().Guard, 1)
	j.Fill(value)
	return j
}

var _ = Describe("PushCurrent", func() {
	var (
		r *pml.Region
		s *pml.Split
	)

	Context("in 3-D", func() {
		BeforeEach(func() {
			r = newRegion(grid.Cartesian3D, [3]int{12, 12, 12}, 3, opDt)
			s = r.NewSplitFields(false)
			r.PushCurrent(s.E, newCurrent(r, 2), opDt)
		})

		It("splits evenly inside the inner box", func() {
			want := -0.5 * opDt / phys.Epsilon0 * 2
			for c := 0; c < 3; c++ {
				Expect(s.E[c].At(6, 6, 6, 0)).To(BeNumerically("~", want, 1e-15))
				Expect(s.E[c].At(6, 6, 6, 1)).To(BeNumerically("~", want, 1e-15))
				Expect(s.E[c].At(6, 6, 6, 2)).To(BeZero())
			}
		})

		It("puts the whole current on the damped axis", func() {
			// Deep in the low-x layer only the x profile is non-zero: Ey
			// and Ez feel x through sub-components 1 and 0.
			full := -opDt / phys.Epsilon0 * 2
			Expect(s.E[1].At(0, 6, 6, 0)).To(BeZero())
			Expect(s.E[1].At(0, 6, 6, 1)).To(BeNumerically("~", full, 1e-15))
			Expect(s.E[2].At(0, 6, 6, 0)).To(BeNumerically("~", full, 1e-15))
			Expect(s.E[2].At(0, 6, 6, 1)).To(BeZero())
		})

		It("conserves the pushed current everywhere", func() {
			full := -opDt / phys.Epsilon0 * 2
			for c := 0; c < 3; c++ {
				v := s.E[c].Valid()
				for k := v.Lo[2]; k <= v.Hi[2]; k++ {
					for j := v.Lo[1]; j <= v.Hi[1]; j++ {
						for i := v.Lo[0]; i <= v.Hi[0]; i++ {
							Expect(s.E[c].At(i, j, k, 0) + s.E[c].At(i, j, k, 1)).To(BeNumerically("~", full, 1e-15))
						}
					}
				}
			}
		})
	})

	Context("in XZ", func() {
		BeforeEach(func() {
			r = newRegion(grid.CartesianXZ, [3]int{12, 1, 12}, 3, opDt)
			s = r.NewSplitFields(false)
			r.PushCurrent(s.E, newCurrent(r, 1), opDt)
		})

		It("gives Ex and Ez a single weight and splits Ey evenly", func() {
			full := -opDt / phys.Epsilon0
			for _, i := range []int{0, 6} {
				Expect(s.E[0].At(i, 0, 6, 0)).To(BeZero())
				Expect(s.E[0].At(i, 0, 6, 1)).To(BeNumerically("~", full, 1e-15))
				Expect(s.E[2].At(i, 0, 6, 0)).To(BeNumerically("~", full, 1e-15))
				Expect(s.E[2].At(i, 0, 6, 1)).To(BeZero())
				Expect(s.E[1].At(i, 0, 6, 0)).To(BeNumerically("~", 0.5*full, 1e-15))
				Expect(s.E[1].At(i, 0, 6, 1)).To(BeNumerically("~", 0.5*full, 1e-15))
			}
		})
	})
})

var _ = Describe("DampJ", func() {
	It("leaves the interior untouched and damps the layer by the profile product", func() {
		r := newRegion(grid.Cartesian3D, [3]int{12, 12, 12}, 3, opDt)
		j := newCurrent(r, 1)
		r.DampJ(j)

		for c := 0; c < 3; c++ {
			Expect(j[c].At(6, 6, 6, 0)).To(Equal(1.0))

			stag := j[c].Type()
			want := r.Profile(0, stag[0]).CumAt(0) * r.Profile(1, stag[1]).CumAt(1) * r.Profile(2, stag[2]).CumAt(11)
			Expect(j[c].At(0, 1, 11, 0)).To(BeNumerically("~", want, 1e-15))
			Expect(j[c].At(0, 1, 11, 0)).To(BeNumerically("<", 1.0))
		}
	})
})

var _ = Describe("Split fields", func() {
	var (
		r    *pml.Region
		e, b grid.Vector
		f    *grid.Field
	)

	BeforeEach(func() {
		r = newRegion(grid.Cartesian3D, [3]int{10, 10, 10}, 2, opDt)
		l := r.Layout()
		cfg := r.Config()
		e = l.NewE(cfg.Domain, cfg.Guard, 1)
		b = l.NewB(cfg.Domain, cfg.Guard, 1)
		f = l.NewF(cfg.Domain, cfg.Guard, 1)
		e.Fill(3)
		b.Fill(-1)
		f.Fill(0.5)
	})

	It("allocates the sub-component counts", func() {
		s := r.NewSplitFields(true)
		for c := 0; c < 3; c++ {
			Expect(s.E[c].NComp()).To(Equal(3))
			Expect(s.B[c].NComp()).To(Equal(2))
		}
		Expect(s.F.NComp()).To(Equal(3))
		Expect(r.NewSplitFields(false).F).To(BeNil())
	})

	It("round-trips plain fields through Load and Totals", func() {
		s := r.NewSplitFields(true)
		s.Load(e, b, f)

		out := r.Layout().NewE(r.Config().Domain, r.Config().Guard, 1)
		outB := r.Layout().NewB(r.Config().Domain, r.Config().Guard, 1)
		outF := r.Layout().NewF(r.Config().Domain, r.Config().Guard, 1)
		s.Totals(out, outB, outF)

		for c := 0; c < 3; c++ {
			Expect(out[c].Data()).To(Equal(e[c].Data()))
			Expect(outB[c].Data()).To(Equal(b[c].Data()))
		}
		Expect(outF.Data()).To(Equal(f.Data()))
	})

	It("damps each sub-component by its driving axis", func() {
		s := r.NewSplitFields(true)
		s.Load(e, b, f)
		for c := 0; c < 3; c++ {
			s.E[c].FillComp(1, 3)
		}
		r.DampFields(s)

		// Interior: unchanged.
		Expect(s.E[0].At(5, 5, 5, 0)).To(Equal(3.0))
		Expect(s.B[2].At(5, 5, 5, 0)).To(Equal(-1.0))

		// Ex sub-component 0 is driven by y, 1 by z.
		ex := s.E[0]
		py := r.Profile(1, ex.Type()[1])
		pz := r.Profile(2, ex.Type()[2])
		Expect(ex.At(5, 0, 5, 0)).To(BeNumerically("~", 3*py.DampAt(0), 1e-15))
		Expect(ex.At(5, 0, 5, 1)).To(Equal(3.0))
		Expect(ex.At(5, 5, 0, 1)).To(BeNumerically("~", 3*pz.DampAt(0), 1e-15))

		// F sub-component a is driven by axis a.
		px := r.Profile(0, grid.Node)
		Expect(s.F.At(0, 5, 5, 0)).To(BeNumerically("~", 0.5*px.DampAt(0), 1e-15))
		Expect(s.F.At(0, 5, 5, 1)).To(BeZero())
	})

	It("pushes the charge source evenly onto the active F sub-components", func() {
		s := r.NewSplitFields(true)
		rho := r.Layout().NewRho(r.Config().Domain, r.Config().Guard, 1)
		rho.Fill(phys.Epsilon0)
		r.PushCharge(s, rho, opDt)
		for a := 0; a < 3; a++ {
			Expect(s.F.At(4, 4, 4, a)).To(BeNumerically("~", -opDt/3, 1e-27))
		}
		out := r.Layout().NewF(r.Config().Domain, r.Config().Guard, 1)
		s.Totals(e, b, out)
		Expect(out.At(0, 0, 0, 0)).To(BeNumerically("~", -opDt, 1e-27))
	})

	It("panics when plain and split layouts differ", func() {
		s := r.NewSplitFields(false)
		Expect(func() { s.Load(b, e, nil) }).To(Panic())
	})
})
