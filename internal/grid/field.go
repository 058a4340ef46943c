package grid

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"
)

// Field is a flat arena of float64 over a grown index box. The valid box is
// the region a kernel updates, the grown box adds guard cells that kernels
// may read or deposit into.
type Field struct {
	valid Box
	grown Box
	stag  Staggering
	ncomp int

	nx, nxy, ncell int
	data           []float64
}

// NewField allocates a zeroed field. valid is already converted to the
// field's staggering.
func NewField(valid Box, stag Staggering, ncomp int, guard [3]int) *Field {
	if ncomp < 1 {
		ncomp = 1
	}
	grown := valid.Grow(guard)
	f := &Field{
		valid: valid,
		grown: grown,
		stag:  stag,
		ncomp: ncomp,
		nx:    grown.Size(0),
		nxy:   grown.Size(0) * grown.Size(1),
		ncell: grown.NumPts(),
	}
	f.data = make([]float64, f.ncell*ncomp)
	return f
}

func (f *Field) Valid() Box       { return f.valid }
func (f *Field) Grown() Box       { return f.grown }
func (f *Field) Type() Staggering { return f.stag }
func (f *Field) NComp() int       { return f.ncomp }
func (f *Field) Data() []float64  { return f.data }
func (f *Field) Stride(axis int) int {
	switch axis {
	case 0:
		return 1
	case 1:
		return f.nx
	case 2:
		return f.nxy
	}
	return f.ncell
}

// Index returns the flat offset of (i, j, k, n).
func (f *Field) Index(i, j, k, n int) int {
	return (i - f.grown.Lo[0]) + (j-f.grown.Lo[1])*f.nx + (k-f.grown.Lo[2])*f.nxy + n*f.ncell
}

func (f *Field) At(i, j, k, n int) float64 { return f.data[f.Index(i, j, k, n)] }

func (f *Field) Set(i, j, k, n int, v float64) { f.data[f.Index(i, j, k, n)] = v }

func (f *Field) Add(i, j, k, n int, v float64) { f.data[f.Index(i, j, k, n)] += v }

// AtomicAdd accumulates v into (i, j, k, n) without losing concurrent
// updates. The sum is order independent up to floating-point rounding.
func (f *Field) AtomicAdd(i, j, k, n int, v float64) {
	atomicAddFloat64(&f.data[f.Index(i, j, k, n)], v)
}

func atomicAddFloat64(addr *float64, delta float64) {
	p := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(p)
		sum := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(p, old, sum) {
			return
		}
	}
}

func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// FillComp sets component n to v over the grown box.
func (f *Field) FillComp(n int, v float64) {
	off := n * f.ncell
	for i := off; i < off+f.ncell; i++ {
		f.data[i] = v
	}
}

func (f *Field) Scale(s float64) {
	for i := range f.data {
		f.data[i] *= s
	}
}

// IsFinite reports whether every value is neither NaN nor Inf.
func (f *Field) IsFinite() bool {
	for _, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (f *Field) Copy() *Field {
	c := *f
	c.data = make([]float64, len(f.data))
	copy(c.data, f.data)
	return &c
}

// CopyFrom copies src into f. Both must share boxes, staggering and
// component count.
func (f *Field) CopyFrom(src *Field) error {
	if f.grown != src.grown || f.stag != src.stag || f.ncomp != src.ncomp {
		return fmt.Errorf("%w: copy %v%v -> %v%v", ErrLayout, src.stag, src.grown, f.stag, f.grown)
	}
	copy(f.data, src.data)
	return nil
}

// SumValid sums component n over the valid box.
func (f *Field) SumValid(n int) float64 {
	sum := 0.0
	v := f.valid
	for k := v.Lo[2]; k <= v.Hi[2]; k++ {
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			base := f.Index(v.Lo[0], j, k, n)
			for i := 0; i < v.Size(0); i++ {
				sum += f.data[base+i]
			}
		}
	}
	return sum
}

// SumSquaresValid sums the squares of component n over the valid box.
func (f *Field) SumSquaresValid(n int) float64 {
	sum := 0.0
	v := f.valid
	for k := v.Lo[2]; k <= v.Hi[2]; k++ {
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			base := f.Index(v.Lo[0], j, k, n)
			for i := 0; i < v.Size(0); i++ {
				x := f.data[base+i]
				sum += x * x
			}
		}
	}
	return sum
}

// MaxAbsValid returns max |value| of component n over the valid box.
func (f *Field) MaxAbsValid(n int) float64 {
	m := 0.0
	v := f.valid
	for k := v.Lo[2]; k <= v.Hi[2]; k++ {
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			base := f.Index(v.Lo[0], j, k, n)
			for i := 0; i < v.Size(0); i++ {
				m = math.Max(m, math.Abs(f.data[base+i]))
			}
		}
	}
	return m
}

// Vector holds the three directional components of E, B or J.
type Vector [3]*Field

func (v Vector) Fill(x float64) {
	for _, f := range v {
		if f != nil {
			f.Fill(x)
		}
	}
}

func (v Vector) IsFinite() bool {
	for _, f := range v {
		if f != nil && !f.IsFinite() {
			return false
		}
	}
	return true
}

func (v Vector) Copy() Vector {
	var c Vector
	for d, f := range v {
		if f != nil {
			c[d] = f.Copy()
		}
	}
	return c
}

func (v Vector) Types() [3]Staggering {
	var s [3]Staggering
	for d, f := range v {
		if f != nil {
			s[d] = f.Type()
		}
	}
	return s
}
