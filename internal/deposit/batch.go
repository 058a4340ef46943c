package deposit

import (
	"errors"
	"fmt"
)

var ErrBatch = errors.New("deposit: malformed particle batch")

// Batch is a read-only structure-of-arrays view of one species' particles.
// Positions are Cartesian even in cylindrical geometry; momenta are
// gamma*v in m/s. IonLevel, when not nil, multiplies the species charge of
// each particle.
type Batch struct {
	X, Y, Z    []float64
	Ux, Uy, Uz []float64
	W          []float64
	IonLevel   []int32
}

func (b *Batch) Len() int { return len(b.W) }

// Validate checks that every array has one entry per particle.
func (b *Batch) Validate() error {
	n := len(b.W)
	arrays := []struct {
		name string
		len  int
	}{
		{"x", len(b.X)}, {"y", len(b.Y)}, {"z", len(b.Z)},
		{"ux", len(b.Ux)}, {"uy", len(b.Uy)}, {"uz", len(b.Uz)},
	}
	for _, a := range arrays {
		if a.len != n {
			return fmt.Errorf("%w: %s has %d entries for %d weights", ErrBatch, a.name, a.len, n)
		}
	}
	if b.IonLevel != nil && len(b.IonLevel) != n {
		return fmt.Errorf("%w: ion level has %d entries for %d weights", ErrBatch, len(b.IonLevel), n)
	}
	return nil
}

// Append adds one particle.
func (b *Batch) Append(x, y, z, ux, uy, uz, w float64) {
	b.X = append(b.X, x)
	b.Y = append(b.Y, y)
	b.Z = append(b.Z, z)
	b.Ux = append(b.Ux, ux)
	b.Uy = append(b.Uy, uy)
	b.Uz = append(b.Uz, uz)
	b.W = append(b.W, w)
}
