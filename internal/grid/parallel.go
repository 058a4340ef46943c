package grid

import "github.com/san-kum/picsim/internal/parallel"

// ParallelFor calls fn for every point of box. Work is split into z-slabs
// (or x-columns when the box is a single slab) on the active backend, so
// fn must only write the point it is given.
func ParallelFor(box Box, fn func(i, j, k int)) {
	if box.Empty() {
		return
	}
	nz := box.Size(2)
	if nz > 1 {
		parallel.For(nz, 1, func(start, end int) {
			for k := box.Lo[2] + start; k < box.Lo[2]+end; k++ {
				for j := box.Lo[1]; j <= box.Hi[1]; j++ {
					for i := box.Lo[0]; i <= box.Hi[0]; i++ {
						fn(i, j, k)
					}
				}
			}
		})
		return
	}
	k := box.Lo[2]
	parallel.For(box.Size(0), 16, func(start, end int) {
		for j := box.Lo[1]; j <= box.Hi[1]; j++ {
			for i := box.Lo[0] + start; i < box.Lo[0]+end; i++ {
				fn(i, j, k)
			}
		}
	})
}
