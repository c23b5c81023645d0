package da

import (
	"fmt"

	"github.com/sw965/raven/blas32/tensor/2d"
	"github.com/sw965/raven/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
)

type GradBuffer struct {
	Weight      blas32.General
	HiddenBias  blas32.Vector
	VisibleBias blas32.Vector
}

func (g *GradBuffer) NewZerosLike() GradBuffer {
	return GradBuffer{
		Weight:      tensor2d.NewZerosLike(g.Weight),
		HiddenBias:  vector.NewZerosLike(g.HiddenBias),
		VisibleBias: vector.NewZerosLike(g.VisibleBias),
	}
}

func (g GradBuffer) Clone() GradBuffer {
	return GradBuffer{
		Weight:      tensor2d.Clone(g.Weight),
		HiddenBias:  vector.Clone(g.HiddenBias),
		VisibleBias: vector.Clone(g.VisibleBias),
	}
}

func (g *GradBuffer) Axpy(alpha float32, x *GradBuffer) {
	tensor2d.Axpy(alpha, x.Weight, g.Weight)
	blas32.Axpy(alpha, x.HiddenBias, g.HiddenBias)
	blas32.Axpy(alpha, x.VisibleBias, g.VisibleBias)
}

func (g *GradBuffer) Scal(alpha float32) {
	tensor2d.Scal(alpha, g.Weight)
	blas32.Scal(alpha, g.HiddenBias)
	blas32.Scal(alpha, g.VisibleBias)
}

type GradBuffers []GradBuffer

func (gs GradBuffers) ReduceSum() (GradBuffer, error) {
	if len(gs) == 0 {
		return GradBuffer{}, fmt.Errorf("GradBuffersが空である為、合計を出来ません。")
	}

	total := gs[0].NewZerosLike()
	for _, g := range gs {
		total.Axpy(1.0, &g)
	}
	return total, nil
}
