package da

import (
	"fmt"

	"github.com/sw965/omw/encoding/jsonx"
	"github.com/sw965/raven/blas32/tensor/2d"
	"github.com/sw965/raven/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
)

/*
	Parameter はエンコーダーとデコーダーの学習対象を保持する。
	Weightは(可視層 × 隠れ層)の行列で、デコード時は同じ行列を転置して使う(tied weights)。
	その為、デコーダー専用の重みは存在しない。
*/
type Parameter struct {
	Weight      blas32.General
	HiddenBias  blas32.Vector
	VisibleBias blas32.Vector
}

func LoadParameterJSON(path string) (Parameter, error) {
	return jsonx.Load[Parameter](path)
}

func (p Parameter) SaveJSON(path string) error {
	err := jsonx.Save[Parameter](p, path)
	return err
}

func (p Parameter) Clone() Parameter {
	return Parameter{
		Weight:      tensor2d.Clone(p.Weight),
		HiddenBias:  vector.Clone(p.HiddenBias),
		VisibleBias: vector.Clone(p.VisibleBias),
	}
}

func (p *Parameter) NewGradBufferZerosLike() GradBuffer {
	return GradBuffer{
		Weight:      tensor2d.NewZerosLike(p.Weight),
		HiddenBias:  vector.NewZerosLike(p.HiddenBias),
		VisibleBias: vector.NewZerosLike(p.VisibleBias),
	}
}

func (p *Parameter) Axpy(alpha float32, x *Parameter) error {
	if p.Weight.Rows != x.Weight.Rows || p.Weight.Cols != x.Weight.Cols {
		return fmt.Errorf("重み行列の形状が一致しない為、Axpyを出来ません。")
	}

	if p.HiddenBias.N != x.HiddenBias.N || p.VisibleBias.N != x.VisibleBias.N {
		return fmt.Errorf("バイアスの次元数が一致しない為、Axpyを出来ません。")
	}

	tensor2d.Axpy(alpha, x.Weight, p.Weight)
	blas32.Axpy(alpha, x.HiddenBias, p.HiddenBias)
	blas32.Axpy(alpha, x.VisibleBias, p.VisibleBias)
	return nil
}

func (p *Parameter) Scal(alpha float32) {
	tensor2d.Scal(alpha, p.Weight)
	blas32.Scal(alpha, p.HiddenBias)
	blas32.Scal(alpha, p.VisibleBias)
}

func (p *Parameter) AxpyGrad(alpha float32, grad *GradBuffer) error {
	x := Parameter(*grad)
	return p.Axpy(alpha, &x)
}
