package tensor2d

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/sw965/raven/mathx/randx"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

func NewZeros(rows, cols int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float32, rows*cols),
	}
}

func NewZerosLike(gen blas32.General) blas32.General {
	return NewZeros(gen.Rows, gen.Cols)
}

// NewGlorotSigmoid はシグモイド活性化向けのGlorot一様分布で初期化する。
func NewGlorotSigmoid(rows, cols int, rng *rand.Rand) blas32.General {
	gen := NewZeros(rows, cols)
	bound := float32(4.0 * math.Sqrt(6.0/float64(rows+cols)))
	for i := range gen.Data {
		gen.Data[i] = randx.Uniform(-bound, bound, rng)
	}
	return gen
}

// NewTileRows は各行がvecである行列を作る。バイアスのブロードキャストに使う。
func NewTileRows(vec blas32.Vector, rows int) blas32.General {
	gen := NewZeros(rows, vec.N)
	for r := 0; r < rows; r++ {
		offset := r * gen.Stride
		copy(gen.Data[offset:offset+vec.N], vec.Data[:vec.N])
	}
	return gen
}

func N(gen blas32.General) int {
	return gen.Rows * gen.Cols
}

func Clone(gen blas32.General) blas32.General {
	return blas32.General{
		Rows:   gen.Rows,
		Cols:   gen.Cols,
		Stride: gen.Stride,
		Data:   slices.Clone(gen.Data),
	}
}

func At(gen blas32.General, row, col int) int {
	return row*gen.Stride + col
}

func ToVector(gen blas32.General) blas32.Vector {
	return blas32.Vector{
		N:    N(gen),
		Inc:  1,
		Data: gen.Data,
	}
}

// ToVectors は行列の各行をベクトルとして返す。データは共有される。
func ToVectors(gen blas32.General) []blas32.Vector {
	vecs := make([]blas32.Vector, gen.Rows)
	for r := 0; r < gen.Rows; r++ {
		offset := r * gen.Stride
		vecs[r] = blas32.Vector{
			N:    gen.Cols,
			Inc:  1,
			Data: gen.Data[offset : offset+gen.Cols],
		}
	}
	return vecs
}

func FromVectors(vecs []blas32.Vector) (blas32.General, error) {
	if len(vecs) == 0 {
		return blas32.General{}, fmt.Errorf("ベクトルが空である為、行列に変換出来ません。")
	}

	cols := vecs[0].N
	gen := NewZeros(len(vecs), cols)
	for i, vec := range vecs {
		if vec.N != cols {
			return blas32.General{}, fmt.Errorf("%d番目のベクトルの次元数(%d)が先頭の次元数(%d)と一致しません。", i, vec.N, cols)
		}
		offset := i * gen.Stride
		copy(gen.Data[offset:offset+cols], vec.Data[:cols])
	}
	return gen, nil
}

func Scal(alpha float32, gen blas32.General) {
	vec := ToVector(gen)
	blas32.Scal(alpha, vec)
}

func Axpy(alpha float32, x, y blas32.General) {
	xv := ToVector(x)
	yv := ToVector(y)
	blas32.Axpy(alpha, xv, yv)
}

func Sum0(gen blas32.General) blas32.Vector {
	sums := make([]float32, gen.Cols)
	for c := 0; c < gen.Cols; c++ {
		var sum float32
		for r := 0; r < gen.Rows; r++ {
			idx := At(gen, r, c)
			sum += gen.Data[idx]
		}
		sums[c] = sum
	}

	return blas32.Vector{
		N:    gen.Cols,
		Inc:  1,
		Data: sums,
	}
}

func Sum1(gen blas32.General) blas32.Vector {
	sums := make([]float32, gen.Rows)
	for r := 0; r < gen.Rows; r++ {
		offset := r * gen.Stride
		var sum float32
		for c := 0; c < gen.Cols; c++ {
			sum += gen.Data[offset+c]
		}
		sums[r] = sum
	}
	return blas32.Vector{
		N:    gen.Rows,
		Inc:  1,
		Data: sums,
	}
}

func Transpose(gen blas32.General) blas32.General {
	t := blas32.General{
		Rows:   gen.Cols,
		Cols:   gen.Rows,
		Stride: gen.Rows,
		Data:   make([]float32, N(gen)),
	}

	for i := range t.Rows {
		for j := range t.Cols {
			newIdx := At(t, i, j)
			oldIdx := At(gen, j, i)
			t.Data[newIdx] = gen.Data[oldIdx]
		}
	}
	return t
}

func Dot(tA, tB blas.Transpose, a, b blas32.General) blas32.General {
	rows := a.Rows
	if tA != blas.NoTrans {
		rows = a.Cols
	}

	cols := b.Cols
	if tB != blas.NoTrans {
		cols = b.Rows
	}

	y := NewZeros(rows, cols)
	blas32.Gemm(tA, tB, 1.0, a, b, 0.0, y)
	return y
}
