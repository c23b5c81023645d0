package da

import (
	"fmt"
	"math/rand/v2"

	"github.com/sw965/omw/slicesx"
	"github.com/sw965/raven/blas32/tensor/2d"
	"gonum.org/v1/gonum/blas/blas32"
)

type Optimizer func(*Model, *GradBuffer) error

/*
	Trainer は1回のFitで訓練データ1周分(1エポック)のミニバッチ学習を行う。
	エポックの繰り返し・打ち切り・ログは呼び出し側が行う。
	Optimizerがnilの場合は学習率LRの単純な勾配降下で更新する。
*/
type Trainer struct {
	CorruptionLevel float32
	LR              float32
	MiniBatchSize   int
	Parallel        int
	Optimizer       Optimizer
}

func (t *Trainer) Validate() error {
	if t.CorruptionLevel < 0.0 || t.CorruptionLevel >= 1.0 {
		return fmt.Errorf("破損率(%f)は[0, 1)の範囲でなければなりません。", t.CorruptionLevel)
	}

	if t.Optimizer == nil && t.LR <= 0.0 {
		return fmt.Errorf("学習率(%f)が正の値でない為、モデルの訓練を出来ません。", t.LR)
	}

	if t.MiniBatchSize <= 0 {
		return fmt.Errorf("ミニバッチサイズ(%d)が正の値でない為、モデルの訓練を出来ません。", t.MiniBatchSize)
	}
	return nil
}

// Fit は訓練データをシャッフルして1周し、ミニバッチ毎に1ステップ更新する。平均コストを返す。
func (t *Trainer) Fit(model *Model, xs []blas32.Vector, rng *rand.Rand) (float32, error) {
	if err := t.Validate(); err != nil {
		return 0.0, err
	}

	n := len(xs)
	if n == 0 {
		return 0.0, fmt.Errorf("訓練データが空である為、モデルの訓練を出来ません。")
	}

	size := t.MiniBatchSize
	if n < size {
		size = n
	}

	// 並列計算時の破損用乱数は、引数の生成器から決定的に派生させる。
	var rngs []*rand.Rand
	if t.Parallel > 1 {
		rngs = make([]*rand.Rand, t.Parallel)
		for i := range rngs {
			rngs[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
		}
	}

	idxs := rng.Perm(n)
	var totalCost float32

	for i := 0; i < n; i += size {
		end := i + size
		if end > n {
			end = n
		}

		miniIdxs := idxs[i:end]
		miniXs, err := slicesx.ElementsByIndices(xs, miniIdxs...)
		if err != nil {
			return 0.0, err
		}

		batch, err := tensor2d.FromVectors(miniXs)
		if err != nil {
			return 0.0, err
		}

		var cost float32
		var grad GradBuffer
		if rngs != nil {
			cost, grad, err = model.ComputeGradParallel(batch, t.CorruptionLevel, rngs)
		} else {
			cost, grad, err = model.ComputeGrad(batch, t.CorruptionLevel, rng)
		}
		if err != nil {
			return 0.0, err
		}

		if t.Optimizer != nil {
			err = t.Optimizer(model, &grad)
		} else {
			err = model.Parameter.AxpyGrad(-t.LR, &grad)
		}
		if err != nil {
			return 0.0, err
		}

		totalCost += cost * float32(len(miniIdxs))
	}
	return totalCost / float32(n), nil
}
