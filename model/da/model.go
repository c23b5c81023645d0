package da

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/sw965/omw/encoding/gobx"
	omath "github.com/sw965/omw/mathx"
	"github.com/sw965/omw/parallel"
	"github.com/sw965/raven/blas32/tensor/2d"
	"github.com/sw965/raven/blas32/vector"
	"github.com/sw965/raven/mathx"
	"github.com/sw965/raven/mathx/randx"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

/*
	Model はデノイジングオートエンコーダー。
	入力を確率levelで破損させ、sigmoid(x・W + b)で隠れ表現に符号化し、
	sigmoid(y・Wᵀ + b')で復元する。復元の目標は常に破損前の入力。
	1回の呼び出しで1ステップだけ進む。エポックの繰り返しは呼び出し側が行う。
*/
type Model struct {
	Parameter Parameter
	NVisible  int
	NHidden   int
}

// New は重みをGlorot一様分布、バイアスを0で初期化した新しいモデルを返す。
func New(nVisible, nHidden int, rng *rand.Rand) (Model, error) {
	if nVisible <= 0 || nHidden <= 0 {
		return Model{}, fmt.Errorf("可視層(%d)と隠れ層(%d)のユニット数は正の値でなければなりません。", nVisible, nHidden)
	}

	param := Parameter{
		Weight:      tensor2d.NewGlorotSigmoid(nVisible, nHidden, rng),
		HiddenBias:  vector.NewZeros(nHidden),
		VisibleBias: vector.NewZeros(nVisible),
	}

	return Model{
		Parameter: param,
		NVisible:  nVisible,
		NHidden:   nHidden,
	}, nil
}

/*
	NewShared は呼び出し側が保持するパラメーターを借りてモデルを作る。
	コピーはしない為、同じParameterから作られたモデル同士は更新を共有する。
	積層時に上位層と重みを共有する場合に使う。
*/
func NewShared(param Parameter, nVisible, nHidden int) (Model, error) {
	m := Model{
		Parameter: param,
		NVisible:  nVisible,
		NHidden:   nHidden,
	}

	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func LoadModel(path string) (Model, error) {
	return gobx.Load[Model](path)
}

func (m *Model) Save(path string) error {
	return gobx.Save(m, path)
}

func (m *Model) Validate() error {
	w := m.Parameter.Weight
	if w.Rows != m.NVisible || w.Cols != m.NHidden {
		return fmt.Errorf("重み行列の形状(%d, %d)がモデルの形状(%d, %d)と一致しません。", w.Rows, w.Cols, m.NVisible, m.NHidden)
	}

	if w.Stride != w.Cols {
		return fmt.Errorf("重み行列のStride(%d)が列数(%d)と一致しません。", w.Stride, w.Cols)
	}

	if len(w.Data) < w.Rows*w.Cols {
		return fmt.Errorf("重み行列のデータ長(%d)が不足しています。", len(w.Data))
	}

	if m.Parameter.HiddenBias.N != m.NHidden || m.Parameter.HiddenBias.Inc != 1 {
		return fmt.Errorf("隠れ層バイアスの次元数(%d)がモデルの隠れ層(%d)と一致しません。", m.Parameter.HiddenBias.N, m.NHidden)
	}

	if m.Parameter.VisibleBias.N != m.NVisible || m.Parameter.VisibleBias.Inc != 1 {
		return fmt.Errorf("可視層バイアスの次元数(%d)がモデルの可視層(%d)と一致しません。", m.Parameter.VisibleBias.N, m.NVisible)
	}
	return nil
}

func (m Model) Clone() Model {
	m.Parameter = m.Parameter.Clone()
	return m
}

func (m *Model) validateBatch(x blas32.General, cols int) error {
	if x.Rows <= 0 {
		return fmt.Errorf("バッチが空です。")
	}

	if x.Cols != cols {
		return fmt.Errorf("入力データの次元数(%d)がモデルの次元数(%d)と一致しません。", x.Cols, cols)
	}

	if x.Stride != x.Cols {
		return fmt.Errorf("Stride(%d)が列数(%d)と一致しない行列には対応していません。", x.Stride, x.Cols)
	}

	if len(x.Data) < x.Rows*x.Cols {
		return fmt.Errorf("行列のデータ長(%d)が不足しています。", len(x.Data))
	}
	return nil
}

/*
	Corrupt は各要素を独立に確率levelで0にした新しい行列を返す。
	残りの要素はそのまま保持される。level == 0 の場合は入力のコピーを返し、
	乱数は消費しない。
*/
func (m *Model) Corrupt(x blas32.General, level float32, rng *rand.Rand) (blas32.General, error) {
	if err := m.validateBatch(x, m.NVisible); err != nil {
		return blas32.General{}, err
	}

	if level < 0.0 || level >= 1.0 {
		return blas32.General{}, fmt.Errorf("破損率(%f)は[0, 1)の範囲でなければなりません。", level)
	}

	tilde := tensor2d.Clone(x)
	if level == 0.0 {
		return tilde, nil
	}

	for i := range tilde.Data {
		if randx.Bernoulli(level, rng) {
			tilde.Data[i] = 0.0
		}
	}
	return tilde, nil
}

// Encode は隠れ表現 sigmoid(x・W + b) を返す。xは(バッチ × 可視層)の行列。
func (m *Model) Encode(x blas32.General) (blas32.General, error) {
	if err := m.validateBatch(x, m.NVisible); err != nil {
		return blas32.General{}, err
	}

	y := tensor2d.NewTileRows(m.Parameter.HiddenBias, x.Rows)
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1.0, x, m.Parameter.Weight, 1.0, y)
	for i := range y.Data {
		y.Data[i] = mathx.Sigmoid(y.Data[i])
	}
	return y, nil
}

// Decode は復元 sigmoid(y・Wᵀ + b') を返す。エンコーダーと同じ重みを転置して使う。
func (m *Model) Decode(y blas32.General) (blas32.General, error) {
	if err := m.validateBatch(y, m.NHidden); err != nil {
		return blas32.General{}, err
	}

	z := tensor2d.NewTileRows(m.Parameter.VisibleBias, y.Rows)
	blas32.Gemm(blas.NoTrans, blas.Trans, 1.0, y, m.Parameter.Weight, 1.0, z)
	for i := range z.Data {
		z.Data[i] = mathx.Sigmoid(z.Data[i])
	}
	return z, nil
}

// Reconstruct は破損なしの順伝播 Decode(Encode(x)) を返す。
func (m *Model) Reconstruct(x blas32.General) (blas32.General, error) {
	y, err := m.Encode(x)
	if err != nil {
		return blas32.General{}, err
	}
	return m.Decode(y)
}

// Loss は破損なしの復元に対する平均クロスエントロピー誤差を返す。
func (m *Model) Loss(x blas32.General) (float32, error) {
	z, err := m.Reconstruct(x)
	if err != nil {
		return 0.0, err
	}
	return crossEntropy(x, z), nil
}

/*
	crossEntropy はバッチの各行の二値クロスエントロピーを合計し、バッチ平均を返す。
	log(0)を防ぐ為、zは[e, 1-e]の範囲に制限する。
*/
func crossEntropy(x, z blas32.General) float32 {
	e := float32(0.0001)
	losses := tensor2d.NewZerosLike(x)
	for i := range x.Data {
		ze := z.Data[i]
		if ze < e {
			ze = e
		}
		if ze > 1.0-e {
			ze = 1.0 - e
		}

		xe := x.Data[i]
		losses.Data[i] = -(xe*math32.Log(ze) + (1.0-xe)*math32.Log(1.0-ze))
	}

	perExample := tensor2d.Sum1(losses)
	return omath.Sum(perExample.Data...) / float32(x.Rows)
}

/*
	ComputeGrad は破損・符号化・復元の1回分の順伝播に対するコストと勾配を返す。
	勾配は逆伝播を閉形式で直接計算する。重みはエンコーダーとデコーダーで共有されている為、
	両経路の勾配を加算する。
*/
func (m *Model) ComputeGrad(x blas32.General, level float32, rng *rand.Rand) (float32, GradBuffer, error) {
	tilde, err := m.Corrupt(x, level, rng)
	if err != nil {
		return 0.0, GradBuffer{}, err
	}

	y, err := m.Encode(tilde)
	if err != nil {
		return 0.0, GradBuffer{}, err
	}

	z, err := m.Decode(y)
	if err != nil {
		return 0.0, GradBuffer{}, err
	}

	// 復元の目標は破損前のx。tildeではない。
	cost := crossEntropy(x, z)
	n := float32(x.Rows)

	// z = sigmoid(zPre) と クロスエントロピーの合成の勾配
	// dL/dzPre = (z - x) / バッチサイズ
	dzPre := tensor2d.Clone(z)
	tensor2d.Axpy(-1.0, x, dzPre)
	tensor2d.Scal(1.0/n, dzPre)

	// zPre = (y・Wᵀ) + b'
	// dL/db' = dzPreの列和
	dVisibleBias := tensor2d.Sum0(dzPre)

	// デコーダー経路: dL/dW = dzPreᵀ・y
	dWeight := tensor2d.Dot(blas.Trans, blas.NoTrans, dzPre, y)

	// dL/dy = dzPre・W
	dy := tensor2d.Dot(blas.NoTrans, blas.NoTrans, dzPre, m.Parameter.Weight)

	// y = sigmoid(yPre)
	// dL/dyPre = dL/dy * y * (1 - y)
	dyPre := tensor2d.NewZerosLike(dy)
	for i := range dyPre.Data {
		dyPre.Data[i] = dy.Data[i] * mathx.SigmoidGrad(y.Data[i])
	}

	// yPre = (tilde・W) + b
	// dL/db = dyPreの列和
	dHiddenBias := tensor2d.Sum0(dyPre)

	// エンコーダー経路: dL/dW = tildeᵀ・dyPre を加算する(tied weights)
	encWeight := tensor2d.Dot(blas.Trans, blas.NoTrans, tilde, dyPre)
	tensor2d.Axpy(1.0, encWeight, dWeight)

	grad := GradBuffer{
		Weight:      dWeight,
		HiddenBias:  dHiddenBias,
		VisibleBias: dVisibleBias,
	}
	return cost, grad, nil
}

/*
	ComputeGradParallel はバッチの各例を複数のワーカーに分配して勾配を計算する。
	破損の乱数はワーカー毎に独立した生成器を使う。
	各ワーカーの勾配を逐次的に合計してから平均する為、結果は逐次計算と一致する。
*/
func (m *Model) ComputeGradParallel(x blas32.General, level float32, rngs []*rand.Rand) (float32, GradBuffer, error) {
	if err := m.validateBatch(x, m.NVisible); err != nil {
		return 0.0, GradBuffer{}, err
	}

	if level < 0.0 || level >= 1.0 {
		return 0.0, GradBuffer{}, fmt.Errorf("破損率(%f)は[0, 1)の範囲でなければなりません。", level)
	}

	p := len(rngs)
	if p == 0 {
		return 0.0, GradBuffer{}, fmt.Errorf("乱数生成器が空である為、並列勾配計算を出来ません。")
	}

	n := x.Rows
	grads := make(GradBuffers, p)
	for i := 0; i < p; i++ {
		grads[i] = m.Parameter.NewGradBufferZerosLike()
	}
	costs := make([]float32, p)

	err := parallel.For(n, p, func(workerId, idx int) error {
		offset := idx * x.Stride
		row := blas32.General{
			Rows:   1,
			Cols:   x.Cols,
			Stride: x.Stride,
			Data:   x.Data[offset : offset+x.Cols],
		}

		cost, grad, err := m.ComputeGrad(row, level, rngs[workerId])
		if err != nil {
			return err
		}

		costs[workerId] += cost
		grads[workerId].Axpy(1.0, &grad)
		return nil
	})

	if err != nil {
		return 0.0, GradBuffer{}, err
	}

	total, err := grads.ReduceSum()
	if err != nil {
		return 0.0, GradBuffer{}, err
	}
	total.Scal(1.0 / float32(n))

	cost := omath.Sum(costs...) / float32(n)
	return cost, total, nil
}

// Train はミニバッチに対して勾配を計算し、パラメーターを1ステップ更新する。コストを返す。
func (m *Model) Train(x blas32.General, level, lr float32, rng *rand.Rand) (float32, error) {
	if lr <= 0.0 {
		return 0.0, fmt.Errorf("学習率(%f)は正の値でなければなりません。", lr)
	}

	cost, grad, err := m.ComputeGrad(x, level, rng)
	if err != nil {
		return 0.0, err
	}

	err = m.Parameter.AxpyGrad(-lr, &grad)
	return cost, err
}
