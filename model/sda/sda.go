package sda

import (
	"fmt"
	"math/rand/v2"

	"github.com/sw965/omw/encoding/gobx"
	"github.com/sw965/raven/blas32/tensor/2d"
	"github.com/sw965/raven/model/da"
	"gonum.org/v1/gonum/blas/blas32"
)

/*
	Model は積層デノイジングオートエンコーダー。
	各層は独立したdA.Modelで、下位層の隠れ表現が上位層の入力になる。
	層毎の貪欲な事前学習はPretrainLayerで下から順に行う。
*/
type Model struct {
	Layers []*da.Model
}

// New はsizes[0]を可視層とし、以降を各隠れ層のユニット数としてモデルを作る。
func New(sizes []int, rng *rand.Rand) (Model, error) {
	if len(sizes) < 2 {
		return Model{}, fmt.Errorf("層のサイズ(%d個)は可視層と隠れ層の最低2つ必要です。", len(sizes))
	}

	layers := make([]*da.Model, len(sizes)-1)
	for i := 0; i < len(sizes)-1; i++ {
		layer, err := da.New(sizes[i], sizes[i+1], rng)
		if err != nil {
			return Model{}, err
		}
		layers[i] = &layer
	}
	return Model{Layers: layers}, nil
}

func LoadModel(path string) (Model, error) {
	return gobx.Load[Model](path)
}

func (m *Model) Save(path string) error {
	return gobx.Save(m, path)
}

// PropagateTo は下位i層のエンコーダーを順に通した隠れ表現を返す。i == 0 の場合は入力をそのまま返す。
func (m *Model) PropagateTo(i int, x blas32.General) (blas32.General, error) {
	if i < 0 || i > len(m.Layers) {
		return blas32.General{}, fmt.Errorf("層のインデックス(%d)が範囲外です。", i)
	}

	h := x
	var err error
	for _, layer := range m.Layers[:i] {
		h, err = layer.Encode(h)
		if err != nil {
			return blas32.General{}, err
		}
	}
	return h, nil
}

// Encode は全層のエンコーダーを通した最上位の隠れ表現を返す。
func (m *Model) Encode(x blas32.General) (blas32.General, error) {
	return m.PropagateTo(len(m.Layers), x)
}

// Reconstruct は全層で符号化した後、逆順に各層のデコーダーを通して復元する。
func (m *Model) Reconstruct(x blas32.General) (blas32.General, error) {
	h, err := m.Encode(x)
	if err != nil {
		return blas32.General{}, err
	}

	for i := len(m.Layers) - 1; i >= 0; i-- {
		h, err = m.Layers[i].Decode(h)
		if err != nil {
			return blas32.General{}, err
		}
	}
	return h, nil
}

/*
	PretrainLayer は訓練データを学習済みの下位層で隠れ表現に変換し、
	i番目の層を1エポック分だけ事前学習する。平均コストを返す。
	下位層のパラメーターは更新されない。
*/
func (m *Model) PretrainLayer(i int, xs []blas32.Vector, trainer *da.Trainer, rng *rand.Rand) (float32, error) {
	if i < 0 || i >= len(m.Layers) {
		return 0.0, fmt.Errorf("層のインデックス(%d)が範囲外です。", i)
	}

	batch, err := tensor2d.FromVectors(xs)
	if err != nil {
		return 0.0, err
	}

	h, err := m.PropagateTo(i, batch)
	if err != nil {
		return 0.0, err
	}

	hs := tensor2d.ToVectors(h)
	return trainer.Fit(m.Layers[i], hs, rng)
}
