package da_test

import (
	"github.com/chewxy/math32"
	"github.com/sw965/raven/model/da"
	"gonum.org/v1/gonum/blas/blas32"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"
)

func TestParameterJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "param.json")

	param := da.Parameter{
		Weight: blas32.General{
			Rows:   2,
			Cols:   3,
			Stride: 3,
			Data:   []float32{0.1, -0.2, 0.3, 0.4, -0.5, 0.6},
		},
		HiddenBias:  blas32.Vector{N: 3, Inc: 1, Data: []float32{0.01, 0.02, -0.03}},
		VisibleBias: blas32.Vector{N: 2, Inc: 1, Data: []float32{-0.1, 0.2}},
	}

	if err := param.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	loaded, err := da.LoadParameterJSON(path)
	if err != nil {
		t.Fatalf("LoadParameterJSON failed: %v", err)
	}

	if loaded.Weight.Rows != 2 || loaded.Weight.Cols != 3 {
		t.Errorf("テスト失敗")
	}

	if !slices.Equal(loaded.Weight.Data, param.Weight.Data) {
		t.Errorf("テスト失敗")
	}

	if !slices.Equal(loaded.HiddenBias.Data, param.HiddenBias.Data) {
		t.Errorf("テスト失敗")
	}

	if !slices.Equal(loaded.VisibleBias.Data, param.VisibleBias.Data) {
		t.Errorf("テスト失敗")
	}
}

func TestModelGob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	rng := rand.New(rand.NewPCG(51, 52))
	model, err := da.New(4, 2, rng)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := model.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := da.LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	if loaded.NVisible != model.NVisible || loaded.NHidden != model.NHidden {
		t.Errorf("テスト失敗")
	}

	if !slices.Equal(loaded.Parameter.Weight.Data, model.Parameter.Weight.Data) {
		t.Errorf("テスト失敗")
	}

	if !slices.Equal(loaded.Parameter.HiddenBias.Data, model.Parameter.HiddenBias.Data) {
		t.Errorf("テスト失敗")
	}

	if !slices.Equal(loaded.Parameter.VisibleBias.Data, model.Parameter.VisibleBias.Data) {
		t.Errorf("テスト失敗")
	}
}

func TestParameterAxpyGrad(t *testing.T) {
	param := da.Parameter{
		Weight: blas32.General{
			Rows:   2,
			Cols:   2,
			Stride: 2,
			Data:   []float32{0.1, -0.2, 0.3, 0.4},
		},
		HiddenBias:  blas32.Vector{N: 2, Inc: 1, Data: []float32{0.01, -0.02}},
		VisibleBias: blas32.Vector{N: 2, Inc: 1, Data: []float32{0.05, -0.05}},
	}

	grad := da.GradBuffer{
		Weight: blas32.General{
			Rows:   2,
			Cols:   2,
			Stride: 2,
			Data:   []float32{0.2, 0.4, -0.6, 0.8},
		},
		HiddenBias:  blas32.Vector{N: 2, Inc: 1, Data: []float32{0.1, 0.2}},
		VisibleBias: blas32.Vector{N: 2, Inc: 1, Data: []float32{-0.1, 0.3}},
	}

	if err := param.AxpyGrad(-0.5, &grad); err != nil {
		t.Fatalf("AxpyGrad failed: %v", err)
	}

	expectedW := []float32{0.1 - 0.5*0.2, -0.2 - 0.5*0.4, 0.3 + 0.5*0.6, 0.4 - 0.5*0.8}
	for i := range expectedW {
		if math32.Abs(param.Weight.Data[i]-expectedW[i]) > 1e-6 {
			t.Errorf("重み[%d]: 期待値(%f), 実際値(%f)", i, expectedW[i], param.Weight.Data[i])
		}
	}

	expectedHB := []float32{0.01 - 0.5*0.1, -0.02 - 0.5*0.2}
	for i := range expectedHB {
		if math32.Abs(param.HiddenBias.Data[i]-expectedHB[i]) > 1e-6 {
			t.Errorf("隠れ層バイアス[%d]: 期待値(%f), 実際値(%f)", i, expectedHB[i], param.HiddenBias.Data[i])
		}
	}

	expectedVB := []float32{0.05 + 0.5*0.1, -0.05 - 0.5*0.3}
	for i := range expectedVB {
		if math32.Abs(param.VisibleBias.Data[i]-expectedVB[i]) > 1e-6 {
			t.Errorf("可視層バイアス[%d]: 期待値(%f), 実際値(%f)", i, expectedVB[i], param.VisibleBias.Data[i])
		}
	}

	// 形状が合わない勾配はエラー
	bad := da.GradBuffer{
		Weight:      blas32.General{Rows: 3, Cols: 2, Stride: 2, Data: make([]float32, 6)},
		HiddenBias:  blas32.Vector{N: 2, Inc: 1, Data: make([]float32, 2)},
		VisibleBias: blas32.Vector{N: 2, Inc: 1, Data: make([]float32, 2)},
	}
	if err := param.AxpyGrad(1.0, &bad); err == nil {
		t.Errorf("エラーが返されるべき")
	}
}

func TestParameterClone(t *testing.T) {
	param := da.Parameter{
		Weight: blas32.General{
			Rows:   2,
			Cols:   2,
			Stride: 2,
			Data:   []float32{0.1, -0.2, 0.3, 0.4},
		},
		HiddenBias:  blas32.Vector{N: 2, Inc: 1, Data: []float32{0.01, -0.02}},
		VisibleBias: blas32.Vector{N: 2, Inc: 1, Data: []float32{0.05, -0.05}},
	}

	c := param.Clone()
	c.Weight.Data[0] = 99.0
	c.HiddenBias.Data[0] = 99.0
	c.VisibleBias.Data[0] = 99.0

	if param.Weight.Data[0] != 0.1 || param.HiddenBias.Data[0] != 0.01 || param.VisibleBias.Data[0] != 0.05 {
		t.Errorf("テスト失敗")
	}
}

func TestGradBufferReduceSum(t *testing.T) {
	newGrad := func(wv, hv, vv float32) da.GradBuffer {
		return da.GradBuffer{
			Weight:      blas32.General{Rows: 2, Cols: 2, Stride: 2, Data: []float32{wv, wv, wv, wv}},
			HiddenBias:  blas32.Vector{N: 2, Inc: 1, Data: []float32{hv, hv}},
			VisibleBias: blas32.Vector{N: 2, Inc: 1, Data: []float32{vv, vv}},
		}
	}

	grads := da.GradBuffers{
		newGrad(1.0, 0.5, -0.25),
		newGrad(2.0, 1.5, 0.75),
		newGrad(-0.5, 0.25, 0.5),
	}

	total, err := grads.ReduceSum()
	if err != nil {
		t.Fatalf("ReduceSum failed: %v", err)
	}

	for _, v := range total.Weight.Data {
		if math32.Abs(v-2.5) > 1e-6 {
			t.Errorf("テスト失敗")
		}
	}

	for _, v := range total.HiddenBias.Data {
		if math32.Abs(v-2.25) > 1e-6 {
			t.Errorf("テスト失敗")
		}
	}

	for _, v := range total.VisibleBias.Data {
		if math32.Abs(v-1.0) > 1e-6 {
			t.Errorf("テスト失敗")
		}
	}

	// 加算元が変異していない事
	if grads[0].Weight.Data[0] != 1.0 {
		t.Errorf("テスト失敗")
	}

	if _, err := da.GradBuffers{}.ReduceSum(); err == nil {
		t.Errorf("エラーが返されるべき")
	}
}
