package mathx_test

import (
	"github.com/chewxy/math32"
	"github.com/sw965/raven/mathx"
	"testing"
)

func TestSigmoid(t *testing.T) {
	xs := []float32{-4.0, -1.0, 0.0, 0.5, 3.0}
	for _, x := range xs {
		y := mathx.Sigmoid(x)
		if y <= 0.0 || y >= 1.0 {
			t.Errorf("テスト失敗")
		}
	}

	if math32.Abs(mathx.Sigmoid(0.0)-0.5) > 1e-6 {
		t.Errorf("テスト失敗")
	}
}

func TestSigmoidGrad(t *testing.T) {
	// 出力値からの勾配が数値微分と一致する事
	h := float32(0.001)
	xs := []float32{-2.0, -0.5, 0.0, 1.0, 2.5}
	for _, x := range xs {
		numGrad := mathx.CentralDifference(mathx.Sigmoid(x+h), mathx.Sigmoid(x-h), h)
		grad := mathx.SigmoidGrad(mathx.Sigmoid(x))
		if math32.Abs(numGrad-grad) > 1e-3 {
			t.Errorf("x=%fにおける勾配の誤差が大きすぎる", x)
		}
	}
}
