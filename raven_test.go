package raven_test

import (
	"github.com/chewxy/math32"
	"github.com/sw965/raven"
	"testing"
)

func TestNumericalGradient(t *testing.T) {
	// f(x) = x0² + x1*x2 の勾配は (2*x0, x2, x1)
	f := func(xs []float32) float32 {
		return xs[0]*xs[0] + xs[1]*xs[2]
	}

	xs := []float32{1.5, -2.0, 3.0}
	grad := raven.NumericalGradient(xs, f)
	expected := []float32{3.0, 3.0, -2.0}

	for i := range grad {
		diff := math32.Abs(grad[i] - expected[i])
		if diff > 1e-2 {
			t.Errorf("勾配[%d]の誤差が大きすぎる: %f", i, diff)
		}
	}

	// 引数のスライスは元の値に戻されている事
	if xs[0] != 1.5 || xs[1] != -2.0 || xs[2] != 3.0 {
		t.Errorf("テスト失敗")
	}
}
