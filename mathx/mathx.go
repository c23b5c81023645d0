package mathx

import (
	"github.com/chewxy/math32"
)

func Sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}

// SigmoidGrad は出力値yから勾配を求める。入力値からではない。
func SigmoidGrad(y float32) float32 {
	return y * (1.0 - y)
}

func CentralDifference(plusY, minusY, h float32) float32 {
	return (plusY - minusY) / (2.0 * h)
}
