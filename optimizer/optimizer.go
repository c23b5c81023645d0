package optimizer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/sw965/raven/model/da"
)

type Momentum struct {
	LearningRate float32
	MomentumRate float32
	velocity     da.GradBuffer
}

func NewMomentum(param *da.Parameter) Momentum {
	return Momentum{
		LearningRate: 0.01,
		MomentumRate: 0.9,
		velocity:     param.NewGradBufferZerosLike(),
	}
}

func (m *Momentum) Optimizer(model *da.Model, grad *da.GradBuffer) error {
	m.velocity.Scal(m.MomentumRate)
	m.velocity.Axpy(-m.LearningRate, grad)
	return model.Parameter.AxpyGrad(1.0, &m.velocity)
}

type Adam struct {
	LearningRate float32
	Beta1        float32
	Beta2        float32
	Epsilon      float32

	iter int
	m    da.GradBuffer
	v    da.GradBuffer
}

func NewAdam(param *da.Parameter) *Adam {
	return &Adam{
		LearningRate: 0.001,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
		iter:         0,
		m:            param.NewGradBufferZerosLike(),
		v:            param.NewGradBufferZerosLike(),
	}
}

// Optimizer はAdam則でパラメーターをインプレース更新する。
func (a *Adam) Optimizer(model *da.Model, grad *da.GradBuffer) error {
	w := model.Parameter.Weight
	if len(a.m.Weight.Data) != len(grad.Weight.Data) || len(a.m.Weight.Data) != len(w.Data) {
		return fmt.Errorf("Adam: parameters/grads size mismatch")
	}

	a.iter++
	beta1, beta2 := a.Beta1, a.Beta2
	lrt := a.LearningRate *
		math32.Sqrt(1-math32.Pow(beta2, float32(a.iter))) /
		(1 - math32.Pow(beta1, float32(a.iter)))

	a.update(w.Data, grad.Weight.Data, a.m.Weight.Data, a.v.Weight.Data, lrt)
	a.update(model.Parameter.HiddenBias.Data, grad.HiddenBias.Data, a.m.HiddenBias.Data, a.v.HiddenBias.Data, lrt)
	a.update(model.Parameter.VisibleBias.Data, grad.VisibleBias.Data, a.m.VisibleBias.Data, a.v.VisibleBias.Data, lrt)
	return nil
}

func (a *Adam) update(w, g, mBuf, vBuf []float32, lrt float32) {
	for j, grad := range g {
		mBuf[j] += (1 - a.Beta1) * (grad - mBuf[j])
		vBuf[j] += (1 - a.Beta2) * (grad*grad - vBuf[j])
		w[j] -= lrt * mBuf[j] / (math32.Sqrt(vBuf[j]) + a.Epsilon)
	}
}
