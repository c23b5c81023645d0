// Package cblas はblas32の演算をCBLAS(OpenBLAS等)の実装に差し替える。
// 副作用の為だけにインポートする。
//
//	import _ "github.com/sw965/raven/blas32/cblas"
package cblas

import (
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/netlib/blas/netlib"
)

func init() {
	blas32.Use(netlib.Implementation{})
}
