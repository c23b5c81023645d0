package vector_test

import (
	"github.com/sw965/raven/blas32/vector"
	"slices"
	"testing"
)

func TestNewZeros(t *testing.T) {
	vec := vector.NewZeros(7)
	if vec.N != 7 || vec.Inc != 1 || len(vec.Data) != 7 {
		t.Fatalf("テスト失敗")
	}

	for _, v := range vec.Data {
		if v != 0.0 {
			t.Errorf("テスト失敗")
		}
	}

	like := vector.NewZerosLike(vec)
	if like.N != vec.N || len(like.Data) != len(vec.Data) {
		t.Errorf("テスト失敗")
	}
}

func TestFromSlice(t *testing.T) {
	data := []float32{1.0, -2.0, 3.0}
	vec := vector.FromSlice(data)

	if vec.N != 3 || vec.Inc != 1 {
		t.Fatalf("テスト失敗")
	}

	// コピーせずにデータを共有する
	data[0] = 100.0
	if vec.Data[0] != 100.0 {
		t.Errorf("テスト失敗")
	}
}

func TestClone(t *testing.T) {
	vec := vector.FromSlice([]float32{-1.0, -2.0, 3.0, 4.0})
	c := vector.Clone(vec)

	if !slices.Equal(c.Data, vec.Data) {
		t.Errorf("テスト失敗")
	}

	c.Data[0] = 1000.0
	if vec.Data[0] != -1.0 {
		t.Errorf("テスト失敗")
	}
}
