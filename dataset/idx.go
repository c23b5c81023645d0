package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/sw965/raven/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
)

// ReadIDXImages はIDX形式(gzip圧縮)の画像ファイルを読み込み、
// 画素値を[0, 1]に正規化した1枚1ベクトルのスライスを返します。
func ReadIDXImages(path string) ([]blas32.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	// ヘッダー読み飛ばし (16バイト)
	header := make([]byte, 16)
	if _, err := io.ReadFull(gr, header); err != nil {
		return nil, err
	}

	count := binary.BigEndian.Uint32(header[4:8])
	rows := binary.BigEndian.Uint32(header[8:12])
	cols := binary.BigEndian.Uint32(header[12:16])
	imageSize := int(rows * cols)

	images := make([]blas32.Vector, count)

	// 一時読み込み用のバッファ
	buf := make([]byte, imageSize)

	for i := range images {
		if _, err := io.ReadFull(gr, buf); err != nil {
			return nil, err
		}

		// byte(0-255) -> float32(0.0-1.0) に変換
		floatRow := make([]float32, imageSize)
		for j, b := range buf {
			floatRow[j] = float32(b) / 255.0
		}
		images[i] = vector.FromSlice(floatRow)
	}
	return images, nil
}

// ReadIDXLabels はIDX形式(gzip圧縮)のラベルファイルを読み込みます。
func ReadIDXLabels(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	header := make([]byte, 8)
	if _, err := io.ReadFull(gr, header); err != nil {
		return nil, err
	}

	count := binary.BigEndian.Uint32(header[4:8])

	// 一旦バイト列として読み込む
	byteLabels := make([]byte, count)
	if _, err := io.ReadFull(gr, byteLabels); err != nil {
		return nil, err
	}

	labels := make([]float32, count)
	for i, b := range byteLabels {
		labels[i] = float32(b)
	}
	return labels, nil
}
