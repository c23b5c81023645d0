package dataset

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sw965/omw/encoding/gobx"
	"gonum.org/v1/gonum/blas/blas32"
)

const (
	baseURL = "https://github.com/sw965/raven/releases/download/v0.1.0-data/"

	mnistFile        = "mnist_flat_float_imgs.gob"
	fashionMnistFile = "fashion_mnist_flat_float_imgs.gob"
)

// Mnist は訓練用とテスト用の画像・ラベルを保持します。
// 画像は1枚につき784次元のベクトルで、画素値は[0, 1]に正規化されています。
type Mnist struct {
	TrainImages []blas32.Vector
	TrainLabels []float32
	TestImages  []blas32.Vector
	TestLabels  []float32
}

// LoadMnist はMNISTデータを読み込みます。初回はダウンロードします。
func LoadMnist() (Mnist, error) {
	return loadDataset(mnistFile)
}

// LoadFashionMnist はFashionMNISTデータを読み込みます。形式はMNISTと同じです。
func LoadFashionMnist() (Mnist, error) {
	return loadDataset(fashionMnistFile)
}

func loadDataset(name string) (Mnist, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Mnist{}, fmt.Errorf("ホームディレクトリの取得に失敗: %w", err)
	}

	dataDir := filepath.Join(home, ".raven_dataset")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return Mnist{}, err
	}

	path := filepath.Join(dataDir, name)
	if err := ensureFile(path, baseURL+name); err != nil {
		return Mnist{}, err
	}

	return gobx.Load[Mnist](path)
}

func ensureFile(path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	fmt.Printf("Downloading %s...\n", url)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
