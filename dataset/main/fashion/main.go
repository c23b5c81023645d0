package main

import (
	"log"

	"github.com/sw965/omw/encoding/gobx"
	"github.com/sw965/raven/dataset"
)

// Fashion-MNISTのファイル名はMNISTと同じ。作業ディレクトリで区別する。
const (
	trainImagesFile = "train-images-idx3-ubyte.gz"
	trainLabelsFile = "train-labels-idx1-ubyte.gz"
	testImagesFile  = "t10k-images-idx3-ubyte.gz"
	testLabelsFile  = "t10k-labels-idx1-ubyte.gz"
	outputFile      = "fashion_mnist_flat_float_imgs.gob"
)

func main() {
	log.Println("Fashion-MNISTデータの読み込みを開始します...")

	data := dataset.Mnist{}

	var err error
	log.Println("学習用画像を読み込んでいます...")
	data.TrainImages, err = dataset.ReadIDXImages(trainImagesFile)
	if err != nil {
		log.Fatalf("学習用画像の読み込み失敗: %v", err)
	}

	log.Println("学習用ラベルを読み込んでいます...")
	data.TrainLabels, err = dataset.ReadIDXLabels(trainLabelsFile)
	if err != nil {
		log.Fatalf("学習用ラベルの読み込み失敗: %v", err)
	}

	log.Println("テスト用画像を読み込んでいます...")
	data.TestImages, err = dataset.ReadIDXImages(testImagesFile)
	if err != nil {
		log.Fatalf("テスト用画像の読み込み失敗: %v", err)
	}

	log.Println("テスト用ラベルを読み込んでいます...")
	data.TestLabels, err = dataset.ReadIDXLabels(testLabelsFile)
	if err != nil {
		log.Fatalf("テスト用ラベルの読み込み失敗: %v", err)
	}

	log.Printf("読み込み完了: Train[%d], Test[%d]", len(data.TrainImages), len(data.TestImages))

	log.Println("gobファイルに保存しています...")
	if err := gobx.Save(data, outputFile); err != nil {
		log.Fatalf("保存失敗: %v", err)
	}

	log.Printf("完了！ '%s' に保存されました。", outputFile)
}
