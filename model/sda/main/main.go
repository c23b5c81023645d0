package main

import (
	"log"

	"github.com/sw965/omw/mathx/randx"
	_ "github.com/sw965/raven/blas32/cblas"
	"github.com/sw965/raven/dataset"
	"github.com/sw965/raven/model/da"
	"github.com/sw965/raven/model/sda"
)

const (
	epochs        = 15
	miniBatchSize = 20
	lr            = 0.001
	parallel      = 4
	outputFile    = "sda_mnist.gob"
)

func main() {
	rng := randx.NewPCGFromGlobalSeed()

	log.Println("MNISTデータを読み込んでいます...")
	mnist, err := dataset.LoadMnist()
	if err != nil {
		log.Fatalf("MNISTの読み込み失敗: %v", err)
	}

	model, err := sda.New([]int{784, 500, 500, 500}, rng)
	if err != nil {
		log.Fatalf("モデルの構築失敗: %v", err)
	}

	corruptionLevels := []float32{0.1, 0.2, 0.3}

	for i := range model.Layers {
		trainer := &da.Trainer{
			CorruptionLevel: corruptionLevels[i],
			LR:              lr,
			MiniBatchSize:   miniBatchSize,
			Parallel:        parallel,
		}

		for epoch := 0; epoch < epochs; epoch++ {
			cost, err := model.PretrainLayer(i, mnist.TrainImages, trainer, rng)
			if err != nil {
				log.Fatalf("層%dの事前学習失敗: %v", i, err)
			}
			log.Printf("層%d エポック%d 訓練コスト: %f", i, epoch, cost)
		}
	}

	if err := model.Save(outputFile); err != nil {
		log.Fatalf("保存失敗: %v", err)
	}
	log.Printf("完了しました！ '%s' に保存されました。", outputFile)
}
