package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
)

// SaveModel はモデルをファイルに保存する
//
// model は gob.GobEncoder を実装しているか、エクスポートされたフィールドを
// 持つ必要がある。
//
// 使用例:
//
//	clf := linear_model.NewLogisticRegression()
//	// ... clf.Fit(X, y) ...
//	err := model.SaveModel(clf, "spam.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}

	if err := SaveModelToWriter(model, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.WithStack(file.Close())
}

// LoadModel はファイルからモデルを読み込む
//
// 使用例:
//
//	clf := linear_model.NewLogisticRegression()
//	err := model.LoadModel(clf, "spam.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
