package browse

import (
	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/predict"
	"github.com/abhisek/wmview/internal/viewer"
)

// datasetLoadedMsg is sent when the dataset (and, on resume, the saved
// position) has been read.
type datasetLoadedMsg struct {
	Dataset  *dataset.Dataset
	Position *viewer.Position
	Err      error
}

// predictionMsg carries a model answer for SampleID. Seq identifies the
// request that produced it.
type predictionMsg struct {
	Seq        int
	SampleID   string
	Prediction *predict.Prediction
	Err        error
}
