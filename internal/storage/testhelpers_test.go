package storage

import (
	"fmt"
	"time"

	"neuromap/internal/model"
)

func testSnapshot(id string, createdAt time.Time, samples int) model.DatasetSnapshot {
	snapshot := model.DatasetSnapshot{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		Name:            fmt.Sprintf("session-%s", id),
		CreatedAt:       createdAt,
		InputDim:        2,
		OutputDim:       1,
		Normalized:      true,
		InputNames:      []string{"in1", "in2"},
		OutputNames:     []string{"out1"},
	}
	for i := 0; i < samples; i++ {
		snapshot.Samples = append(snapshot.Samples, model.SampleRecord{
			Input:  []float64{float64(i), float64(i) * 0.5},
			Output: []float64{float64(i) * 2},
		})
	}
	return snapshot
}
