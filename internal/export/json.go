package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/storage"
)

type RunData struct {
	Run     storage.RunMetadata `json:"run"`
	Steps   int                 `json:"steps"`
	Samples []metrics.Sample    `json:"samples"`
}

func NewRunData(meta storage.RunMetadata, samples []metrics.Sample) RunData {
	if samples == nil {
		samples = []metrics.Sample{}
	}
	return RunData{Run: meta, Steps: len(samples), Samples: samples}
}

// WriteJSON writes the run as indented JSON.
func WriteJSON(w io.Writer, data RunData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, data RunData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, data)
}
