package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/soapsort/internal/metrics"
)

type ExportData struct {
	RunMetadata
	History []metrics.Sample `json:"history"`
}

// ExportJSON writes the run and its history to path.
func (s *Store) ExportJSON(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.WriteJSON(runID, file)
}

// WriteJSON encodes the run and its history to w.
func (s *Store) WriteJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, History: history})
}
