package results

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes an artifact to a JSON file.
func WriteJSON(results *Results, filename string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// ReadJSON reads an artifact from a JSON file.
func ReadJSON(filename string) (*Results, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return FromJSON(data)
}

// ToJSON renders an artifact as indented JSON.
func ToJSON(results *Results) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}

// FromJSON parses an artifact.
func FromJSON(data []byte) (*Results, error) {
	var results Results
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &results, nil
}
