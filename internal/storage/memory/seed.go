package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"fieldcheck/internal/domain"
)

// LoadSeed reads a JSON array of directory records from path.
func LoadSeed(path string) ([]domain.DirectoryRecord, error) {
	const op = "memory.LoadSeed"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []domain.DirectoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", op, path, err)
	}
	for i, r := range records {
		if r.PrimaryKey == "" || r.SecondaryKey == "" {
			return nil, fmt.Errorf("%s: record %d: both keys are required", op, i)
		}
	}
	return records, nil
}
