package train

import (
	"encoding/json"
	"os"
	"path"
)

// SaveStats writes the per epoch stats as json, creating the directory
// if needed.
func SaveStats(stats []Stats, file string) error {
	if err := os.MkdirAll(path.Dir(file), 0755); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

// LoadStats reads the stats written by SaveStats.
func LoadStats(file string) ([]Stats, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var stats []Stats
	err = json.NewDecoder(f).Decode(&stats)
	return stats, err
}
