package seedfile

import (
	"fmt"

	"github.com/mkodama/tubemark/internal/domain"
)

// Mapper resolves seed entries to canonical video identifiers.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// IDs extracts deduplicated video identifiers from the seed entries,
// preserving file order. Entries that parse to nothing are skipped;
// a file with no usable entry is an error.
func (m *Mapper) IDs(config *Config) ([]string, error) {
	var ids []string
	seen := make(map[string]bool, len(config.Videos))

	for _, entry := range config.Videos {
		id, err := domain.ExtractVideoID(entry)
		if err != nil {
			// Skip unparseable entries
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no usable video entries found in seed file")
	}

	return ids, nil
}
