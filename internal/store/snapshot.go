package store

import (
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const snapshotVersion = 1

// snapshot is the persisted shape. Derived fields are written for
// readability but recomputed on load.
type snapshot struct {
	Version int               `json:"version,omitempty"`
	Items   []domain.LineItem `json:"items"`
}

func encodeSnapshot(items []domain.LineItem) ([]byte, error) {
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// decodeSnapshot accepts unversioned blobs as version 1 and rejects newer
// versions it does not understand.
func decodeSnapshot(data []byte) ([]domain.LineItem, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if s.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported cart version %d", s.Version)
	}
	return domain.Normalize(s.Items), nil
}
