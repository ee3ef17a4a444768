package storage

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/eleven-am/cadence/internal/domain"
)

const snapshotVersion = 1

// snapshotRecord is the versioned on-disk envelope for a state snapshot. The
// version field guards against decoding records written by an incompatible
// release.
type snapshotRecord struct {
	Version int                   `json:"version"`
	SavedAt time.Time             `json:"saved_at"`
	State   *domain.WorkflowState `json:"state"`
}

func encodeSnapshot(state *domain.WorkflowState) ([]byte, error) {
	record := snapshotRecord{
		Version: snapshotVersion,
		SavedAt: time.Now(),
		State:   state,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return data, nil
}

func decodeSnapshot(data []byte) (*domain.WorkflowState, error) {
	var record snapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if record.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", record.Version)
	}
	if record.State == nil {
		return nil, fmt.Errorf("snapshot record has no state")
	}

	return record.State, nil
}
