package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"revolution/internal/ports"
)

const resultsCollection = "revolution_results"

// ResultRecorder persists finished game results into Nakama storage, one
// system-owned document per game.
type ResultRecorder struct {
	nk runtime.NakamaModule
}

func NewResultRecorder(nk runtime.NakamaModule) *ResultRecorder {
	return &ResultRecorder{nk: nk}
}

func (r *ResultRecorder) RecordResult(ctx context.Context, result ports.GameResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result for game %s: %w", result.GameID, err)
	}

	writes := []*runtime.StorageWrite{{
		Collection:      resultsCollection,
		Key:             result.GameID,
		Value:           string(value),
		PermissionRead:  2, // public read
		PermissionWrite: 0, // server only
	}}
	if _, err := r.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("store result for game %s: %w", result.GameID, err)
	}
	return nil
}
