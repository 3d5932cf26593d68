package ports

import (
	"context"

	"revolution/internal/domain"
)

// GameResult is the final outcome of one game, exported when it ends.
type GameResult struct {
	GameID    string            `json:"gameId"`
	Code      string            `json:"code"`
	Rounds    int               `json:"rounds"`
	Standings []domain.Standing `json:"standings"`
}

// Recorder receives finished game results for persistence or statistics.
type Recorder interface {
	RecordResult(ctx context.Context, result GameResult) error
}

// NoopRecorder discards results. Used where no statistics backend exists.
type NoopRecorder struct{}

func (NoopRecorder) RecordResult(context.Context, GameResult) error { return nil }
