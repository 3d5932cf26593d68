package store

import (
	"context"
	"errors"
	"fmt"

	"revolution/internal/domain"
)

var (
	ErrNotFound = errors.New("room not found")
	ErrCorrupt  = errors.New("stored state failed validation")
)

// Store persists one aggregate per room code.
type Store interface {
	Load(ctx context.Context, code string) (*domain.GameState, error)
	Save(ctx context.Context, state *domain.GameState) error
	Delete(ctx context.Context, code string) error
}

// validateShape rejects loaded documents that cannot be a real aggregate,
// so a corrupted or truncated record surfaces as ErrCorrupt instead of
// misbehaving mid-game.
func validateShape(state *domain.GameState, code string) error {
	if state.Code != code {
		return fmt.Errorf("%w: code %q does not match key %q", ErrCorrupt, state.Code, code)
	}
	switch state.Status {
	case domain.StatusLobby, domain.StatusPlaying, domain.StatusTrading,
		domain.StatusRoundEnd, domain.StatusGameOver:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrCorrupt, state.Status)
	}
	if n := len(state.Players); n > state.Settings.PlayerCount {
		return fmt.Errorf("%w: %d players for a %d-seat table", ErrCorrupt, n, state.Settings.PlayerCount)
	}
	seen := make(map[string]bool, len(state.Players))
	for _, p := range state.Players {
		if p == nil || p.SeatID == "" {
			return fmt.Errorf("%w: empty seat entry", ErrCorrupt)
		}
		if seen[p.SeatID] {
			return fmt.Errorf("%w: duplicate seat %q", ErrCorrupt, p.SeatID)
		}
		seen[p.SeatID] = true
	}
	for _, seatID := range state.TurnOrder {
		if !seen[seatID] {
			return fmt.Errorf("%w: rotation references unknown seat %q", ErrCorrupt, seatID)
		}
	}
	return nil
}
