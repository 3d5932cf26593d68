package nakama

import (
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"revolution/internal/domain"
)

// SnapshotPayload is the per-person view of the room, sent on join and on
// demand. Other seats' hands are masked down to counts.
type SnapshotPayload struct {
	YourSeat  string            `json:"yourSeat,omitempty"`
	OwnerID   string            `json:"ownerId,omitempty"`
	HandSizes map[string]int    `json:"handSizes"`
	State     *domain.GameState `json:"state"`
}

// snapshotFor builds the masked aggregate for one person's seat.
func snapshotFor(state *MatchState, seatID string) SnapshotPayload {
	masked := state.Game.Clone()
	sizes := make(map[string]int, len(masked.Players))
	for _, p := range masked.Players {
		sizes[p.SeatID] = len(p.Hand)
		if p.SeatID != seatID {
			p.Hand = nil
		}
	}
	// The undealt remainder is never revealed.
	masked.Burned = nil

	return SnapshotPayload{
		YourSeat:  seatID,
		OwnerID:   state.OwnerID,
		HandSizes: sizes,
		State:     masked,
	}
}

// sendSnapshots delivers each connected person their own masked view.
func (mh *matchHandler) sendSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for personID, presence := range state.Presences {
		payload := snapshotFor(state, state.seatOf(personID))
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("sendSnapshots: %v", err)
			continue
		}
		if err := dispatcher.BroadcastMessage(OpSnapshot, data, []runtime.Presence{presence}, nil, true); err != nil {
			logger.Error("sendSnapshots: %v", err)
		}
	}
}
