package bot

import "revolution/internal/domain"

// ViewFor projects the aggregate into the restricted view a brain receives
// for the given seat. The hand is copied so a brain can never reach the
// authoritative state.
func ViewFor(s *domain.GameState, seatID string) View {
	view := View{
		LastPlay: s.LastPlay,
		TwosHigh: s.Settings.TwosHigh,
		Leading:  s.LastPlay == nil,
	}
	p := s.PlayerBySeat(seatID)
	if p == nil {
		return view
	}
	view.Hand = append([]domain.Card(nil), p.Hand...)

	for _, other := range s.Players {
		if other.SeatID == seatID || other.IsFinished {
			continue
		}
		view.OpponentCounts = append(view.OpponentCounts, len(other.Hand))
	}

	// The round-one opening play is constrained to include the opening card
	// while its holder still has it.
	if s.CurrentRound == 1 && s.LastPlay == nil && domain.ContainsCard(p.Hand, domain.OpeningCard) {
		opener := domain.OpeningCard
		view.MustInclude = &opener
	}
	return view
}
