package bot

import "revolution/internal/domain"

// ContributeCards picks the n lowest cards by (rank value, suit) to give
// away during the trading ritual.
func (b *StandardBot) ContributeCards(hand []domain.Card, n int, twosHigh bool) []domain.Card {
	if n >= len(hand) {
		return append([]domain.Card(nil), hand...)
	}
	sorted := append([]domain.Card(nil), hand...)
	domain.SortHand(sorted, twosHigh)
	return sorted[:n]
}
