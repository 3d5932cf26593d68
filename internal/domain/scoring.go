package domain

// scoringVectors maps table size to points by finish position. Positions past
// the vector score zero.
var scoringVectors = map[int][]int{
	4: {4, 3, 2, 0},
	5: {5, 4, 3, 2, 0},
	6: {6, 5, 4, 3, 2, 0},
}

// ScoringVector returns the per-position point vector for a table size.
func ScoringVector(playerCount int) []int {
	return scoringVectors[playerCount]
}

// TitleForPosition returns the rank title earned by a finish position. The
// NOBLE title only exists at tables larger than four.
func TitleForPosition(position, playerCount int) RankTitle {
	switch position {
	case 0:
		return TitleKing
	case 1:
		return TitleQueen
	case 2:
		if playerCount > 4 {
			return TitleNoble
		}
		return TitlePeasant
	default:
		return TitlePeasant
	}
}

// Standing is one row of the final result handed to an external recorder.
type Standing struct {
	SeatID      string `json:"seatId"`
	PersonID    string `json:"personId"`
	DisplayName string `json:"displayName"`
	TotalScore  int    `json:"totalScore"`
}

// FinalStandings exports the seats for the statistics boundary, in descending
// score order with ties broken by seat order.
func FinalStandings(s *GameState) []Standing {
	out := make([]Standing, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, Standing{
			SeatID:      p.SeatID,
			PersonID:    p.PersonID,
			DisplayName: p.DisplayName,
			TotalScore:  p.TotalScore,
		})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].TotalScore > out[j-1].TotalScore; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
