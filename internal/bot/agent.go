package bot

import (
	"fmt"
	"strings"
)

// BotIDPrefix marks user IDs that belong to automated seats.
const BotIDPrefix = "bot-"

var botNames = []string{
	"Marchetta", "Oswin", "Petrov", "Quill", "Renata", "Sable",
	"Tamsin", "Ulric", "Vesna", "Wendell",
}

// Agent represents an autonomous seat: an identity plus a strategy.
type Agent struct {
	ID    string
	Name  string
	Brain Brain
}

// NewAgent builds the nth agent for a room with the standard brain.
func NewAgent(n int) *Agent {
	name := botNames[n%len(botNames)]
	return &Agent{
		ID:    fmt.Sprintf("%s%d", BotIDPrefix, n+1),
		Name:  name,
		Brain: NewBrain(),
	}
}

// IsBot reports whether the given user id represents an automated seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, BotIDPrefix)
}
