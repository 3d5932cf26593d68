package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"revolution/internal/config"
)

// InitModule wires RPCs and match handlers for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: could not load game config: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchName, NewMatch); err != nil {
		return err
	}

	logger.Info("Revolution module loaded.")
	return nil
}
