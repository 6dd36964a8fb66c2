package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/cardscan/internal/extract"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// ParseStage resolves the session credential and hands the text to the coordinator.
type ParseStage struct {
	coord    *extract.Coordinator
	sessions *session.Store
	logger   *slog.Logger
}

func NewParseStage(coord *extract.Coordinator, sessions *session.Store, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{coord: coord, sessions: sessions, logger: logger}
}

func (s *ParseStage) Run(ctx context.Context, sessionID, text string) extract.Result {
	cred := session.Credential{}
	if s.sessions != nil {
		cred = s.sessions.Get(sessionID)
	}
	return s.coord.Run(ctx, text, cred)
}
