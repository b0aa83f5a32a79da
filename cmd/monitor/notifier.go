package main

import (
	"context"
	"log"

	"solana-launch-monitor/internal/domain"
)

// logNotifier is the built-in notification collaborator: it writes each
// accepted candidate to the log. Chat or webhook delivery plugs in behind
// the same interface.
type logNotifier struct {
	logger *log.Logger
}

func newLogNotifier(logger *log.Logger) *logNotifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, event domain.CandidateEvent) error {
	mint := ""
	pool := ""
	if event.Record != nil {
		mint = event.Record.Mint
		pool = event.Record.Pool
	}
	n.logger.Printf("ALERT %s kind=%s source=%s id=%s mint=%s pool=%s",
		event.AlertID, event.Kind, event.Source, event.ID, mint, pool)
	return nil
}

func (n *logNotifier) MonitoringHalted(ctx context.Context) {
	n.logger.Printf("ALERT monitoring halted: stream reconnect attempts exhausted, manual restart required")
}
