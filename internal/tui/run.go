package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hareinweed/ipview/internal/config"
	"github.com/hareinweed/ipview/internal/logging"
	"github.com/hareinweed/ipview/internal/record"
)

// Run starts the interactive capture UI and blocks until it exits.
func Run(cfg *config.Config, log *logging.Logger) error {
	return run(cfg, log, nil)
}

// RunOffline starts the UI preloaded with a replayed record history
// instead of a live capture.
func RunOffline(cfg *config.Config, log *logging.Logger, records []record.Record) error {
	return run(cfg, log, records)
}

func run(cfg *config.Config, log *logging.Logger, records []record.Record) error {
	model := NewModel(cfg, log)
	if len(records) > 0 {
		model.loadRecords(records)
	}
	program := tea.NewProgram(model, tea.WithAltScreen())

	_, err := program.Run()
	if err != nil {
		return err
	}

	log.Info("session closed: %d packets, %d bytes", model.packetsTotal, model.bytesTotal)
	return nil
}
