package engine

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fotlabs/discovery-engine/internal/logging"
)

// HandleSignals installs SIGINT and SIGTERM handling. The handler does
// nothing beyond flipping the run state to Draining; the cycle loop performs
// the actual shutdown. Repeated signals are no-ops. The returned stop
// function uninstalls the handler and ends its goroutine.
func (e *Engine) HandleSignals() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range ch {
			if e.Drain() {
				logging.Info("signal received, draining after current cycle",
					logging.F("signal", sig.String()))
			} else {
				logging.Debug("signal ignored, drain already requested",
					logging.F("signal", sig.String()))
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
