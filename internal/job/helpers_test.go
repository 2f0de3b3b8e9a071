package job

import (
	"io"
	"log/slog"
	"time"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// registeredInterval returns the effective interval of a registered job.
func registeredInterval(s *Scheduler, name string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[name]
	if !ok {
		return 0, false
	}
	return entry.interval, true
}
