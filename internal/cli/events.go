package cli

import (
	"github.com/craftdeck/craftdeck/internal/events"
	"github.com/craftdeck/craftdeck/internal/logging"
)

// watchJobEvents drains a job event subscription into the debug log. It
// runs until the channel closes so verbose sessions record every job
// transition, including ones the per-command progress UI does not show.
func watchJobEvents(ch <-chan events.Event, log *logging.Logger) {
	for ev := range ch {
		e := log.Debug().
			Str("job", ev.JobID).
			Str("kind", ev.Kind)

		switch ev.Type {
		case events.JobProgress:
			if ev.Bytes > 0 {
				e.Int64("bytes", ev.Bytes)
			} else {
				e.Float64("percent", ev.Percent)
				if ev.Total > 0 {
					e.Int("processed", ev.Processed).Int("total", ev.Total)
				}
			}
		case events.JobFailed:
			e.Str("reason", ev.Error)
		}

		e.Msg(string(ev.Type))
	}
}
