package jobs

import (
	"context"
	"fmt"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/events"
	"github.com/craftdeck/craftdeck/internal/stream"
)

// FetchFromURL starts a server-side download of sourceURL into filePath.
//
// Unlike the other jobs there is no separate triggering request: opening the
// notification channel is what starts the job, so FetchFromURL returns as
// soon as the server accepts the stream. Completion, failure, and
// cancellation are reported solely through cb; the handle's Wait observes
// the same single terminal transition.
//
// The deployment exposes no cancel endpoint for URL fetches: tearing down
// the notification channel aborts the job server-side, so Cancel closes the
// channel and the job finalizes as cancelled through the usual exactly-once
// transition.
func FetchFromURL(ctx context.Context, client *api.Client, sourceURL, filePath string, cb Callbacks, bus *events.Bus) (*Handle, error) {
	job := newJob("fetch-url")

	// Detached from ctx: the channel is torn down by Cancel or by the
	// terminal transition, not by the caller's interrupt.
	ch, err := stream.Subscribe(context.WithoutCancel(ctx), client.StreamClient(), client.UploadFromURLChannelURL(sourceURL, filePath))
	if err != nil {
		return nil, fmt.Errorf("start url fetch: %w", err)
	}

	c := newController(client, job, ch, bus)
	job.start()
	c.log.Debug().Str("url", sourceURL).Str("filepath", filePath).Msg("url fetch accepted")
	bus.Publish(events.Event{Type: events.JobStarted, JobID: job.ID(), Kind: job.Kind()})

	c.handle.cancelFn = func(context.Context) error {
		ch.Close()
		if c.finalize(ErrCancelled) && cb.OnCancelled != nil {
			cb.OnCancelled()
		}
		return nil
	}

	go c.runPercentLoop(cb)

	return c.handle, nil
}
