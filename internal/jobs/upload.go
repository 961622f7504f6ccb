package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/events"
	"github.com/craftdeck/craftdeck/internal/stream"
)

// UploadSpec describes a file upload.
type UploadSpec struct {
	// Dir is the target directory on the server.
	Dir string
	// Body is the raw file content, streamed as the request body.
	Body io.Reader
	// Size is the content length in bytes.
	Size int64
	// OnProgress, when set, receives the running byte count as the server
	// reports it. Values are monotonically non-decreasing.
	OnProgress func(bytes int64)
}

// Upload starts a file upload and returns its handle.
//
// Protocol: a fresh job id is generated, the notification channel for that
// id is opened, and only then does the triggering POST stream the body. The
// returned handle resolves when the server reports complete, cancelled, or
// error; Wait returns ErrCancelled for the cancelled outcome.
func Upload(ctx context.Context, client *api.Client, spec UploadSpec, bus *events.Bus) (*Handle, error) {
	job := newJob("upload")

	// The channel outlives ctx: interrupting the caller leads to a cancel
	// request, and the server's confirmation must still arrive on this
	// stream. Only the terminal transition closes it.
	ch, err := stream.Subscribe(context.WithoutCancel(ctx), client.StreamClient(), client.UploadProgressURL(job.ID()))
	if err != nil {
		return nil, fmt.Errorf("open upload channel: %w", err)
	}

	c := newController(client, job, ch, bus)
	job.start()
	c.log.Debug().Str("dir", spec.Dir).Int64("size", spec.Size).Msg("upload channel open, sending trigger")
	bus.Publish(events.Event{Type: events.JobStarted, JobID: job.ID(), Kind: job.Kind()})

	c.handle.cancelFn = func(ctx context.Context) error {
		if err := client.CancelUpload(ctx, job.ID()); err != nil {
			// A failed cancel call does not change job state; the job may
			// still complete or error out later.
			c.log.Warn().Err(err).Msg("cancel request failed")
			return err
		}
		return nil
	}

	// The trigger runs concurrently with the event loop: the POST lasts for
	// the whole upload while progress arrives on the channel.
	go func() {
		if err := client.TriggerUpload(ctx, spec.Dir, job.ID(), spec.Body, spec.Size); err != nil {
			if errors.Is(err, context.Canceled) {
				// Caller interrupt. The outcome is settled by the
				// channel: a cancel confirmation or the stream ending.
				return
			}
			c.finalize(err)
		}
	}()

	go c.runUploadLoop(spec.OnProgress)

	return c.handle, nil
}

// runUploadLoop consumes notification events until the job is terminal.
// Byte counts are clamped so progress never appears to move backwards.
func (c *controller) runUploadLoop(onProgress func(int64)) {
	var lastBytes int64
	for msg := range c.ch.Messages() {
		if c.job.Status().Terminal() {
			return
		}
		switch msg.Status {
		case stream.StatusProgress:
			bytes := int64(msg.Progress)
			if bytes < lastBytes {
				bytes = lastBytes
			}
			lastBytes = bytes
			if onProgress != nil {
				onProgress(bytes)
			}
			c.bus.Publish(events.Event{Type: events.JobProgress, JobID: c.job.ID(), Kind: c.job.Kind(), Bytes: bytes})

		case stream.StatusComplete:
			c.finalize(nil)
			return

		case stream.StatusCancelled:
			c.finalize(ErrCancelled)
			return

		case stream.StatusError:
			c.finalize(messageError(msg))
			return
		}
	}
	c.streamEnded(Callbacks{})
}
