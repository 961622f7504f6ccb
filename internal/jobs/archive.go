package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/events"
	"github.com/craftdeck/craftdeck/internal/fsmodel"
	"github.com/craftdeck/craftdeck/internal/stream"
)

// ArchiveSpec describes an archive-creation job.
type ArchiveSpec struct {
	// Paths are the entries to pack. Leading separators are stripped before
	// they are placed into the request.
	Paths []string
	// Cwd is the directory the paths are relative to.
	Cwd string
	// Filename is the name of the archive to create.
	Filename string
}

// CreateArchive starts an archive-creation job. Progress, success, failure,
// and cancellation are reported through cb; the returned handle additionally
// supports Wait and Cancel.
func CreateArchive(ctx context.Context, client *api.Client, spec ArchiveSpec, cb Callbacks, bus *events.Bus) (*Handle, error) {
	job := newJob("archive")

	// The channel outlives ctx so a cancel confirmation can still arrive
	// after the caller is interrupted.
	ch, err := stream.Subscribe(context.WithoutCancel(ctx), client.StreamClient(), client.ArchiveStatusURL(job.ID()))
	if err != nil {
		return nil, fmt.Errorf("open archive channel: %w", err)
	}

	entries := make([]string, 0, len(spec.Paths))
	for _, p := range spec.Paths {
		entries = append(entries, fsmodel.TrimLeadingSeparator(p))
	}

	c := newController(client, job, ch, bus)
	job.start()
	c.log.Debug().Str("filename", spec.Filename).Int("entries", len(entries)).Msg("archive channel open, sending trigger")
	bus.Publish(events.Event{Type: events.JobStarted, JobID: job.ID(), Kind: job.Kind()})

	c.handle.cancelFn = func(ctx context.Context) error {
		if err := client.CancelArchive(ctx, job.ID()); err != nil {
			c.log.Warn().Err(err).Msg("cancel request failed")
			return err
		}
		return nil
	}

	go func() {
		req := api.ArchiveRequest{
			Entries:   entries,
			Cwd:       spec.Cwd,
			Filename:  spec.Filename,
			TrackerID: job.ID(),
		}
		if err := client.TriggerArchive(ctx, req); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if c.finalize(err) && cb.OnError != nil {
				cb.OnError(err.Error())
			}
		}
	}()

	go c.runPercentLoop(cb)

	return c.handle, nil
}

// ExtractSpec describes an archive-extraction job.
type ExtractSpec struct {
	// ArchivePath is the archive to unpack. A leading separator is stripped.
	ArchivePath string
	// OutputDir is the destination directory. A leading separator is
	// stripped.
	OutputDir string
}

// Extract starts an archive-extraction job. Progress events carry a
// percentage and, when the server knows them, processed and total file
// counts.
func Extract(ctx context.Context, client *api.Client, spec ExtractSpec, cb Callbacks, bus *events.Bus) (*Handle, error) {
	job := newJob("extract")

	ch, err := stream.Subscribe(context.WithoutCancel(ctx), client.StreamClient(), client.ExtractStatusURL(job.ID()))
	if err != nil {
		return nil, fmt.Errorf("open extract channel: %w", err)
	}

	c := newController(client, job, ch, bus)
	job.start()
	c.log.Debug().Str("archive", spec.ArchivePath).Str("dir", spec.OutputDir).Msg("extract channel open, sending trigger")
	bus.Publish(events.Event{Type: events.JobStarted, JobID: job.ID(), Kind: job.Kind()})

	c.handle.cancelFn = func(ctx context.Context) error {
		if err := client.CancelExtract(ctx, job.ID()); err != nil {
			c.log.Warn().Err(err).Msg("cancel request failed")
			return err
		}
		return nil
	}

	go func() {
		archive := fsmodel.TrimLeadingSeparator(spec.ArchivePath)
		dir := fsmodel.TrimLeadingSeparator(spec.OutputDir)
		if err := client.TriggerExtract(ctx, archive, dir, job.ID()); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if c.finalize(err) && cb.OnError != nil {
				cb.OnError(err.Error())
			}
		}
	}()

	go c.runPercentLoop(cb)

	return c.handle, nil
}

// runPercentLoop consumes notification events for percent-based jobs until a
// terminal event arrives. Percentages are clamped so progress never appears
// to move backwards within one job. Once a terminal event is handled, the
// channel is closed and no further callback fires for this job.
func (c *controller) runPercentLoop(cb Callbacks) {
	var lastPercent float64
	for msg := range c.ch.Messages() {
		if c.job.Status().Terminal() {
			return
		}
		switch msg.Status {
		case stream.StatusProgress:
			percent := msg.Progress
			if percent < lastPercent {
				percent = lastPercent
			}
			lastPercent = percent

			processed, total := 0, 0
			if msg.FilesProcessed != nil {
				processed = *msg.FilesProcessed
			}
			if msg.TotalFiles != nil {
				total = *msg.TotalFiles
			}
			if cb.OnProgress != nil {
				cb.OnProgress(percent, processed, total)
			}
			c.bus.Publish(events.Event{
				Type: events.JobProgress, JobID: c.job.ID(), Kind: c.job.Kind(),
				Percent: percent, Processed: processed, Total: total,
			})

		case stream.StatusComplete:
			if c.finalize(nil) && cb.OnSuccess != nil {
				cb.OnSuccess()
			}
			return

		case stream.StatusCancelled:
			if c.finalize(ErrCancelled) && cb.OnCancelled != nil {
				cb.OnCancelled()
			}
			return

		case stream.StatusError:
			err := messageError(msg)
			if c.finalize(err) && cb.OnError != nil {
				cb.OnError(err.Error())
			}
			return
		}
	}
	c.streamEnded(cb)
}
