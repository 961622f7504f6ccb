// Package jobs drives long-running, cancellable file operations (upload,
// archive creation, extraction, server-side URL fetch) against the panel.
//
// Every job follows the same two-phase protocol: the notification channel
// for the client-generated job id is subscribed first, and only once it is
// open does the triggering request fire. This ordering is structural, not a
// timing accident: it closes the race where the server emits progress or
// completion before the client is listening.
//
// Job state is an explicit machine, Pending -> InProgress -> one of
// {Completed, Failed, Cancelled}. Transitioning out of a non-terminal state
// is the only legal path to resolution; a transition from a terminal state
// is a no-op by construction, which makes duplicate terminal events and
// racing transports harmless.
package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/events"
	"github.com/craftdeck/craftdeck/internal/stream"
)

// ErrCancelled is returned by Handle.Wait when the server confirmed a
// user-requested cancellation. It is the successful outcome of a cancel, not
// a failure; call sites distinguish it with errors.Is.
var ErrCancelled = errors.New("job cancelled")

// Status is the lifecycle state of a job.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events are accepted in this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job is a client-correlated long-running operation. The id is generated on
// the client and embedded in both the triggering request and the
// notification-channel URL.
type Job struct {
	id   string
	kind string

	mu     sync.Mutex
	status Status
}

func newJob(kind string) *Job {
	return &Job{id: uuid.NewString(), kind: kind}
}

// ID returns the client-generated job id.
func (j *Job) ID() string { return j.id }

// Kind returns the operation kind ("upload", "archive", "extract",
// "fetch-url").
func (j *Job) Kind() string { return j.kind }

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// start moves Pending to InProgress.
func (j *Job) start() {
	j.mu.Lock()
	if j.status == StatusPending {
		j.status = StatusInProgress
	}
	j.mu.Unlock()
}

// finish moves the job into the given terminal state. It reports false when
// the job is already terminal, in which case nothing changed: the first
// terminal event is authoritative and later ones are discarded.
func (j *Job) finish(to Status) bool {
	if !to.Terminal() {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return false
	}
	j.status = to
	return true
}

// Callbacks carries the per-job observer functions for archive, extract, and
// URL-fetch jobs. Each terminal callback fires at most once; OnProgress may
// fire any number of times with a monotonically non-decreasing percentage,
// and never again after a terminal callback.
type Callbacks struct {
	OnProgress  func(percent float64, processed, total int)
	OnSuccess   func()
	OnError     func(message string)
	OnCancelled func()
}

// Handle is the caller's grip on a running job.
type Handle struct {
	job  *Job
	done chan struct{}
	err  error // written once before done is closed

	cancelFn func(context.Context) error
}

// JobID returns the job's correlation id.
func (h *Handle) JobID() string { return h.job.ID() }

// Status returns the job's current state.
func (h *Handle) Status() Status { return h.job.Status() }

// Done is closed when the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job is terminal or ctx expires. It returns nil on
// completion, ErrCancelled on server-confirmed cancellation, and a
// descriptive error on failure.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel asks the server to cancel the job. It always attempts the request,
// even when the job already looks finished locally, and it never resolves
// the job by itself: cancellation completes only when the server confirms it
// through the notification channel.
func (h *Handle) Cancel(ctx context.Context) error {
	return h.cancelFn(ctx)
}

// controller owns one job's channel, handle, and terminal transition.
type controller struct {
	client *api.Client
	job    *Job
	ch     *stream.Channel
	handle *Handle
	bus    *events.Bus
	log    zerolog.Logger
}

func newController(client *api.Client, job *Job, ch *stream.Channel, bus *events.Bus) *controller {
	c := &controller{
		client: client,
		job:    job,
		ch:     ch,
		handle: &Handle{job: job, done: make(chan struct{})},
		bus:    bus,
		log:    client.Logger().With().Str("job", job.ID()).Str("kind", job.Kind()).Logger(),
	}
	return c
}

// finalize resolves the job exactly once and reports whether this call was
// the one that did it. The notification channel is closed as part of the
// terminal transition; no callback or event for this job fires afterwards.
func (c *controller) finalize(err error) bool {
	to := StatusCompleted
	switch {
	case err == nil:
	case errors.Is(err, ErrCancelled):
		to = StatusCancelled
	default:
		to = StatusFailed
	}

	if !c.job.finish(to) {
		return false
	}

	c.handle.err = err
	close(c.handle.done)
	c.ch.Close()

	switch to {
	case StatusCompleted:
		c.log.Debug().Msg("job completed")
		c.bus.Publish(events.Event{Type: events.JobCompleted, JobID: c.job.ID(), Kind: c.job.Kind()})
	case StatusCancelled:
		c.log.Info().Msg("job cancelled")
		c.bus.Publish(events.Event{Type: events.JobCancelled, JobID: c.job.ID(), Kind: c.job.Kind()})
	case StatusFailed:
		c.log.Error().Err(err).Msg("job failed")
		c.bus.Publish(events.Event{Type: events.JobFailed, JobID: c.job.ID(), Kind: c.job.Kind(), Error: err.Error()})
	}
	return true
}

// messageError converts an error-status message into a job error.
func messageError(msg stream.Message) error {
	if msg.Message != "" {
		return errors.New(msg.Message)
	}
	return errors.New("job failed on the server")
}

// streamEnded finalizes a job whose channel closed without a terminal event:
// a transport failure when the channel reported one, otherwise an unexpected
// end of stream.
func (c *controller) streamEnded(cb Callbacks) {
	if c.job.Status().Terminal() {
		return
	}
	err := c.ch.Err()
	if err == nil {
		err = errors.New("notification channel closed before the job finished")
	}
	if c.finalize(err) && cb.OnError != nil {
		cb.OnError(err.Error())
	}
}
