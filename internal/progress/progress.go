// Package progress provides progress reporting for long-running file
// operations, with terminal progress bars for interactive use.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress for one operation.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
}

// ByteBar reports upload progress as a byte-counting terminal bar.
type ByteBar struct {
	bar *progressbar.ProgressBar
}

// NewByteBar creates a byte-oriented progress bar reporter.
func NewByteBar() *ByteBar {
	return &ByteBar{}
}

// Start initializes the bar with the total byte count.
func (p *ByteBar) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to the given byte position.
func (p *ByteBar) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the bar.
func (p *ByteBar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error prints the failure below the bar.
func (p *ByteBar) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// Silent discards all progress, for scripted or quiet runs.
type Silent struct{}

func (Silent) Start(total int64, description string) {}
func (Silent) Update(current int64)                  {}
func (Silent) Finish()                               {}
func (Silent) Error(err error)                       {}
