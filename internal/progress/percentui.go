package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// PercentUI renders a percentage bar for archive and extraction jobs, with a
// running files-processed counter. On a non-terminal stderr the bar is
// suppressed and only the completion line is printed.
type PercentUI struct {
	progress   *mpb.Progress
	bar        *mpb.Bar
	isTerminal bool
	name       string

	processed atomic.Int64
	total     atomic.Int64
}

// NewPercentUI creates a percentage-bar reporter labelled with name.
func NewPercentUI(name string) *PercentUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(60),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	u := &PercentUI{progress: p, isTerminal: isTerminal, name: name}
	u.bar = p.New(100,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(name+" "),
			decor.Percentage(),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				total := u.total.Load()
				if total == 0 {
					return ""
				}
				return fmt.Sprintf(" %d/%d files", u.processed.Load(), total)
			}),
		),
	)
	return u
}

// SetPercent moves the bar. Values are whole percentages, 0 to 100.
func (u *PercentUI) SetPercent(percent float64, processed, total int) {
	u.processed.Store(int64(processed))
	u.total.Store(int64(total))
	u.bar.SetCurrent(int64(percent))
}

// Done completes the bar and waits for the final render.
func (u *PercentUI) Done() {
	u.bar.SetCurrent(100)
	u.progress.Wait()
	if !u.isTerminal {
		fmt.Fprintf(os.Stderr, "%s: done\n", u.name)
	}
}

// Abort tears the bar down without completing it.
func (u *PercentUI) Abort() {
	u.bar.Abort(true)
	u.progress.Wait()
}

// Writer returns a destination for text that must print above the live
// bar. On a non-terminal stderr it is stderr itself.
func (u *PercentUI) Writer() io.Writer {
	if !u.isTerminal {
		return os.Stderr
	}
	return u.progress
}
