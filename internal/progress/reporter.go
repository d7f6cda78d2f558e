package progress

import (
	"github.com/schollz/progressbar/v3"
)

// Reporter receives byte-level transfer progress. It is purely
// observational; implementations never influence control flow.
type Reporter interface {
	// Advance records n more bytes persisted to disk.
	Advance(n int64)
	// SetLabel annotates which file is currently transferring.
	SetLabel(label string)
	// Finish marks the batch complete.
	Finish()
}

// Bar renders a terminal progress bar over the whole batch.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a bar sized to the manifest's total byte count.
func NewBar(totalBytes int64) *Bar {
	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
	)
	return &Bar{bar: bar}
}

func (b *Bar) Advance(n int64) {
	_ = b.bar.Add64(n)
}

func (b *Bar) SetLabel(label string) {
	b.bar.Describe(label)
}

func (b *Bar) Finish() {
	_ = b.bar.Finish()
}

// Counter tracks progress without rendering anything. Used for quiet runs
// and by tests that assert on byte accounting.
type Counter struct {
	total    int64
	consumed int64
	label    string
}

func NewCounter(totalBytes int64) *Counter {
	return &Counter{total: totalBytes}
}

func (c *Counter) Advance(n int64) {
	c.consumed += n
}

func (c *Counter) SetLabel(label string) {
	c.label = label
}

func (c *Counter) Finish() {}

// Total returns the fixed byte total the counter was created with.
func (c *Counter) Total() int64 { return c.total }

// Consumed returns the bytes recorded so far.
func (c *Counter) Consumed() int64 { return c.consumed }

// Label returns the most recent label.
func (c *Counter) Label() string { return c.label }
