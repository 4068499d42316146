package termui

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress wraps a progress bar whose total may become known late, as with
// escalation callbacks reporting (done, total).
type Progress struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

// NewProgress creates a bar writing to w. Nothing is drawn until the first
// Update.
func NewProgress(w io.Writer, description string) *Progress {
	return &Progress{w: w, description: description}
}

// Update moves the bar to done out of total.
func (p *Progress) Update(done, total int) {
	if total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(p.description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(p.w)
			}),
		)
	}
	_ = p.bar.Set(done)
}

// Finish completes the bar if one was drawn.
func (p *Progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
