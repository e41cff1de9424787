package main

import (
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressBar renders search progress on stderr.
type progressBar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgressBar(total int) *progressBar {
	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("trials: ", decor.WC{W: len("trials: "), C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.AverageETA(decor.ET_STYLE_GO),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	return &progressBar{p: p, bar: bar}
}

// Update advances the bar by one finished trial. It matches the signature
// of gibbs.Options.Progress and is safe for concurrent use.
func (pb *progressBar) Update(done, total int) {
	pb.bar.Increment()
}

// Close stops the bar, aborting it if the search ended early.
func (pb *progressBar) Close() {
	if !pb.bar.Completed() {
		pb.bar.Abort(false)
	}
	pb.p.Wait()
}
