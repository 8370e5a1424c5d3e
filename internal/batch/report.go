package batch

// Reporter receives one event per terminal item outcome while a batch
// runs. Events arrive from concurrent dispatches within a burst; counts
// are a consistent snapshot taken with the outcome.
type Reporter interface {
	Progress(outcome Outcome, counts Counts)
}

// NopReporter discards all progress events.
type NopReporter struct{}

// Progress implements Reporter.
func (NopReporter) Progress(Outcome, Counts) {}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(outcome Outcome, counts Counts)

// Progress implements Reporter.
func (f ReporterFunc) Progress(outcome Outcome, counts Counts) {
	f(outcome, counts)
}
