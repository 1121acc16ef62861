package autocomplete

import "github.com/bascanada/smartsearch/pkg/log"

// Reporter receives the errors the engine recovers from
type Reporter interface {
	Capture(err error, context string)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(err error, context string)

func (f ReporterFunc) Capture(err error, context string) {
	f(err, context)
}

// LogReporter writes recovered errors to the application log
type LogReporter struct{}

func (LogReporter) Capture(err error, context string) {
	log.Warn("%s: %v", context, err)
}
