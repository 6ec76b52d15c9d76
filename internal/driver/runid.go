package driver

import "github.com/teris-io/shortid"

// NewRunID returns a short random identifier used as the run_id label on
// one invocation's Prometheus metrics, so metrics from concurrent runs on
// the same host don't collide.
func NewRunID() (string, error) {
	return shortid.Generate()
}
