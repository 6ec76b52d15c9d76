package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnvOverridesThreadsAndTracingLoop(t *testing.T) {
	t.Setenv("THREADS", "16")
	t.Setenv("TRACING_LOOP", "WP2")

	cfg := Default()
	assert.Equal(t, 16, cfg.NumWorkers)
	assert.Equal(t, 16, cfg.NumProcessors)
	assert.Equal(t, KernelWP2, cfg.TracingLoop)
}

func TestApplyEnvIgnoresInvalidThreads(t *testing.T) {
	t.Setenv("THREADS", "not-a-number")

	cfg := Default()
	assert.Equal(t, 4, cfg.NumWorkers)
}
