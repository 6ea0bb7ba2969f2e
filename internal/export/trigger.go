package export

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// outputTailBytes bounds how much subprocess output the trigger response
// carries back to the caller.
const outputTailBytes = 1000

type TriggerResult struct {
	Success  bool
	TimedOut bool
	ExitCode int
	Output   string
}

// Trigger launches the exporter binary in single-shot mode on behalf of the
// HTTP surface. The wall-clock timeout lives here: the exporter itself has
// none, and a run that exceeds it is killed.
type Trigger struct {
	bin     string
	timeout time.Duration
	log     zerolog.Logger
}

func NewTrigger(bin string, timeout time.Duration, log zerolog.Logger) *Trigger {
	return &Trigger{bin: bin, timeout: timeout, log: log}
}

// RunOnce executes one exporter pass and reports how it ended.
func (t *Trigger) RunOnce(ctx context.Context) TriggerResult {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	t.log.Info().Str("bin", t.bin).Dur("timeout", t.timeout).Msg("launching exporter")

	cmd := exec.CommandContext(runCtx, t.bin, "--once")
	output, err := cmd.CombinedOutput()

	result := TriggerResult{Output: tail(string(output), outputTailBytes)}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		t.log.Error().Msg("exporter run timed out and was killed")
		result.TimedOut = true
		result.ExitCode = -1
		return result
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Output = err.Error()
		}
		t.log.Error().Err(err).Int("exit_code", result.ExitCode).Msg("exporter run failed")
		return result
	}

	t.log.Info().Msg("exporter run finished")
	result.Success = true
	return result
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
