package pipeline

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrPluginExecution matches every error raised by a plugin during a run
	ErrPluginExecution = errors.New("plugin execution failed")

	// ErrRunnerUsed is returned when a runner is started a second time
	ErrRunnerUsed = errors.New("pipeline runner already used")
)

// PluginError records which plugin failed and in which stage.
// errors.Is(err, ErrPluginExecution) holds for every PluginError, and the
// plugin's own error stays reachable through Unwrap.
type PluginError struct {
	Stage  State
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s: plugin %s: %v", e.Stage, e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// Is matches ErrPluginExecution
func (e *PluginError) Is(target error) bool {
	return target == ErrPluginExecution
}
