// Package metrics records API and daemon command activity.
package metrics

import "time"

// Recorder receives observations from the API and command runner.
type Recorder interface {
	// ObserveCommand records one daemon command by program name.
	ObserveCommand(program string, exitCode int, d time.Duration)
	// ObserveAction records one API action.
	ObserveAction(action string, success bool, d time.Duration)
	// ObserveState records the cause of the latest computed connection state.
	ObserveState(cause string, connected bool)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCommand(string, int, time.Duration) {}
func (NoopRecorder) ObserveAction(string, bool, time.Duration) {}
func (NoopRecorder) ObserveState(string, bool)                 {}
