package execrun

import (
	"context"
	"strings"
	"sync"
)

// Script is a scripted Runner for tests. Each command is matched against the
// registered prefixes, longest first; unmatched commands return Default.
// Every command is recorded in order.
type Script struct {
	mu       sync.Mutex
	replies  map[string]Result
	Default  Result
	commands []string
}

// NewScript returns an empty Script whose unmatched commands exit 1.
func NewScript() *Script {
	return &Script{
		replies: make(map[string]Result),
		Default: Result{ExitCode: 1},
	}
}

// On registers the result for commands containing fragment.
func (s *Script) On(fragment string, res Result) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[fragment] = res
	return s
}

// Run implements Runner.
func (s *Script) Run(_ context.Context, command string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, command)

	best := ""
	for frag := range s.replies {
		if strings.Contains(command, frag) && len(frag) > len(best) {
			best = frag
		}
	}
	if best == "" {
		return s.Default
	}
	return s.replies[best]
}

// Commands returns the commands run so far.
func (s *Script) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Index returns the position of the first recorded command containing
// fragment, or -1.
func (s *Script) Index(fragment string) int {
	for i, c := range s.Commands() {
		if strings.Contains(c, fragment) {
			return i
		}
	}
	return -1
}
