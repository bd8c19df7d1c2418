package core

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

type command struct {
	pattern string
	re      *regexp.Regexp
	err     error
	handler Handler
}

// Registry maps event kinds and command patterns to handlers.
//
// Registering while updates are being dispatched is safe but the order in
// which in-flight dispatches observe the change is unspecified; register
// everything before starting a receiver.
type Registry struct {
	mu       sync.RWMutex
	events   map[Kind]Handler
	commands []*command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{events: make(map[Kind]Handler)}
}

// Register binds h to key. Known kinds (see IsKnownKind) go to the event map;
// any other key is a command pattern. A second registration under the same
// key replaces the first and keeps its position among command patterns.
func (r *Registry) Register(key string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if IsKnownKind(key) {
		r.events[Kind(key)] = h
		return
	}

	for _, c := range r.commands {
		if c.pattern == key {
			c.handler = h
			return
		}
	}

	// Compile errors are kept and reported when the pattern is matched.
	re, err := regexp.Compile(key)
	r.commands = append(r.commands, &command{pattern: key, re: re, err: err, handler: h})
}

// Unregister removes key from whichever map holds it. Unknown keys are ignored.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[Kind(key)]; ok {
		delete(r.events, Kind(key))
		return
	}
	for i, c := range r.commands {
		if c.pattern == key {
			r.commands = append(r.commands[:i], r.commands[i+1:]...)
			return
		}
	}
}

// Event returns the handler bound to kind, or nil.
func (r *Registry) Event(kind Kind) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[kind]
}

// Commands returns the registered command patterns in registration order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.commands))
	for i, c := range r.commands {
		out[i] = c.pattern
	}
	return out
}

// Len returns the total number of bound keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events) + len(r.commands)
}

// MatchCommand returns the first command pattern, in registration order,
// matching text. The text matches a pattern directly, or after removing the
// first "@botName" mention when the text contains one.
func (r *Registry) MatchCommand(text, botName string) (string, Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stripped, mentioned := stripMention(text, botName)
	for _, c := range r.commands {
		if c.err != nil {
			return "", nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, c.pattern, c.err)
		}
		if c.re.MatchString(text) || (mentioned && c.re.MatchString(stripped)) {
			return c.pattern, c.handler, nil
		}
	}
	return "", nil, nil
}

func stripMention(text, botName string) (string, bool) {
	if botName == "" {
		return text, false
	}
	mention := "@" + botName
	if !strings.Contains(text, mention) {
		return text, false
	}
	return strings.Replace(text, mention, "", 1), true
}
