package commandsync

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jdelaire/tgbot/core"
)

const maxDescriptionLen = 256

var commandName = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// LoadCommands reads a JSON array of {"command","description"} objects. A
// missing file yields no commands and no error. A leading "/" on a command
// is dropped.
func LoadCommands(path string) ([]core.BotCommand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read commands file: %w", err)
	}

	var cmds []core.BotCommand
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("parse commands file: %w", err)
	}

	seen := make(map[string]bool, len(cmds))
	for i := range cmds {
		c := &cmds[i]
		c.Command = strings.TrimPrefix(c.Command, "/")
		if c.Command == "" {
			return nil, fmt.Errorf("command at index %d missing name", i)
		}
		if !commandName.MatchString(c.Command) {
			return nil, fmt.Errorf("command %q: use 1-32 lowercase letters, digits or underscores", c.Command)
		}
		if seen[c.Command] {
			return nil, fmt.Errorf("command %q listed twice", c.Command)
		}
		seen[c.Command] = true

		if c.Description == "" {
			return nil, fmt.Errorf("command %q missing description", c.Command)
		}
		if utf8.RuneCountInString(c.Description) > maxDescriptionLen {
			return nil, fmt.Errorf("command %q: description longer than %d characters", c.Command, maxDescriptionLen)
		}
	}

	return cmds, nil
}
