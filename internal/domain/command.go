package domain

import "strings"

// CommandKind tags a parsed bot command.
type CommandKind string

const (
	CommandVersion   CommandKind = "version"
	CommandChangelog CommandKind = "changelog"
	CommandConfig    CommandKind = "config"
	CommandRoll      CommandKind = "roll"
	CommandHelp      CommandKind = "help"
	CommandWolfram   CommandKind = "wolfram"
	CommandStorm     CommandKind = "storm"
	CommandUnknown   CommandKind = "unknown"
)

// Command is the parsed form of everything after the first "!" of a message.
// Raw keeps the full text so handlers can look for their own flags.
type Command struct {
	Kind CommandKind
	Raw  string
}

// prefixCommands are matched by prefix, first match wins.
var prefixCommands = []CommandKind{
	CommandVersion,
	CommandChangelog,
	CommandConfig,
	CommandRoll,
	CommandHelp,
}

// wordCommands are matched against the first word only.
var wordCommands = map[string]CommandKind{
	"wa":   CommandWolfram,
	"w":    CommandWolfram,
	"noaa": CommandStorm,
	"nhc":  CommandStorm,
}

// ParseCommand classifies raw command text (without the leading "!").
func ParseCommand(raw string) Command {
	for _, kind := range prefixCommands {
		if strings.HasPrefix(raw, string(kind)) {
			return Command{Kind: kind, Raw: raw}
		}
	}
	if fields := strings.Fields(raw); len(fields) > 0 {
		if kind, ok := wordCommands[fields[0]]; ok {
			return Command{Kind: kind, Raw: raw}
		}
	}
	return Command{Kind: CommandUnknown, Raw: raw}
}

// HasFlag reports whether any of flags occurs in the command text.
// Flags are matched as substrings, so "-full" also satisfies "-f".
func (c Command) HasFlag(flags ...string) bool {
	for _, f := range flags {
		if strings.Contains(c.Raw, f) {
			return true
		}
	}
	return false
}

// Args returns the text after the first space, or "" when there is none.
func (c Command) Args() string {
	_, rest, ok := strings.Cut(c.Raw, " ")
	if !ok {
		return ""
	}
	return rest
}
