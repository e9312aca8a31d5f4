package launcher

import (
	"strings"
)

// Terminal describes how to hand a shell line to one terminal emulator.
type Terminal struct {
	Name string
	Args func(full string) []string
}

func bashC(prefix ...string) func(string) []string {
	return func(full string) []string {
		args := append([]string(nil), prefix...)
		return append(args, "bash", "-c", full)
	}
}

// DefaultTerminals is the Linux fallback chain, tried in order.
func DefaultTerminals() []Terminal {
	return []Terminal{
		{Name: "x-terminal-emulator", Args: bashC("-e")},
		{Name: "gnome-terminal", Args: bashC("--")},
		{Name: "konsole", Args: bashC("-e")},
		{Name: "xfce4-terminal", Args: func(full string) []string {
			return []string{"--command", "bash -c " + ShellQuote(full)}
		}},
		{Name: "terminator", Args: bashC("-x")},
		{Name: "tilix", Args: bashC("--")},
		{Name: "mate-terminal", Args: bashC("--")},
	}
}

// FullCommand wraps command so the terminal starts in the home directory and
// stays open after the command exits.
func FullCommand(command string) string {
	return "cd ~; " + command + "; exec bash"
}

// ShellQuote returns s as a single POSIX shell word.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// orderTerminals moves preferred to the front of list. An unknown preferred
// name is tried first with the generic "-e bash -c" convention.
func orderTerminals(list []Terminal, preferred string) []Terminal {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return list
	}

	ordered := make([]Terminal, 0, len(list)+1)
	found := false
	for _, t := range list {
		if t.Name == preferred {
			ordered = append(ordered, t)
			found = true
		}
	}
	if !found {
		ordered = append(ordered, Terminal{Name: preferred, Args: bashC("-e")})
	}
	for _, t := range list {
		if t.Name != preferred {
			ordered = append(ordered, t)
		}
	}
	return ordered
}

// appleScriptQuote escapes s for use inside an AppleScript string literal.
func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
