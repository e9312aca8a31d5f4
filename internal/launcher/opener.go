package launcher

import (
	"os"
	"path/filepath"
	"strings"

	"kali-launcher/internal/models"
)

// NormalizeURL prefixes https:// when raw carries no http(s) scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// ExpandPath resolves a leading ~ against the home directory.
func ExpandPath(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// OpenTarget returns what the platform opener should receive for item.
func OpenTarget(item models.LauncherItem) string {
	if item.Kind == models.KindURL {
		return NormalizeURL(item.Command)
	}
	return ExpandPath(item.Command)
}

// OpenerCommand returns the program and arguments that hand target to the
// desktop's default handler on goos.
func OpenerCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}
