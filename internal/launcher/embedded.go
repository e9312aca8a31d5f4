package launcher

import (
	"fmt"
	"os"

	"github.com/creack/pty"

	"kali-launcher/internal/models"
)

// Session is a launch attached to a pseudo terminal. The caller reads the
// program's output from PTY and writes keyboard input to it.
type Session struct {
	*Launch
	PTY *os.File
}

func (s *Session) Read(p []byte) (int, error)  { return s.PTY.Read(p) }
func (s *Session) Write(p []byte) (int, error) { return s.PTY.Write(p) }
func (s *Session) Close() error                { return s.PTY.Close() }

// Resize forwards the visible grid size to the program.
func (s *Session) Resize(rows, cols uint) error {
	if rows == 0 || cols == 0 {
		return nil
	}
	return pty.Setsize(s.PTY, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// LaunchEmbedded runs item's command under bash inside a pty. It is the
// fallback used when no terminal emulator is installed.
func (r *Runner) LaunchEmbedded(item models.LauncherItem) (*Session, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}

	cmd := r.command("bash", "-c", FullCommand(item.Command))
	cmd.Env = shellEnv()
	if home, err := os.UserHomeDir(); err == nil {
		cmd.Dir = home
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	launch := r.track(item, ModeEmbedded, "bash", cmd, nil, func() {
		ptmx.Close()
	})
	return &Session{Launch: launch, PTY: ptmx}, nil
}
