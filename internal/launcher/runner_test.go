package launcher

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
)

type recordedCall struct {
	name string
	args []string
}

// fakeExec records every command and runs a harmless "sh -c exit 0" in its
// place. Programs listed in broken get a command that cannot start.
type fakeExec struct {
	mu     sync.Mutex
	calls  []recordedCall
	broken map[string]bool
}

func (f *fakeExec) command(name string, args ...string) *exec.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{name: name, args: args})
	if f.broken[name] {
		return exec.Command("/nonexistent/kali-launcher-test-binary")
	}
	return exec.Command("sh", "-c", "exit 0")
}

func (f *fakeExec) last() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func lookPathIn(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func waitResult(t *testing.T, l *Launch) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := l.Wait(ctx)
	require.NoError(t, err)
	return res
}

func terminalItem(command string) models.LauncherItem {
	return models.LauncherItem{ID: "1", Name: "tool", Command: command, OpenTerminal: true, Kind: models.KindCommand}
}

func TestTerminalFallbackSkipsMissing(t *testing.T) {
	fake := &fakeExec{}
	r := NewRunner(logger.Nop(),
		WithGOOS("linux"),
		WithLookPath(lookPathIn("konsole", "gnome-terminal")),
		WithCommandFunc(fake.command),
	)

	l, err := r.Launch(terminalItem("nmap -sV"))
	require.NoError(t, err)
	assert.Equal(t, ModeTerminal, l.Mode)

	call := fake.last()
	assert.Equal(t, "/usr/bin/gnome-terminal", call.name)
	assert.Equal(t, []string{"--", "bash", "-c", "cd ~; nmap -sV; exec bash"}, call.args)
	assert.True(t, waitResult(t, l).Success())
}

func TestTerminalFallbackAfterStartFailure(t *testing.T) {
	fake := &fakeExec{broken: map[string]bool{"/usr/bin/x-terminal-emulator": true}}
	r := NewRunner(logger.Nop(),
		WithGOOS("linux"),
		WithLookPath(lookPathIn("x-terminal-emulator", "konsole")),
		WithCommandFunc(fake.command),
	)

	l, err := r.Launch(terminalItem("ls"))
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/konsole", l.Program)
	assert.Len(t, fake.calls, 2)
	waitResult(t, l)
}

func TestPreferredTerminalIsTriedFirst(t *testing.T) {
	fake := &fakeExec{}
	r := NewRunner(logger.Nop(),
		WithGOOS("linux"),
		WithLookPath(lookPathIn("x-terminal-emulator", "tilix")),
		WithCommandFunc(fake.command),
		WithPreferredTerminal("tilix"),
	)

	l, err := r.Launch(terminalItem("ls"))
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/tilix", fake.last().name)
	waitResult(t, l)
}

func TestNoTerminal(t *testing.T) {
	fake := &fakeExec{}
	r := NewRunner(logger.Nop(),
		WithGOOS("linux"),
		WithLookPath(lookPathIn()),
		WithCommandFunc(fake.command),
	)

	_, err := r.Launch(terminalItem("ls"))
	assert.ErrorIs(t, err, ErrNoTerminal)
	assert.Empty(t, fake.calls)
}

func TestXfceCommandIsQuoted(t *testing.T) {
	var xfce Terminal
	for _, term := range DefaultTerminals() {
		if term.Name == "xfce4-terminal" {
			xfce = term
		}
	}
	require.NotNil(t, xfce.Args)

	args := xfce.Args(FullCommand("echo 'hi'"))
	assert.Equal(t, []string{"--command", `bash -c 'cd ~; echo '\''hi'\''; exec bash'`}, args)
}

func TestPlatformTerminals(t *testing.T) {
	fake := &fakeExec{}

	r := NewRunner(logger.Nop(), WithGOOS("darwin"), WithCommandFunc(fake.command))
	l, err := r.Launch(terminalItem(`echo "x"`))
	require.NoError(t, err)
	call := fake.last()
	assert.Equal(t, "osascript", call.name)
	assert.Contains(t, call.args[1], `do script "cd ~; echo \"x\"; exec bash"`)
	waitResult(t, l)

	r = NewRunner(logger.Nop(), WithGOOS("windows"), WithCommandFunc(fake.command))
	l, err = r.Launch(terminalItem("dir"))
	require.NoError(t, err)
	assert.Equal(t, recordedCall{name: "cmd", args: []string{"/C", "start", "cmd", "/K", "dir"}}, fake.last())
	waitResult(t, l)
}

func TestDirectLaunchReportsExitAndStderr(t *testing.T) {
	r := NewRunner(logger.Nop(), WithGOOS("linux"))

	item := models.LauncherItem{ID: "7", Name: "fail", Command: "echo boom >&2; exit 3", Kind: models.KindCommand}
	l, err := r.Launch(item)
	require.NoError(t, err)
	assert.Equal(t, ModeDirect, l.Mode)

	res := waitResult(t, l)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom", res.Stderr)
	assert.NoError(t, res.Err)
	assert.False(t, res.Success())
	assert.Equal(t, "7", res.ItemID)
}

func TestBackgroundChildDoesNotDelayResult(t *testing.T) {
	r := NewRunner(logger.Nop(), WithGOOS("linux"))

	item := models.LauncherItem{ID: "8", Name: "bg", Command: "sleep 4 &", Kind: models.KindCommand}
	l, err := r.Launch(item)
	require.NoError(t, err)

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("launch still running while only its background child is alive")
	}

	res := l.Result()
	assert.True(t, res.Success(), "result: %+v", res)
	assert.Less(t, res.Duration, 2*time.Second)
	assert.Equal(t, 0, r.Active())
}

func TestOpenKinds(t *testing.T) {
	fake := &fakeExec{}
	r := NewRunner(logger.Nop(), WithGOOS("linux"), WithCommandFunc(fake.command))

	l, err := r.Launch(models.LauncherItem{Name: "docs", Command: "kali.org/docs", Kind: models.KindURL, OpenTerminal: true})
	require.NoError(t, err)
	assert.Equal(t, ModeOpen, l.Mode)
	assert.Equal(t, recordedCall{name: "xdg-open", args: []string{"https://kali.org/docs"}}, fake.last())
	waitResult(t, l)

	l, err = r.Launch(models.LauncherItem{Name: "etc", Command: "/etc", Kind: models.KindFolder})
	require.NoError(t, err)
	assert.Equal(t, []string{"/etc"}, fake.last().args)
	waitResult(t, l)
}

func TestShutdownRefusesLaunches(t *testing.T) {
	r := NewRunner(logger.Nop(), WithGOOS("linux"))

	l, err := r.Launch(models.LauncherItem{Name: "ok", Command: "true", Kind: models.KindCommand})
	require.NoError(t, err)
	r.Shutdown()

	res := waitResult(t, l)
	assert.Equal(t, "ok", res.ItemName)
	assert.True(t, res.Success())
	assert.Zero(t, r.Active())

	_, err = r.Launch(models.LauncherItem{Name: "ok", Command: "true"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLaunchRejectsBlankCommand(t *testing.T) {
	r := NewRunner(logger.Nop())
	_, err := r.Launch(models.LauncherItem{Name: "x", Command: "  "})
	assert.True(t, models.IsValidationError(err))
}

func TestWaitHonoursContext(t *testing.T) {
	l := &Launch{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Wait(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", NormalizeURL("example.com"))
	assert.Equal(t, "http://example.com", NormalizeURL(" http://example.com "))
	assert.Equal(t, "HTTPS://EXAMPLE.COM", NormalizeURL("HTTPS://EXAMPLE.COM"))
}

func TestOpenerCommand(t *testing.T) {
	name, args := OpenerCommand("windows", "https://x")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "https://x"}, args)

	name, _ = OpenerCommand("darwin", "/tmp")
	assert.Equal(t, "open", name)
}

func TestTailBufferKeepsEnd(t *testing.T) {
	b := newTailBuffer(8)
	_, _ = b.Write([]byte("0123456789"))
	_, _ = b.Write([]byte("ab"))
	assert.Equal(t, "456789ab", b.String())
	assert.True(t, strings.HasSuffix(b.String(), "ab"))
}
