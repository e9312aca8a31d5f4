package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"kali-launcher/internal/logger"
	"kali-launcher/internal/models"
)

var (
	// ErrNoTerminal means no terminal emulator could be started.
	ErrNoTerminal = errors.New("no terminal emulator available")
	ErrClosed     = errors.New("runner is shut down")
)

const (
	// stderrTailBytes bounds the stderr kept for a Result.
	stderrTailBytes = 2048
	pipeWaitDelay   = 500 * time.Millisecond
)

// Mode tells how a launch was carried out.
type Mode string

const (
	ModeTerminal Mode = "terminal"
	ModeDirect   Mode = "direct"
	ModeOpen     Mode = "open"
	ModeEmbedded Mode = "embedded"
)

// Result describes a finished launch.
type Result struct {
	ItemID   string
	ItemName string
	Mode     Mode
	Program  string
	ExitCode int
	Duration time.Duration
	Stderr   string
	Err      error
}

func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Launch is a started process. Done is closed once the process has exited
// and Result is filled in.
type Launch struct {
	Item      models.LauncherItem
	Mode      Mode
	Program   string
	StartedAt time.Time

	done   chan struct{}
	result Result
}

func (l *Launch) Done() <-chan struct{} {
	return l.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (l *Launch) Result() Result {
	<-l.done
	return l.result
}

func (l *Launch) Wait(ctx context.Context) (Result, error) {
	select {
	case <-l.done:
		return l.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Runner starts launcher items without blocking the caller.
type Runner struct {
	logger    logger.Logger
	lookPath  func(string) (string, error)
	command   func(name string, args ...string) *exec.Cmd
	goos      string
	preferred string
	terminals []Terminal

	mu     sync.Mutex
	closed bool
	active int
}

type Option func(*Runner)

func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Runner) { r.lookPath = fn }
}

func WithCommandFunc(fn func(name string, args ...string) *exec.Cmd) Option {
	return func(r *Runner) { r.command = fn }
}

func WithGOOS(goos string) Option {
	return func(r *Runner) { r.goos = goos }
}

func WithPreferredTerminal(name string) Option {
	return func(r *Runner) { r.preferred = name }
}

func WithTerminals(terminals []Terminal) Option {
	return func(r *Runner) { r.terminals = terminals }
}

func NewRunner(log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:    log,
		lookPath:  exec.LookPath,
		command:   exec.Command,
		goos:      runtime.GOOS,
		terminals: DefaultTerminals(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) SetPreferredTerminal(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferred = name
}

// Active returns the number of launches still being waited on.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Launch starts item and returns as soon as the process is running.
func (r *Runner) Launch(item models.LauncherItem) (*Launch, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}
	if strings.TrimSpace(item.Command) == "" {
		return nil, models.NewValidationError("command", item.Command, "must not be empty")
	}

	switch item.Kind {
	case models.KindURL, models.KindFile, models.KindFolder:
		name, args := OpenerCommand(r.goos, OpenTarget(item))
		return r.start(item, ModeOpen, name, args)
	}

	if !item.OpenTerminal {
		if r.goos == "windows" {
			return r.start(item, ModeDirect, "cmd", []string{"/C", item.Command})
		}
		return r.start(item, ModeDirect, "sh", []string{"-c", item.Command})
	}

	switch r.goos {
	case "darwin":
		script := fmt.Sprintf(`tell application "Terminal" to do script %s`, appleScriptQuote(FullCommand(item.Command)))
		return r.start(item, ModeTerminal, "osascript", []string{"-e", script, "-e", `tell application "Terminal" to activate`})
	case "windows":
		return r.start(item, ModeTerminal, "cmd", []string{"/C", "start", "cmd", "/K", item.Command})
	}
	return r.launchInTerminal(item)
}

func (r *Runner) launchInTerminal(item models.LauncherItem) (*Launch, error) {
	r.mu.Lock()
	candidates := orderTerminals(r.terminals, r.preferred)
	r.mu.Unlock()

	full := FullCommand(item.Command)
	for _, t := range candidates {
		path, err := r.lookPath(t.Name)
		if err != nil {
			continue
		}
		launch, err := r.start(item, ModeTerminal, path, t.Args(full))
		if err == nil {
			return launch, nil
		}
		r.logger.Warning("Launcher", "terminal failed to start", map[string]interface{}{
			"terminal": t.Name,
			"error":    err.Error(),
		})
	}
	return nil, ErrNoTerminal
}

func (r *Runner) start(item models.LauncherItem, mode Mode, name string, args []string) (*Launch, error) {
	cmd := r.command(name, args...)
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	// Background children inherit the stderr pipe; stop waiting for them
	// once the launched process itself has exited.
	cmd.WaitDelay = pipeWaitDelay
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	launch := r.track(item, mode, name, cmd, stderr, nil)
	return launch, nil
}

func (r *Runner) track(item models.LauncherItem, mode Mode, program string, cmd *exec.Cmd, stderr *tailBuffer, after func()) *Launch {
	launch := &Launch{
		Item:      item,
		Mode:      mode,
		Program:   program,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}

	r.mu.Lock()
	r.active++
	r.mu.Unlock()

	r.logger.Info("Launcher", "launch started", map[string]interface{}{
		"item":    item.Name,
		"mode":    string(mode),
		"program": program,
		"pid":     cmd.Process.Pid,
	})

	go func() {
		err := cmd.Wait()
		if after != nil {
			after()
		}

		result := Result{
			ItemID:   item.ID,
			ItemName: item.Name,
			Mode:     mode,
			Program:  program,
			ExitCode: -1,
			Duration: time.Since(launch.StartedAt),
		}
		if cmd.ProcessState != nil {
			result.ExitCode = cmd.ProcessState.ExitCode()
		}
		if stderr != nil {
			result.Stderr = stderr.String()
		}
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
			result.Err = err
		}

		launch.result = result

		r.mu.Lock()
		r.active--
		r.mu.Unlock()

		fields := map[string]interface{}{
			"item":      item.Name,
			"exit_code": result.ExitCode,
			"duration":  result.Duration.String(),
		}
		if result.Success() {
			r.logger.Debug("Launcher", "launch finished", fields)
		} else {
			if result.Stderr != "" {
				fields["stderr"] = result.Stderr
			}
			r.logger.Warning("Launcher", "launch finished with failure", fields)
		}
		close(launch.done)
	}()

	return launch
}

// Shutdown refuses further launches. Processes already started keep running
// and their handles still complete.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.logger.Info("Launcher", "runner shut down", map[string]interface{}{
		"outstanding": r.active,
	})
}

func (r *Runner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func shellEnv() []string {
	return append(os.Environ(), "TERM=xterm-256color")
}
