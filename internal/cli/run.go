package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kali-launcher/internal/app"
	"kali-launcher/internal/launcher"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Timeout time.Duration
	NoWait  bool
}

type runOutput struct {
	Item       string `json:"item"`
	Mode       string `json:"mode"`
	Program    string `json:"program"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Stderr     string `json:"stderr,omitempty"`
	Error      string `json:"error,omitempty"`
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Launch an item by name",
		Long: `Launch an item the same way the window does and wait for it to exit.

Terminal items return once the terminal window closes. Use --no-wait to
return as soon as the process has started.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(rootOpts, func(core *app.Core) error {
				return runItem(cmd, opts, core, args[0])
			})
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "give up waiting after this long (0 waits forever)")
	cmd.Flags().BoolVar(&opts.NoWait, "no-wait", false, "return once the item has started")
	return cmd
}

func runItem(cmd *cobra.Command, opts *RunOptions, core *app.Core, name string) error {
	item, err := findItem(core, name)
	if err != nil {
		return err
	}

	// Listeners run after the history row is finished, so waiting on this
	// channel keeps the record intact when the core closes.
	finished := make(chan launcher.Result, 1)
	core.Service.OnLaunchFinished(func(res launcher.Result) {
		if res.ItemID == item.ID {
			select {
			case finished <- res:
			default:
			}
		}
	})

	l, err := core.Service.Launch(item.ID)
	if err != nil {
		if errors.Is(err, launcher.ErrNoTerminal) {
			return WrapExitError(ExitCommandError, "no terminal emulator found, set preferred_terminal in settings", err)
		}
		return WrapExitError(ExitFailure, "launch failed", err)
	}

	p := newPrinter(opts.RootOptions, cmd)
	if opts.NoWait {
		return p.result(runOutput{Item: item.Name, Mode: string(l.Mode), Program: l.Program, ExitCode: -1}, func(w io.Writer) {
			fmt.Fprintf(w, "started %s via %s\n", item.Name, l.Program)
		})
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if opts.Timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, opts.Timeout)
		defer stop()
	}

	var res launcher.Result
	select {
	case res = <-finished:
	case <-ctx.Done():
		return WrapExitError(ExitFailure, fmt.Sprintf("stopped waiting for %s", item.Name), ctx.Err())
	}

	out := runOutput{
		Item:       res.ItemName,
		Mode:       string(res.Mode),
		Program:    res.Program,
		ExitCode:   res.ExitCode,
		DurationMS: res.Duration.Milliseconds(),
		Stderr:     res.Stderr,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if err := p.result(out, func(w io.Writer) { writeRunResult(w, res) }); err != nil {
		return err
	}
	if !res.Success() {
		return NewExitError(ExitFailure, fmt.Sprintf("%s exited with code %d", res.ItemName, res.ExitCode))
	}
	return nil
}

func writeRunResult(w io.Writer, res launcher.Result) {
	status := "ok"
	if !res.Success() {
		status = failStyle.Render(fmt.Sprintf("exit %d", res.ExitCode))
	}
	fmt.Fprintf(w, "%s via %s: %s (%s)\n", res.ItemName, res.Program, status, res.Duration.Round(time.Millisecond))
	if res.Stderr != "" {
		fmt.Fprintln(w, dimStyle.Render(res.Stderr))
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
