package components

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"github.com/fyne-io/terminal"
)

// TerminalSession is the part of a pty launch the terminal window needs.
type TerminalSession interface {
	io.ReadWriteCloser
	Resize(rows, cols uint) error
}

// TerminalWindow shows a launch inside an embedded terminal emulator.
type TerminalWindow struct {
	window   fyne.Window
	term     *terminal.Terminal
	session  TerminalSession
	configCh chan terminal.Config
	title    string
}

func NewTerminalWindow(app fyne.App, title string, session TerminalSession) *TerminalWindow {
	tw := &TerminalWindow{
		window:   app.NewWindow(title),
		term:     terminal.New(),
		session:  session,
		configCh: make(chan terminal.Config, 1),
		title:    title,
	}
	tw.window.SetContent(tw.term)
	tw.window.Resize(fyne.NewSize(820, 520))
	tw.window.SetOnClosed(tw.close)
	return tw
}

// Show opens the window and connects the terminal to the session.
func (tw *TerminalWindow) Show() {
	tw.term.AddListener(tw.configCh)
	go func() {
		for cfg := range tw.configCh {
			_ = tw.session.Resize(cfg.Rows, cfg.Columns)
		}
	}()
	go func() {
		// keyboard input goes to the session, session output is displayed
		_ = tw.term.RunWithConnection(tw.session, tw.session)
	}()

	tw.window.Show()
	tw.window.Canvas().Focus(tw.term)
}

// MarkExited notes in the title that the program has ended.
func (tw *TerminalWindow) MarkExited(code int) {
	fyne.Do(func() {
		if code == 0 {
			tw.window.SetTitle(tw.title + " (exited)")
		} else {
			tw.window.SetTitle(fmt.Sprintf("%s (exit %d)", tw.title, code))
		}
	})
}

func (tw *TerminalWindow) close() {
	// RemoveListener also closes the channel, ending the resize loop.
	tw.term.RemoveListener(tw.configCh)
	_ = tw.session.Close()
}
