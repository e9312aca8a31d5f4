package app

import (
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"kali-launcher/internal/controllers"
	"kali-launcher/internal/views"
)

// Application is the desktop front end over a Core.
type Application struct {
	core *Core

	fyneApp fyne.App
	window  fyne.Window

	controller *controllers.MainController
	view       *views.MainView
}

func NewApplication(core *Core) *Application {
	fyneapp.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := fyneapp.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(core.Settings.WindowWidth, core.Settings.WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	controller := controllers.NewMainController(core.Service, core.Logger)
	view := views.NewMainView(window)
	controller.SetMainView(view)
	controller.SetWindow(window)

	a := &Application{
		core:       core,
		fyneApp:    fyneApp,
		window:     window,
		controller: controller,
		view:       view,
	}
	a.setupWindowEvents()

	core.Logger.Info("Application", "window ready", map[string]interface{}{
		"window_size": fmt.Sprintf("%.0fx%.0f", core.Settings.WindowWidth, core.Settings.WindowHeight),
	})
	return a
}

// Run shows the window and blocks until the application exits.
func (a *Application) Run() {
	a.setupGracefulShutdown()
	a.fyneApp.Lifecycle().SetOnStarted(a.controller.Initialize)

	a.core.Logger.Info("Application", "GUI displayed", nil)
	a.window.ShowAndRun()
}

func (a *Application) setupWindowEvents() {
	a.window.SetCloseIntercept(func() {
		a.core.Logger.Info("Application", "window close requested", nil)
		a.rememberWindowSize()
		a.core.Shutdown.Shutdown()
		a.window.Close()
	})
}

func (a *Application) setupGracefulShutdown() {
	a.core.Shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})
}

func (a *Application) rememberWindowSize() {
	size := a.window.Canvas().Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	a.core.Settings.WindowWidth = size.Width
	a.core.Settings.WindowHeight = size.Height
	if err := a.core.SaveSettings(); err != nil {
		a.core.Logger.Warning("Application", "window size not saved", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
