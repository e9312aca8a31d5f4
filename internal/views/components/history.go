package components

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"kali-launcher/internal/history"
)

// NewHistoryTable renders recent launches as a read-only table.
func NewHistoryTable(entries []history.Entry) fyne.CanvasObject {
	if len(entries) == 0 {
		return container.NewCenter(widget.NewLabel("No launches recorded yet"))
	}

	headers := []string{"When", "Item", "Mode", "Result", "Duration"}
	table := widget.NewTable(
		func() (int, int) { return len(entries), len(headers) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(historyCell(entries[id.Row], id.Col))
		},
	)
	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject { return widget.NewLabel("") }
	table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(headers) {
			obj.(*widget.Label).SetText(headers[id.Col])
		}
	}
	for col, width := range []float32{150, 160, 90, 110, 90} {
		table.SetColumnWidth(col, width)
	}
	return table
}

func historyCell(e history.Entry, col int) string {
	switch col {
	case 0:
		return e.StartedAt.Format("01-02 15:04:05")
	case 1:
		return e.ItemName
	case 2:
		return e.Mode
	case 3:
		return e.Outcome()
	case 4:
		if !e.Finished {
			return "-"
		}
		return e.Duration.Round(100 * time.Millisecond).String()
	}
	return ""
}
