package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays the last launch status and item counts
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	itemInfo    *widget.Label
	activeInfo  *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.itemInfo = widget.NewLabel("No items")
	sb.activeInfo = widget.NewLabel("")
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(
		nil, nil, nil,
		container.NewHBox(
			widget.NewSeparator(),
			sb.activeInfo,
			widget.NewSeparator(),
			sb.itemInfo,
		),
		sb.statusLabel,
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetItemInfo shows how many items are visible out of the category total.
func (sb *StatusBar) SetItemInfo(shown, total int) {
	switch {
	case total == 0:
		sb.itemInfo.SetText("No items")
	case shown == total:
		sb.itemInfo.SetText(fmt.Sprintf("%d items", total))
	default:
		sb.itemInfo.SetText(fmt.Sprintf("%d of %d items", shown, total))
	}
}

// SetActive shows the number of launches that have not exited yet.
func (sb *StatusBar) SetActive(n int) {
	if n <= 0 {
		sb.activeInfo.SetText("")
		return
	}
	sb.activeInfo.SetText(fmt.Sprintf("Running: %d", n))
}

func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText("Ready")
	sb.itemInfo.SetText("No items")
	sb.activeInfo.SetText("")
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
