package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"kali-launcher/internal/models"
)

const (
	CardWidth  float32 = 180
	CardHeight float32 = 60
)

// ItemCard is the button shown for one launcher item. A primary tap launches
// the item and a secondary tap asks for its context menu.
type ItemCard struct {
	widget.Button

	Item models.LauncherItem

	onLaunch func(models.LauncherItem)
	onMenu   func(models.LauncherItem, fyne.Position)
}

func NewItemCard(item models.LauncherItem, onLaunch func(models.LauncherItem), onMenu func(models.LauncherItem, fyne.Position)) *ItemCard {
	card := &ItemCard{
		Item:     item,
		onLaunch: onLaunch,
		onMenu:   onMenu,
	}
	card.Text = item.Name
	card.Icon = iconFor(item)
	card.Alignment = widget.ButtonAlignLeading
	card.OnTapped = func() {
		if card.onLaunch != nil {
			card.onLaunch(card.Item)
		}
	}
	card.ExtendBaseWidget(card)
	return card
}

func (c *ItemCard) MinSize() fyne.Size {
	min := c.Button.MinSize()
	return fyne.NewSize(max32(min.Width, CardWidth), max32(min.Height, CardHeight))
}

func (c *ItemCard) TappedSecondary(ev *fyne.PointEvent) {
	if c.onMenu != nil {
		c.onMenu(c.Item, ev.AbsolutePosition)
	}
}

func iconFor(item models.LauncherItem) fyne.Resource {
	switch item.Kind {
	case models.KindURL:
		return theme.NavigateNextIcon()
	case models.KindFile:
		return theme.FileIcon()
	case models.KindFolder:
		return theme.FolderOpenIcon()
	}
	if item.OpenTerminal {
		return theme.ComputerIcon()
	}
	return theme.MediaPlayIcon()
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
