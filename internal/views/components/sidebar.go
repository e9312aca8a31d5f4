package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const SidebarWidth float32 = 200

// Sidebar lists the categories.
type Sidebar struct {
	container  *fyne.Container
	title      *widget.Label
	list       *widget.List
	categories []string
	selected   int

	selectHandler func(string)
	menuHandler   func(string, fyne.Position)
}

func NewSidebar() *Sidebar {
	sb := &Sidebar{selected: -1}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *Sidebar) createComponents() {
	sb.title = widget.NewLabelWithStyle("Kali Launcher", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	sb.list = widget.NewList(
		func() int { return len(sb.categories) },
		func() fyne.CanvasObject {
			return newCategoryLabel(func(id int, pos fyne.Position) {
				if sb.menuHandler != nil && id >= 0 && id < len(sb.categories) {
					sb.menuHandler(sb.categories[id], pos)
				}
			})
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*categoryLabel)
			label.id = id
			label.SetText(sb.categories[id])
		},
	)
	sb.list.OnSelected = func(id widget.ListItemID) {
		sb.selected = id
		if sb.selectHandler != nil && id < len(sb.categories) {
			sb.selectHandler(sb.categories[id])
		}
	}
}

func (sb *Sidebar) buildLayout() {
	sb.container = container.NewBorder(
		container.NewVBox(sb.title, widget.NewSeparator()),
		nil, nil, nil,
		sb.list,
	)
}

func (sb *Sidebar) SetSelectHandler(handler func(string)) {
	sb.selectHandler = handler
}

// SetMenuHandler sets the handler for secondary taps on a category.
func (sb *Sidebar) SetMenuHandler(handler func(string, fyne.Position)) {
	sb.menuHandler = handler
}

// SetCategories replaces the list and selects selected without firing the
// select handler.
func (sb *Sidebar) SetCategories(categories []string, selected string) {
	sb.categories = append([]string(nil), categories...)
	sb.list.Refresh()

	for i, c := range sb.categories {
		if c == selected {
			if sb.selected != i {
				handler := sb.selectHandler
				sb.selectHandler = nil
				sb.list.Select(i)
				sb.selectHandler = handler
			}
			return
		}
	}
	sb.selected = -1
	sb.list.UnselectAll()
}

func (sb *Sidebar) Categories() []string {
	return append([]string(nil), sb.categories...)
}

func (sb *Sidebar) GetContainer() *fyne.Container {
	return sb.container
}

// categoryLabel is a list row that reports secondary taps.
type categoryLabel struct {
	widget.Label
	id     int
	onMenu func(int, fyne.Position)
}

func newCategoryLabel(onMenu func(int, fyne.Position)) *categoryLabel {
	l := &categoryLabel{id: -1, onMenu: onMenu}
	l.Truncation = fyne.TextTruncateEllipsis
	l.ExtendBaseWidget(l)
	return l
}

func (l *categoryLabel) TappedSecondary(ev *fyne.PointEvent) {
	if l.onMenu != nil {
		l.onMenu(l.id, ev.AbsolutePosition)
	}
}
