package layout

import (
	"sync"

	"fyne.io/fyne/v2"
)

// Flow places boxes of the given sizes left to right and wraps to a new line
// when the next box would cross width. The first box on a line is always
// placed, however wide. It returns the position of each box and the total
// height used.
func Flow(sizes []fyne.Size, width, hgap, vgap float32) ([]fyne.Position, float32) {
	positions := make([]fyne.Position, len(sizes))
	if len(sizes) == 0 {
		return positions, 0
	}

	x, y := float32(0), float32(0)
	lineHeight := float32(0)
	for i, size := range sizes {
		if x > 0 && x+size.Width > width {
			x = 0
			y += lineHeight + vgap
			lineHeight = 0
		}
		positions[i] = fyne.NewPos(x, y)
		x += size.Width + hgap
		if size.Height > lineHeight {
			lineHeight = size.Height
		}
	}
	return positions, y + lineHeight
}

// HeightForWidth is the height Flow needs to place sizes within width.
func HeightForWidth(sizes []fyne.Size, width, hgap, vgap float32) float32 {
	_, height := Flow(sizes, width, hgap, vgap)
	return height
}

// FlowLayout is a fyne.Layout that wraps its objects at their minimum size.
// MinSize reports the height needed at the width of the last Layout call, so
// a vertical scroll around the container grows with the number of lines.
type FlowLayout struct {
	HGap, VGap float32

	mu        sync.Mutex
	lastWidth float32
}

func NewFlowLayout(hgap, vgap float32) *FlowLayout {
	return &FlowLayout{HGap: hgap, VGap: vgap}
}

func (fl *FlowLayout) Layout(objects []fyne.CanvasObject, containerSize fyne.Size) {
	fl.mu.Lock()
	fl.lastWidth = containerSize.Width
	fl.mu.Unlock()

	visible, sizes := visibleSizes(objects)
	positions, _ := Flow(sizes, containerSize.Width, fl.HGap, fl.VGap)
	for i, obj := range visible {
		obj.Resize(sizes[i])
		obj.Move(positions[i])
	}
}

func (fl *FlowLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	_, sizes := visibleSizes(objects)
	if len(sizes) == 0 {
		return fyne.NewSize(0, 0)
	}

	widest := float32(0)
	for _, s := range sizes {
		if s.Width > widest {
			widest = s.Width
		}
	}

	fl.mu.Lock()
	width := fl.lastWidth
	fl.mu.Unlock()
	if width < widest {
		width = widest
	}
	return fyne.NewSize(widest, HeightForWidth(sizes, width, fl.HGap, fl.VGap))
}

func visibleSizes(objects []fyne.CanvasObject) ([]fyne.CanvasObject, []fyne.Size) {
	visible := make([]fyne.CanvasObject, 0, len(objects))
	sizes := make([]fyne.Size, 0, len(objects))
	for _, obj := range objects {
		if !obj.Visible() {
			continue
		}
		visible = append(visible, obj)
		sizes = append(sizes, obj.MinSize())
	}
	return visible, sizes
}
