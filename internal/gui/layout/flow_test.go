package layout

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/stretchr/testify/assert"
)

func sizes(n int, w, h float32) []fyne.Size {
	out := make([]fyne.Size, n)
	for i := range out {
		out[i] = fyne.NewSize(w, h)
	}
	return out
}

func TestFlowWraps(t *testing.T) {
	positions, height := Flow(sizes(5, 100, 40), 330, 10, 5)

	assert.Equal(t, []fyne.Position{
		fyne.NewPos(0, 0), fyne.NewPos(110, 0), fyne.NewPos(220, 0),
		fyne.NewPos(0, 45), fyne.NewPos(110, 45),
	}, positions)
	assert.Equal(t, float32(85), height)
}

func TestFlowFirstOnLineAlwaysPlaced(t *testing.T) {
	positions, height := Flow([]fyne.Size{fyne.NewSize(500, 30), fyne.NewSize(50, 20)}, 200, 10, 10)

	assert.Equal(t, fyne.NewPos(0, 0), positions[0])
	assert.Equal(t, fyne.NewPos(0, 40), positions[1])
	assert.Equal(t, float32(60), height)
}

func TestFlowLineHeightIsTallest(t *testing.T) {
	_, height := Flow([]fyne.Size{fyne.NewSize(50, 20), fyne.NewSize(50, 60), fyne.NewSize(50, 10)}, 1000, 0, 0)
	assert.Equal(t, float32(60), height)
}

func TestHeightForWidthShrinksAsWidthGrows(t *testing.T) {
	in := sizes(10, 180, 60)
	narrow := HeightForWidth(in, 400, 20, 20)
	wide := HeightForWidth(in, 1000, 20, 20)

	assert.Greater(t, narrow, wide)
	assert.Zero(t, HeightForWidth(nil, 400, 20, 20))
}

func TestFlowLayoutPlacesObjects(t *testing.T) {
	objects := make([]fyne.CanvasObject, 0, 3)
	for i := 0; i < 3; i++ {
		r := canvas.NewRectangle(nil)
		r.SetMinSize(fyne.NewSize(100, 50))
		objects = append(objects, r)
	}
	hidden := canvas.NewRectangle(nil)
	hidden.SetMinSize(fyne.NewSize(100, 50))
	hidden.Hide()
	objects = append(objects, hidden)

	fl := NewFlowLayout(10, 10)
	fl.Layout(objects, fyne.NewSize(250, 300))

	assert.Equal(t, fyne.NewPos(0, 0), objects[0].Position())
	assert.Equal(t, fyne.NewPos(110, 0), objects[1].Position())
	assert.Equal(t, fyne.NewPos(0, 60), objects[2].Position())
	assert.Equal(t, fyne.NewSize(100, 50), objects[2].Size())

	assert.Equal(t, fyne.NewSize(100, 110), fl.MinSize(objects))
}
