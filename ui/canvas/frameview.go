// Package canvas provides the widgets that display camera frames.
package canvas

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
)

const (
	minViewWidth  = 320
	minViewHeight = 240
)

// FrameView shows one camera stream, scaled to fit while keeping aspect.
// SetFrame and Clear may be called from the capture goroutine.
type FrameView struct {
	widget.BaseWidget

	mu       sync.RWMutex
	source   image.Image // Last frame at capture resolution
	maxWidth int

	title  *widget.Label
	image  *fynecanvas.Image
	bg     *fynecanvas.Rectangle
	holder *fynecanvas.Text
	body   *fyne.Container

	onTapped func(c color.Color, x, y int)
}

// NewFrameView creates an empty view. Frames wider than maxWidth are
// downscaled before display; 0 disables scaling.
func NewFrameView(title string, maxWidth int) *FrameView {
	v := &FrameView{
		maxWidth: maxWidth,
		title:    widget.NewLabelWithStyle(title, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		bg:       fynecanvas.NewRectangle(color.Black),
		holder:   fynecanvas.NewText("No frame", color.Gray{Y: 0x80}),
	}
	v.holder.Alignment = fyne.TextAlignCenter
	v.image = fynecanvas.NewImageFromImage(nil)
	v.image.FillMode = fynecanvas.ImageFillContain
	v.image.ScaleMode = fynecanvas.ImageScaleFastest
	v.body = container.NewStack(v.bg, v.image, container.NewCenter(v.holder))
	v.ExtendBaseWidget(v)
	return v
}

// SetOnTapped registers a callback receiving the color and capture-resolution
// coordinates of a tapped pixel.
func (v *FrameView) SetOnTapped(fn func(c color.Color, x, y int)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onTapped = fn
}

// SetFrame displays img.
func (v *FrameView) SetFrame(img image.Image) {
	display := Fit(img, v.maxWidth)

	v.mu.Lock()
	v.source = img
	v.mu.Unlock()

	v.image.Image = display
	if img != nil {
		v.holder.Hide()
	} else {
		v.holder.Show()
	}
	v.image.Refresh()
}

// Clear removes the current frame.
func (v *FrameView) Clear() {
	v.SetFrame(nil)
}

// Frame returns the last frame at capture resolution, or nil.
func (v *FrameView) Frame() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.source
}

// Tapped samples the pixel under the pointer.
func (v *FrameView) Tapped(ev *fyne.PointEvent) {
	v.mu.RLock()
	src, fn := v.source, v.onTapped
	v.mu.RUnlock()
	if src == nil || fn == nil {
		return
	}

	pos := ev.Position.Subtract(v.body.Position())
	b := src.Bounds()
	x, y, ok := ViewToImage(pos, v.body.Size(), b.Dx(), b.Dy())
	if !ok {
		return
	}
	fn(src.At(b.Min.X+x, b.Min.Y+y), x, y)
}

// MinSize keeps room for a useful preview.
func (v *FrameView) MinSize() fyne.Size {
	min := v.BaseWidget.MinSize()
	return fyne.NewSize(fyne.Max(min.Width, minViewWidth), fyne.Max(min.Height, minViewHeight))
}

func (v *FrameView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(v.title, nil, nil, nil, v.body))
}

// Fit downscales img to maxWidth keeping aspect ratio.
func Fit(img image.Image, maxWidth int) image.Image {
	if img == nil || maxWidth <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}

	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ViewToImage maps a point inside a view of size view, showing an image of
// imgW x imgH with contain fill, to image pixel coordinates. ok is false
// for points in the letterbox.
func ViewToImage(pos fyne.Position, view fyne.Size, imgW, imgH int) (x, y int, ok bool) {
	if imgW <= 0 || imgH <= 0 || view.Width <= 0 || view.Height <= 0 {
		return 0, 0, false
	}

	scale := view.Width / float32(imgW)
	if s := view.Height / float32(imgH); s < scale {
		scale = s
	}
	offX := (view.Width - float32(imgW)*scale) / 2
	offY := (view.Height - float32(imgH)*scale) / 2

	fx := (pos.X - offX) / scale
	fy := (pos.Y - offY) / scale
	if fx < 0 || fy < 0 || fx >= float32(imgW) || fy >= float32(imgH) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
