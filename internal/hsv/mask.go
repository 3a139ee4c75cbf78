package hsv

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when an operation receives an empty Mat.
var ErrEmptyFrame = errors.New("empty frame")

// OutputMode selects how the processed view is rendered.
type OutputMode int

const (
	// OutputMasked shows the original colors where the mask is set and black elsewhere.
	OutputMasked OutputMode = iota
	// OutputBinary shows the mask itself as a black and white image.
	OutputBinary
)

func (m OutputMode) String() string {
	if m == OutputBinary {
		return "binary"
	}
	return "masked"
}

// ConversionCode returns the BGR to HSV conversion matching the hue scale.
func ConversionCode(hueFull bool) gocv.ColorConversionCode {
	if hueFull {
		return gocv.ColorBGRToHSVFull
	}
	return gocv.ColorBGRToHSV
}

// Scalars returns the lower and upper inRange scalars for r.
func (r Range) Scalars() (lower, upper gocv.Scalar) {
	lower = gocv.NewScalar(float64(r.HLow), float64(r.SLow), float64(r.VLow), 0)
	upper = gocv.NewScalar(float64(r.HHigh), float64(r.SHigh), float64(r.VHigh), 0)
	return lower, upper
}

// ToHSV converts a BGR frame into dst.
func ToHSV(frame gocv.Mat, hueFull bool, dst *gocv.Mat) error {
	if frame.Empty() {
		return ErrEmptyFrame
	}
	gocv.CvtColor(frame, dst, ConversionCode(hueFull))
	return nil
}

// Threshold writes the single-channel range mask of an HSV image into dst.
func Threshold(hsvFrame gocv.Mat, r Range, dst *gocv.Mat) error {
	if hsvFrame.Empty() {
		return ErrEmptyFrame
	}
	lower, upper := r.Scalars()
	gocv.InRangeWithScalar(hsvFrame, lower, upper, dst)
	return nil
}

// Mask converts a BGR frame to HSV and thresholds it with r.
func Mask(frame gocv.Mat, r Range, hueFull bool, dst *gocv.Mat) error {
	hsvFrame := gocv.NewMat()
	defer hsvFrame.Close()

	if err := ToHSV(frame, hueFull, &hsvFrame); err != nil {
		return err
	}
	return Threshold(hsvFrame, r, dst)
}

// Render draws the processed view of frame into dst according to mode.
// dst is reallocated when its size or type does not match.
func Render(frame, mask gocv.Mat, mode OutputMode, dst *gocv.Mat) error {
	if frame.Empty() || mask.Empty() {
		return ErrEmptyFrame
	}
	if mask.Rows() != frame.Rows() || mask.Cols() != frame.Cols() {
		return fmt.Errorf("mask size %dx%d does not match frame %dx%d",
			mask.Cols(), mask.Rows(), frame.Cols(), frame.Rows())
	}

	if mode == OutputBinary {
		gocv.CvtColor(mask, dst, gocv.ColorGrayToBGR)
		return nil
	}

	if dst.Empty() || dst.Rows() != frame.Rows() || dst.Cols() != frame.Cols() || dst.Type() != frame.Type() {
		dst.Close()
		*dst = gocv.NewMatWithSize(frame.Rows(), frame.Cols(), frame.Type())
	}
	dst.SetTo(gocv.NewScalar(0, 0, 0, 0))
	frame.CopyToWithMask(dst, mask)
	return nil
}

// Processor holds the intermediate Mats for the per-frame pipeline so they
// are allocated once per capture session.
type Processor struct {
	hsv  gocv.Mat
	mask gocv.Mat
	out  gocv.Mat
}

// NewProcessor allocates an empty processor.
func NewProcessor() *Processor {
	return &Processor{
		hsv:  gocv.NewMat(),
		mask: gocv.NewMat(),
		out:  gocv.NewMat(),
	}
}

// Process thresholds frame with r and renders the processed view.
// The returned Mat is owned by the processor and valid until the next call.
func (p *Processor) Process(frame gocv.Mat, r Range, hueFull bool, mode OutputMode) (gocv.Mat, error) {
	if err := ToHSV(frame, hueFull, &p.hsv); err != nil {
		return gocv.Mat{}, err
	}
	if err := Threshold(p.hsv, r, &p.mask); err != nil {
		return gocv.Mat{}, err
	}
	if err := Render(frame, p.mask, mode, &p.out); err != nil {
		return gocv.Mat{}, err
	}
	return p.out, nil
}

// HSV returns the HSV image from the last Process call.
func (p *Processor) HSV() gocv.Mat {
	return p.hsv
}

// LastMask returns the range mask from the last Process call.
func (p *Processor) LastMask() gocv.Mat {
	return p.mask
}

// Close releases the processor's Mats.
func (p *Processor) Close() {
	p.hsv.Close()
	p.mask.Close()
	p.out.Close()
}
