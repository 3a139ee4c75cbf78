package hsv

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"hsv-range-finder/pkg/colorutil"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// ErrNoMaskedPixels is returned by Refine when the mask selects nothing.
var ErrNoMaskedPixels = errors.New("mask selects no pixels")

// Stats summarizes the HSV distribution of the pixels selected by a mask.
type Stats struct {
	Pixels   int        // Number of masked pixels sampled
	Coverage float64    // Fraction of the frame covered by the mask (0-1)
	Mean     [3]float64 // Per-channel mean, H S V order
	StdDev   [3]float64 // Per-channel standard deviation
}

func (s Stats) String() string {
	return fmt.Sprintf("%.1f%% covered, mean H%.0f S%.0f V%.0f, σ H%.1f S%.1f V%.1f",
		s.Coverage*100, s.Mean[0], s.Mean[1], s.Mean[2], s.StdDev[0], s.StdDev[1], s.StdDev[2])
}

// Coverage returns the fraction of non-zero pixels in a single-channel mask.
func Coverage(mask gocv.Mat) float64 {
	if mask.Empty() {
		return 0
	}
	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

// Measure computes the per-channel mean and standard deviation of the
// HSV pixels selected by mask.
func Measure(hsvFrame, mask gocv.Mat) (Stats, error) {
	if hsvFrame.Empty() || mask.Empty() {
		return Stats{}, ErrEmptyFrame
	}
	if hsvFrame.Rows() != mask.Rows() || hsvFrame.Cols() != mask.Cols() {
		return Stats{}, fmt.Errorf("mask size %dx%d does not match frame %dx%d",
			mask.Cols(), mask.Rows(), hsvFrame.Cols(), hsvFrame.Rows())
	}
	if hsvFrame.Channels() != 3 {
		return Stats{}, fmt.Errorf("expected 3-channel HSV image, got %d channels", hsvFrame.Channels())
	}

	pix := hsvFrame.ToBytes()
	sel := mask.ToBytes()

	var h, s, v []float64
	for i, m := range sel {
		if m == 0 {
			continue
		}
		h = append(h, float64(pix[i*3]))
		s = append(s, float64(pix[i*3+1]))
		v = append(v, float64(pix[i*3+2]))
	}

	st := Stats{
		Pixels:   len(h),
		Coverage: float64(len(h)) / float64(len(sel)),
	}
	if st.Pixels == 0 {
		return st, ErrNoMaskedPixels
	}

	for i, ch := range [][]float64{h, s, v} {
		mean, std := stat.MeanStdDev(ch, nil)
		if math.IsNaN(std) {
			std = 0
		}
		st.Mean[i] = mean
		st.StdDev[i] = std
	}
	return st, nil
}

// Refine proposes a tighter range of mean ± k·σ per channel around the
// pixels currently selected by mask.
func Refine(hsvFrame, mask gocv.Mat, k float64, hueFull bool) (Range, Stats, error) {
	st, err := Measure(hsvFrame, mask)
	if err != nil {
		return Range{}, st, err
	}

	var r Range
	for i, c := range Channels {
		lo := int(math.Floor(st.Mean[i] - k*st.StdDev[i]))
		hi := int(math.Ceil(st.Mean[i] + k*st.StdDev[i]))
		r = r.WithLow(c, lo).WithHigh(c, hi)
	}
	return r.Normalize(hueFull), st, nil
}

// SampleRange returns a range centered on a single HSV color. Hue uses a
// quarter of the tolerance since its scale is narrower.
func SampleRange(h, s, v, tolerance int, hueFull bool) Range {
	hTol := tolerance / 4
	r := Range{
		HLow: h - hTol, HHigh: h + hTol,
		SLow: s - tolerance, SHigh: s + tolerance,
		VLow: v - tolerance, VHigh: v + tolerance,
	}
	return r.Normalize(hueFull)
}

// SampleColor converts c to HSV on the requested hue scale and returns the
// range around it.
func SampleColor(c color.Color, tolerance int, hueFull bool) (Range, [3]int) {
	r, g, b, _ := c.RGBA()
	hf, sf, vf := colorutil.RGBToHSV(float64(r>>8), float64(g>>8), float64(b>>8))
	if hueFull {
		// HSV_FULL maps 360° onto 256 steps
		hf = hf * (HueFullMax + 1) / 180
	}
	hsv := [3]int{int(math.Round(hf)), int(math.Round(sf)), int(math.Round(vf))}
	if hsv[0] > Hue.Max(hueFull) {
		hsv[0] = 0 // 360° wraps to red
	}
	return SampleRange(hsv[0], hsv[1], hsv[2], tolerance, hueFull), hsv
}

// RefineImage runs Refine on a decoded frame, thresholding it with r first.
func RefineImage(img image.Image, r Range, k float64, hueFull bool) (Range, Stats, error) {
	if img == nil {
		return Range{}, Stats{}, ErrEmptyFrame
	}
	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return Range{}, Stats{}, fmt.Errorf("convert frame: %w", err)
	}
	defer bgr.Close()

	hsvFrame := gocv.NewMat()
	defer hsvFrame.Close()
	if err := ToHSV(bgr, hueFull, &hsvFrame); err != nil {
		return Range{}, Stats{}, err
	}

	mask := gocv.NewMat()
	defer mask.Close()
	if err := Threshold(hsvFrame, r, &mask); err != nil {
		return Range{}, Stats{}, err
	}
	return Refine(hsvFrame, mask, k, hueFull)
}
