// Package hsv provides HSV threshold ranges, range masking and range statistics.
package hsv

import (
	"fmt"
	"sync"
)

// Channel identifies one of the three HSV channels.
type Channel int

const (
	Hue Channel = iota
	Saturation
	Value
)

// Channels lists all channels in H, S, V order.
var Channels = []Channel{Hue, Saturation, Value}

const (
	// HueMax is the 8-bit OpenCV hue limit (degrees / 2).
	HueMax = 179
	// HueFullMax is the hue limit when converting with the *_FULL codes.
	HueFullMax = 255
	// ChannelMax is the limit for saturation and value.
	ChannelMax = 255
)

func (c Channel) String() string {
	switch c {
	case Hue:
		return "H"
	case Saturation:
		return "S"
	case Value:
		return "V"
	default:
		return "?"
	}
}

// Name returns the long channel name.
func (c Channel) Name() string {
	switch c {
	case Hue:
		return "Hue"
	case Saturation:
		return "Saturation"
	case Value:
		return "Value"
	default:
		return "Unknown"
	}
}

// Max returns the largest value the channel can take.
func (c Channel) Max(hueFull bool) int {
	if c == Hue && !hueFull {
		return HueMax
	}
	if c == Hue {
		return HueFullMax
	}
	return ChannelMax
}

// Range holds inclusive low/high bounds for each HSV channel.
type Range struct {
	HLow  int `toml:"h_low" yaml:"h_low" json:"h_low"`
	HHigh int `toml:"h_high" yaml:"h_high" json:"h_high"`
	SLow  int `toml:"s_low" yaml:"s_low" json:"s_low"`
	SHigh int `toml:"s_high" yaml:"s_high" json:"s_high"`
	VLow  int `toml:"v_low" yaml:"v_low" json:"v_low"`
	VHigh int `toml:"v_high" yaml:"v_high" json:"v_high"`
}

// FullRange returns a range that passes every pixel.
func FullRange(hueFull bool) Range {
	return Range{
		HLow: 0, HHigh: Hue.Max(hueFull),
		SLow: 0, SHigh: ChannelMax,
		VLow: 0, VHigh: ChannelMax,
	}
}

// Low returns the lower bound of a channel.
func (r Range) Low(c Channel) int {
	switch c {
	case Hue:
		return r.HLow
	case Saturation:
		return r.SLow
	default:
		return r.VLow
	}
}

// High returns the upper bound of a channel.
func (r Range) High(c Channel) int {
	switch c {
	case Hue:
		return r.HHigh
	case Saturation:
		return r.SHigh
	default:
		return r.VHigh
	}
}

// WithLow returns a copy of r with the lower bound of c replaced.
func (r Range) WithLow(c Channel, v int) Range {
	switch c {
	case Hue:
		r.HLow = v
	case Saturation:
		r.SLow = v
	default:
		r.VLow = v
	}
	return r
}

// WithHigh returns a copy of r with the upper bound of c replaced.
func (r Range) WithHigh(c Channel, v int) Range {
	switch c {
	case Hue:
		r.HHigh = v
	case Saturation:
		r.SHigh = v
	default:
		r.VHigh = v
	}
	return r
}

// Normalize clamps every bound into the channel limits and ensures low <= high.
// An inverted pair collapses onto its low value.
func (r Range) Normalize(hueFull bool) Range {
	for _, c := range Channels {
		lo := clamp(r.Low(c), 0, c.Max(hueFull))
		hi := clamp(r.High(c), 0, c.Max(hueFull))
		if hi < lo {
			hi = lo
		}
		r = r.WithLow(c, lo).WithHigh(c, hi)
	}
	return r
}

// Valid reports whether r is already normalized.
func (r Range) Valid(hueFull bool) bool {
	return r == r.Normalize(hueFull)
}

func (r Range) String() string {
	return fmt.Sprintf("H[%d-%d] S[%d-%d] V[%d-%d]",
		r.HLow, r.HHigh, r.SLow, r.SHigh, r.VLow, r.VHigh)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bounds is a Range shared between the UI and the capture loop.
// Writes go through SetLow/SetHigh which never let a pair cross.
type Bounds struct {
	mu      sync.RWMutex
	r       Range
	hueFull bool
}

// NewBounds creates bounds initialized to the full range.
func NewBounds(hueFull bool) *Bounds {
	return &Bounds{r: FullRange(hueFull), hueFull: hueFull}
}

// SetLow stores v as the lower bound of c. If v exceeds the current upper
// bound the upper bound is stored instead. Returns the stored value.
func (b *Bounds) SetLow(c Channel, v int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	v = clamp(v, 0, c.Max(b.hueFull))
	if hi := b.r.High(c); v > hi {
		v = hi
	}
	b.r = b.r.WithLow(c, v)
	return v
}

// SetHigh stores v as the upper bound of c. If v is below the current lower
// bound the lower bound is stored instead. Returns the stored value.
func (b *Bounds) SetHigh(c Channel, v int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	v = clamp(v, 0, c.Max(b.hueFull))
	if lo := b.r.Low(c); v < lo {
		v = lo
	}
	b.r = b.r.WithHigh(c, v)
	return v
}

// Set replaces all bounds with a normalized copy of r.
func (b *Bounds) Set(r Range) Range {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.r = r.Normalize(b.hueFull)
	return b.r
}

// Snapshot returns the current range.
func (b *Bounds) Snapshot() Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.r
}

// HueFull reports whether hue uses the 0-255 scale.
func (b *Bounds) HueFull() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hueFull
}

// SetHueFull switches the hue scale, rescaling the hue bounds to match.
func (b *Bounds) SetHueFull(full bool) Range {
	b.mu.Lock()
	defer b.mu.Unlock()
	if full == b.hueFull {
		return b.r
	}
	from, to := Hue.Max(b.hueFull), Hue.Max(full)
	b.r.HLow = (b.r.HLow*to + from/2) / from
	b.r.HHigh = (b.r.HHigh*to + from/2) / from
	b.hueFull = full
	b.r = b.r.Normalize(full)
	return b.r
}
