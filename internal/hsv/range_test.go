package hsv

import (
	"sync"
	"testing"
)

func TestFullRange(t *testing.T) {
	r := FullRange(false)
	if r.HHigh != HueMax || r.SHigh != ChannelMax || r.VHigh != ChannelMax {
		t.Errorf("FullRange(false) = %v", r)
	}
	if r.HLow != 0 || r.SLow != 0 || r.VLow != 0 {
		t.Errorf("FullRange(false) lows = %v", r)
	}
	if got := FullRange(true).HHigh; got != HueFullMax {
		t.Errorf("FullRange(true).HHigh = %d, want %d", got, HueFullMax)
	}
}

func TestBoundsSetLowClampsToHigh(t *testing.T) {
	tests := []struct {
		name    string
		high    int
		input   int
		want    int
		channel Channel
	}{
		{"below high", 100, 50, 50, Saturation},
		{"equal high", 100, 100, 100, Saturation},
		{"above high", 100, 150, 100, Saturation},
		{"negative", 100, -5, 0, Value},
		{"hue above limit", 179, 250, 179, Hue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBounds(false)
			b.SetHigh(tt.channel, tt.high)
			got := b.SetLow(tt.channel, tt.input)
			if got != tt.want {
				t.Errorf("SetLow(%d) = %d, want %d", tt.input, got, tt.want)
			}
			if stored := b.Snapshot().Low(tt.channel); stored != tt.want {
				t.Errorf("stored low = %d, want %d", stored, tt.want)
			}
		})
	}
}

func TestBoundsSetHighClampsToLow(t *testing.T) {
	tests := []struct {
		name  string
		low   int
		input int
		want  int
	}{
		{"above low", 40, 200, 200},
		{"equal low", 40, 40, 40},
		{"below low", 40, 10, 40},
		{"above limit", 0, 300, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBounds(false)
			b.SetLow(Value, tt.low)
			got := b.SetHigh(Value, tt.input)
			if got != tt.want {
				t.Errorf("SetHigh(%d) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoundsChannelsIndependent(t *testing.T) {
	b := NewBounds(false)
	b.SetLow(Hue, 20)
	b.SetHigh(Hue, 40)
	b.SetLow(Saturation, 100)
	b.SetHigh(Value, 90)

	want := Range{HLow: 20, HHigh: 40, SLow: 100, SHigh: 255, VLow: 0, VHigh: 90}
	if got := b.Snapshot(); got != want {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
}

func TestRangeNormalize(t *testing.T) {
	in := Range{HLow: 200, HHigh: 10, SLow: -4, SHigh: 300, VLow: 90, VHigh: 80}
	got := in.Normalize(false)
	want := Range{HLow: 179, HHigh: 179, SLow: 0, SHigh: 255, VLow: 90, VHigh: 90}
	if got != want {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}
	if !got.Valid(false) {
		t.Error("normalized range should be valid")
	}
	if in.Valid(false) {
		t.Error("input range should not be valid")
	}
}

func TestBoundsSetHueFullRescales(t *testing.T) {
	b := NewBounds(false)
	b.Set(Range{HLow: 0, HHigh: 179, SLow: 0, SHigh: 255, VLow: 0, VHigh: 255})

	r := b.SetHueFull(true)
	if r.HHigh != HueFullMax {
		t.Errorf("HHigh after switch = %d, want %d", r.HHigh, HueFullMax)
	}
	if !b.HueFull() {
		t.Error("HueFull() = false after switch")
	}

	r = b.SetHueFull(false)
	if r.HHigh != HueMax {
		t.Errorf("HHigh after switching back = %d, want %d", r.HHigh, HueMax)
	}
}

func TestBoundsConcurrentNeverCross(t *testing.T) {
	b := NewBounds(false)
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(seed int) {
			defer wg.Done()
			for v := 0; v < 500; v++ {
				b.SetLow(Saturation, (v*7+seed)%256)
			}
		}(i)
		go func(seed int) {
			defer wg.Done()
			for v := 0; v < 500; v++ {
				b.SetHigh(Saturation, (v*13+seed)%256)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			r := b.Snapshot()
			if r.SLow > r.SHigh {
				t.Fatalf("final range crossed: %v", r)
			}
			return
		default:
			if r := b.Snapshot(); r.SLow > r.SHigh {
				t.Fatalf("observed crossed range: %v", r)
			}
		}
	}
}

func TestChannelNames(t *testing.T) {
	if Hue.String() != "H" || Saturation.Name() != "Saturation" || Value.String() != "V" {
		t.Error("unexpected channel names")
	}
}
