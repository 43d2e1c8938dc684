// Package audio turns a running simulation into sound. A slow pad tracks how
// far the speed distribution is from equilibrium and short clicks follow the
// collisions resolved each tick.
package audio

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/particle"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	// distanceEvery is how often, in ticks, the speed histogram is rebuilt.
	distanceEvery = 16
	maxPending    = 64
)

type Sonifier struct {
	stream *portaudio.Stream

	n     int
	speed float64

	mu       sync.Mutex
	rate     float64 // collisions per particle, last tick
	distance float64
	pending  int
	clicks   int

	// audio thread only
	time        float64
	rateSmooth  float64
	distSmooth  float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int
	click       float64
	clickPan    float64
	rng         *rand.Rand
}

func NewSonifier(n int, speed float64) *Sonifier {
	delayLen := int(float64(SampleRate) * 0.6)
	return &Sonifier{
		n:         n,
		speed:     speed,
		distance:  2,
		delayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		rng:       rand.New(rand.NewPCG(1, 2)),
	}
}

// Start opens the default output device.
func (s *Sonifier) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, s.Process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}
	s.stream = stream
	return nil
}

func (s *Sonifier) Stop() {
	if s.stream == nil {
		return
	}
	s.stream.Stop()
	s.stream.Close()
	portaudio.Terminate()
	s.stream = nil
}

// Present records the collision rate of the frame and, every few ticks, its
// distance from the Maxwell-Boltzmann distribution.
func (s *Sonifier) Present(ctx context.Context, f particle.Frame) error {
	var dist float64
	measure := f.Tick%distanceEvery == 0
	if measure {
		h := analysis.SpeedHistogram(f.Velocities, analysis.DefaultBins, analysis.DefaultWidth)
		dist = analysis.Distance(h, s.speed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n > 0 {
		s.rate = float64(f.Collisions) / float64(s.n)
	}
	if measure {
		s.distance = dist
	}
	// one click per 32 resolved pairs, capped so a dense start does not
	// saturate the output
	s.pending = min(s.pending+(f.Collisions+31)/32, maxPending)
	return nil
}

// Clicks returns how many collision clicks have been played.
func (s *Sonifier) Clicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks
}

// Cutoff is the pad filter frequency for the given smoothed collision rate
// and distance. A gas far from equilibrium sounds bright and settles into a
// muffled pad as the distribution relaxes.
func Cutoff(rate, distance float64) float64 {
	return 250 + math.Min(distance, 2)*450 + math.Min(rate*4000, 400)
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Process fills one stereo buffer. It is the portaudio callback.
func (s *Sonifier) Process(out [][]float32) {
	// G2 Bb2 D3 F3 A3
	freqs := [...]float64{98.00, 116.54, 146.83, 174.61, 220.00}

	s.mu.Lock()
	rate, distance := s.rate, s.distance
	triggers := s.pending
	s.pending = 0
	s.clicks += triggers
	s.mu.Unlock()

	frames := len(out[0])
	// spread the clicks of this buffer evenly
	every := frames + 1
	if triggers > 0 {
		every = max(frames/triggers, 1)
	}

	s.rateSmooth = s.rateSmooth*0.9 + rate*0.1
	s.distSmooth = s.distSmooth*0.95 + distance*0.05
	cutoff := Cutoff(s.rateSmooth, s.distSmooth)
	dt := 1.0 / float64(SampleRate)
	vol := 0.25

	for i := 0; i < frames; i++ {
		var l, r float64
		g := 1.0 / float64(len(freqs))
		for j, f := range freqs {
			lfo := math.Sin(s.time*0.2 + float64(j))
			l += triangle(s.time*f*0.999) * g * (0.7 + 0.3*lfo)
			r += triangle(s.time*f*1.001) * g * (0.7 + 0.3*lfo)
		}

		s.filterState[0] = lpf(l, cutoff, dt, s.filterState[0])
		s.filterState[1] = lpf(r, cutoff, dt, s.filterState[1])
		l, r = s.filterState[0], s.filterState[1]

		if triggers > 0 && i%every == 0 {
			triggers--
			s.click = 0.6
			s.clickPan = s.rng.Float64()
		}
		if s.click > 1e-4 {
			noise := s.rng.Float64()*2 - 1
			l += noise * s.click * (1 - s.clickPan)
			r += noise * s.click * s.clickPan
			s.click *= 0.97
		}

		dl := s.delayLine[0][s.delayHead]
		dr := s.delayLine[1][s.delayHead]
		mixL := l + dl*0.3 + dr*0.1
		mixR := r + dr*0.3 + dl*0.1
		s.delayLine[0][s.delayHead] = mixL * 0.7
		s.delayLine[1][s.delayHead] = mixR * 0.7
		s.delayHead = (s.delayHead + 1) % len(s.delayLine[0])

		out[0][i] = clamp(mixL * vol)
		out[1][i] = clamp(mixR * vol)
		s.time += dt
	}
}

func clamp(v float64) float32 {
	return float32(math.Max(-1, math.Min(1, v)))
}
