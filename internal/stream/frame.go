package stream

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/san-kum/mbsim/internal/particle"
)

// Wire layout, little endian:
//
//	uint32  tick
//	uint32  n
//	float32 mean square speed
//	uint32  collisions
//	n x (float32 x, float32 y)
const headerSize = 16

var ErrShortFrame = errors.New("stream: short frame")

// Message is a decoded frame as seen by a client.
type Message struct {
	Tick       int
	N          int
	MeanSq     float64
	Collisions int
	Positions  []float32
}

// AppendFrame encodes f onto buf and returns the extended slice.
func AppendFrame(buf []byte, f particle.Frame) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(f.Tick))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(f.N))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f.MeanSq)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(f.Collisions))
	for _, p := range f.Positions[:2*f.N] {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(p)))
	}
	return buf
}

func Decode(data []byte) (Message, error) {
	if len(data) < headerSize {
		return Message{}, ErrShortFrame
	}
	m := Message{
		Tick:       int(binary.LittleEndian.Uint32(data[0:])),
		N:          int(binary.LittleEndian.Uint32(data[4:])),
		MeanSq:     float64(math.Float32frombits(binary.LittleEndian.Uint32(data[8:]))),
		Collisions: int(binary.LittleEndian.Uint32(data[12:])),
	}
	body := data[headerSize:]
	if len(body) != 8*m.N {
		return Message{}, ErrShortFrame
	}
	m.Positions = make([]float32, 2*m.N)
	for i := range m.Positions {
		m.Positions[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:]))
	}
	return m, nil
}
