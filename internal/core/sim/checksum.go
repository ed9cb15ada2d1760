package sim

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Checksum digests the tick counter and every body's handle, position and
// velocity. Two runs with the same seed, scene and inputs produce the same
// value after every tick.
func (s *Simulation) Checksum() uint64 {
	d := xxhash.New()
	var buf [8]byte

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	putF32 := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
		_, _ = d.Write(buf[:4])
	}

	putU64(s.tick)
	for _, e := range s.bodies {
		b := &e.body
		putU64(uint64(b.Handle))
		putF32(b.Position.X())
		putF32(b.Position.Y())
		putF32(b.Velocity.X())
		putF32(b.Velocity.Y())
	}
	return d.Sum64()
}
