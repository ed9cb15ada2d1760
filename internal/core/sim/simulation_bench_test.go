package sim

import "testing"

func BenchmarkStepSerial(b *testing.B) {
	s := crowd(b, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}

func BenchmarkStepParallelDetect(b *testing.B) {
	s := crowd(b, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}
