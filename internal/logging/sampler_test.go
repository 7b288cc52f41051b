package logging

import "testing"

func TestProgressSamplerEmitsOnBucketBoundaries(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(0, "downloading") {
		t.Fatal("first event should emit")
	}
	if s.ShouldLog(2, "downloading") {
		t.Fatal("same bucket should not emit")
	}
	if !s.ShouldLog(5, "downloading") {
		t.Fatal("new bucket should emit")
	}
	if !s.ShouldLog(100, "downloading") {
		t.Fatal("completion bucket should emit")
	}
}

func TestProgressSamplerEmitsOnStateChange(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "downloading")
	if !s.ShouldLog(50, "extracting") {
		t.Fatal("state change should emit")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(90, "downloading")
	s.Reset()
	if !s.ShouldLog(0, "downloading") {
		t.Fatal("reset sampler should emit again")
	}
}
