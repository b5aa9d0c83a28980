package pipeline

import "testing"

func TestRequestSeekCoalescesPending(t *testing.T) {
	d := &Demuxer{seekRequests: make(chan float64, 1), stop: make(chan struct{})}

	d.RequestSeek(10)
	d.RequestSeek(25)

	select {
	case got := <-d.seekRequests:
		if got != 25 {
			t.Fatalf("pending seek = %v, want latest request 25 (earlier one should be dropped)", got)
		}
	default:
		t.Fatalf("expected a coalesced seek request to be pending")
	}

	select {
	case extra := <-d.seekRequests:
		t.Fatalf("expected only one pending seek request, got an extra one: %v", extra)
	default:
	}
}

func TestStopClosesSignalChannel(t *testing.T) {
	d := &Demuxer{seekRequests: make(chan float64, 1), stop: make(chan struct{})}
	d.Stop()
	select {
	case <-d.stop:
	default:
		t.Fatalf("expected stop channel to be closed")
	}
}
