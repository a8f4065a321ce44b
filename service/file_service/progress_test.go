package file_service

import "testing"

func TestUploadPercentBounds(t *testing.T) {
	tests := []struct {
		received, total int64
		want            int
	}{
		{0, 1000, 1},      // floor
		{1, 1000, 1},      // rounds down to floor
		{500, 1000, 27},   // mid-stream
		{1000, 1000, 55},  // ceiling
		{2000, 1000, 55},  // over-delivery clamps
		{0, 0, 10},        // unknown total placeholder
		{123456, -1, 10},  // negative total treated as unknown
	}

	for _, tt := range tests {
		got := UploadPercent(tt.received, tt.total)
		if got != tt.want {
			t.Errorf("UploadPercent(%d, %d) = %d, want %d", tt.received, tt.total, got, tt.want)
		}
	}
}

func TestUploadPercentMonotonic(t *testing.T) {
	const total = 997
	last := 0
	for received := int64(0); received <= total; received += 13 {
		got := UploadPercent(received, total)
		if got < last {
			t.Fatalf("progress went backwards at received=%d: %d < %d", received, got, last)
		}
		if got < 1 || got > 55 {
			t.Fatalf("progress out of upload range at received=%d: %d", received, got)
		}
		last = got
	}
}

func TestProcessingPercentBounds(t *testing.T) {
	tests := []struct {
		processed, total int
		want             int
	}{
		{0, 100, 60},   // floor
		{50, 100, 80},  // midpoint
		{100, 100, 99}, // 60+40 clamps to 99, 100 is reserved for ready
		{10, 0, 60},    // degenerate total
	}

	for _, tt := range tests {
		got := ProcessingPercent(tt.processed, tt.total)
		if got != tt.want {
			t.Errorf("ProcessingPercent(%d, %d) = %d, want %d", tt.processed, tt.total, got, tt.want)
		}
	}
}

func TestProcessingPercentNeverReaches100(t *testing.T) {
	for total := 1; total <= 50; total++ {
		for processed := 0; processed <= total; processed++ {
			got := ProcessingPercent(processed, total)
			if got < 60 || got > 99 {
				t.Fatalf("ProcessingPercent(%d, %d) = %d out of [60,99]", processed, total, got)
			}
		}
	}
}
