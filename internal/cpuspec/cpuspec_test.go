package cpuspec

import "testing"

func TestDeterminePerformanceCores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		brand string
		want  int
	}{
		{"12th Gen Intel(R) Core(TM) i9-12900K", 8},
		{"13th Gen Intel(R) Core(TM) i7-13700", 8},
		{"13th Gen Intel(R) Core(TM) i5-13600K", 6},
		{"12th Gen Intel(R) Core(TM) i5-12400F", 6},
		{"14th Gen Intel(R) Core(TM) i3-14100", 4},
		{"AMD Ryzen 9 5950X 16-Core Processor", 0},
		{"Apple M2", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			t.Parallel()
			if got := determinePerformanceCores(tt.brand); got != tt.want {
				t.Errorf("determinePerformanceCores(%q) = %d, want %d", tt.brand, got, tt.want)
			}
		})
	}
}

func TestGetOptimalThreadCountPositive(t *testing.T) {
	t.Parallel()

	spec := GetCPUSpec()
	if got := spec.GetOptimalThreadCount(); got <= 0 {
		t.Errorf("GetOptimalThreadCount() = %d, want > 0", got)
	}
}
