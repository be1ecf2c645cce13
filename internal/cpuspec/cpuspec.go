// Package cpuspec recommends an inference thread count for the current CPU.
package cpuspec

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName        string
	PerformanceCores int
}

// GetCPUSpec returns CPU specifications including the number of performance cores
func GetCPUSpec() CPUSpec {
	brandName := cpuid.CPU.BrandName

	return CPUSpec{
		BrandName:        brandName,
		PerformanceCores: determinePerformanceCores(brandName),
	}
}

// GetOptimalThreadCount returns the recommended number of threads for
// model inference. On hybrid Intel CPUs only the performance cores are
// worth giving to TFLite; efficiency cores slow the invoke down.
func (c CPUSpec) GetOptimalThreadCount() int {
	// Actual available CPU count matters in VMs and containers
	availableCPUs := runtime.NumCPU()

	if c.PerformanceCores > 0 {
		return min(c.PerformanceCores, availableCPUs)
	}

	// Fallback to all logical cores if we can't determine P-cores
	return cpuid.CPU.LogicalCores
}

var intelCoreRegex = regexp.MustCompile(`intel.*core.*i[3579]-(\d{5})`)

// determinePerformanceCores maps known hybrid Intel desktop models to
// their P-core counts. Unknown CPUs return 0, letting the caller fall
// back to the full logical core count.
func determinePerformanceCores(brandName string) int {
	brandName = strings.ToLower(brandName)

	matches := intelCoreRegex.FindStringSubmatch(brandName)
	if len(matches) < 2 {
		return 0
	}

	model := matches[1]
	switch {
	case strings.HasPrefix(model, "129"), strings.HasPrefix(model, "139"), strings.HasPrefix(model, "149"):
		return 8 // i9 12th-14th gen: 8 P-cores
	case strings.HasPrefix(model, "127"), strings.HasPrefix(model, "137"), strings.HasPrefix(model, "147"):
		return 8 // i7 12th-14th gen: 8 P-cores
	case strings.HasPrefix(model, "126"), strings.HasPrefix(model, "136"), strings.HasPrefix(model, "146"):
		return 6 // i5 K-series: 6 P-cores
	case strings.HasPrefix(model, "124"), strings.HasPrefix(model, "134"), strings.HasPrefix(model, "144"):
		return 6
	case strings.HasPrefix(model, "121"), strings.HasPrefix(model, "131"), strings.HasPrefix(model, "141"):
		return 4 // i3: 4 P-cores, no E-cores
	}

	return 0
}
