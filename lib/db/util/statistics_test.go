package util

import (
	"math"
	"sync"
	"testing"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStatsKnownValues(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if !floatEq(stats.Mean, 5.0) {
		t.Errorf("Expected mean 5.0, got %f", stats.Mean)
	}
	if !floatEq(stats.StdDeviation, 2.0) {
		t.Errorf("Expected std deviation 2.0, got %f", stats.StdDeviation)
	}
	if !floatEq(stats.Min, 2.0) {
		t.Errorf("Expected min 2.0, got %f", stats.Min)
	}
	if !floatEq(stats.Max, 9.0) {
		t.Errorf("Expected max 9.0, got %f", stats.Max)
	}
	if !floatEq(stats.MinMaxRatio, 2.0/9.0) {
		t.Errorf("Expected min/max ratio %f, got %f", 2.0/9.0, stats.MinMaxRatio)
	}
}

func TestStatsEmpty(t *testing.T) {
	stats := NewStats(nil)

	if stats.Mean != 0 || stats.Min != 0 || stats.Max != 0 || stats.StdDeviation != 0 {
		t.Errorf("Expected zero stats for empty input, got %+v", stats)
	}
}

func TestDistributionQuality(t *testing.T) {
	uniform := NewDistributionStats([]float64{5, 5, 5, 5})
	if !floatEq(uniform.DistributionQuality, 1.0) {
		t.Errorf("Expected quality 1.0 for uniform values, got %f", uniform.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{1, 9})
	if skewed.DistributionQuality >= uniform.DistributionQuality {
		t.Errorf("Expected skewed quality below uniform, got %f", skewed.DistributionQuality)
	}
	if skewed.DistributionQuality < 0 || skewed.DistributionQuality > 1 {
		t.Errorf("Expected quality in [0,1], got %f", skewed.DistributionQuality)
	}
}

func TestSizeHistogramAverage(t *testing.T) {
	h := NewSizeHistogram()

	if h.AverageSize() != 0 {
		t.Errorf("Expected average 0 for empty histogram, got %d", h.AverageSize())
	}

	h.AddSample(10)
	h.AddSample(20)
	h.AddSample(30)

	// the average is exact, bucketing only affects percentile estimates
	if h.AverageSize() != 20 {
		t.Errorf("Expected average 20, got %d", h.AverageSize())
	}
	if h.GetCount() != 3 {
		t.Errorf("Expected 3 samples, got %d", h.GetCount())
	}
}

func TestSizeHistogramMedianEstimate(t *testing.T) {
	h := NewSizeHistogram()

	for i := 0; i < 10; i++ {
		h.AddSample(100)
	}

	// samples of 100 bytes land in the 64..256 bucket, so the estimate
	// is that bucket's midpoint
	if got := h.MedianEstimate(); got != 160 {
		t.Errorf("Expected median estimate 160, got %d", got)
	}
}

func TestSizeHistogramPercentiles(t *testing.T) {
	h := NewSizeHistogram()

	if h.GetPercentileEstimate(50) != 0 {
		t.Errorf("Expected 0 for empty histogram")
	}

	for i := 1; i <= 100; i++ {
		h.AddSample(i * 1000)
	}

	p10 := h.GetPercentileEstimate(10)
	p50 := h.GetPercentileEstimate(50)
	p99 := h.GetPercentileEstimate(99)

	if p10 > p50 || p50 > p99 {
		t.Errorf("Expected monotonic percentiles, got p10=%d p50=%d p99=%d", p10, p50, p99)
	}
	if p10 == 0 {
		t.Errorf("Expected non-zero p10 estimate")
	}

	if h.GetPercentileEstimate(-1) != 0 {
		t.Errorf("Expected 0 for negative percentile")
	}
	if h.GetPercentileEstimate(101) != 0 {
		t.Errorf("Expected 0 for percentile above 100")
	}
}

func TestSizeHistogramDistribution(t *testing.T) {
	h := NewSizeHistogram()

	h.AddSample(10)
	h.AddSample(10)
	h.AddSample(100)
	h.AddSample(200)

	bounds, percentages := h.SizeDistribution()

	if len(percentages) != len(bounds)+1 {
		t.Errorf("Expected one more percentage than boundaries, got %d vs %d", len(percentages), len(bounds))
	}
	if !floatEq(percentages[0], 50.0) {
		t.Errorf("Expected 50%% in first bucket, got %f", percentages[0])
	}
	if !floatEq(percentages[2], 50.0) {
		t.Errorf("Expected 50%% in third bucket, got %f", percentages[2])
	}

	var sum float64
	for _, p := range percentages {
		sum += p
	}
	if !floatEq(sum, 100.0) {
		t.Errorf("Expected percentages to sum to 100, got %f", sum)
	}
}

func TestSizeHistogramReset(t *testing.T) {
	h := NewSizeHistogram()

	h.AddSample(42)
	h.AddSample(4096)
	h.Reset()

	if h.GetCount() != 0 {
		t.Errorf("Expected 0 samples after reset, got %d", h.GetCount())
	}
	if h.AverageSize() != 0 {
		t.Errorf("Expected average 0 after reset, got %d", h.AverageSize())
	}
	if h.MedianEstimate() != 0 {
		t.Errorf("Expected median 0 after reset, got %d", h.MedianEstimate())
	}
}

func TestSizeHistogramConcurrentSampling(t *testing.T) {
	h := NewSizeHistogram()

	const workers = 8
	const samplesPerWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < samplesPerWorker; i++ {
				h.AddSample((seed+1)*64 + i)
			}
		}(w)
	}
	wg.Wait()

	if h.GetCount() != workers*samplesPerWorker {
		t.Errorf("Expected %d samples, got %d", workers*samplesPerWorker, h.GetCount())
	}
}
