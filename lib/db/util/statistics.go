// Package util
//
// This file provides estimators for value-size and namespace-balance
// reporting. Engines call these from their GetInfo implementations, so the
// estimators favor constant memory over exactness: sizes are counted into
// exponentially growing buckets instead of being retained individually.
package util

import (
	"math"
	"sort"
	"sync"
)

// ----------------------------------------------------------------------------
// Sample statistics
// ----------------------------------------------------------------------------

// Stats summarizes a slice of float64 samples.
type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes mean, min, max, population standard deviation and the
// min/max ratio of the given samples. An empty slice yields the zero value.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	s := Stats{Min: values[0], Max: values[0]}

	var sum float64
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(values))

	var squares float64
	for _, v := range values {
		d := v - s.Mean
		squares += d * d
	}
	s.StdDeviation = math.Sqrt(squares / float64(len(values)))

	s.MinMaxRatio = 1.0
	if s.Max > 0 {
		s.MinMaxRatio = s.Min / s.Max
	}

	return s
}

// DistributionStats extends Stats with a single quality score for how evenly
// the samples are spread.
type DistributionStats struct {
	Stats
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats scores how evenly values are distributed, e.g. how
// balanced the namespaces of a store are. The score combines the coefficient
// of variation with the min/max ratio and lies in [0, 1], where 1 means
// perfectly even.
func NewDistributionStats(sizes []float64) DistributionStats {
	stats := NewStats(sizes)

	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5,
	}
}

// ----------------------------------------------------------------------------
// SizeHistogram
// ----------------------------------------------------------------------------

// Bucket boundaries grow by a factor of four per bucket, covering 16 bytes
// up to 4 GB in fifteen steps. Samples above the last boundary land in one
// final overflow bucket.
const (
	histogramBase    = 16
	histogramBuckets = 16
)

// SizeHistogram tracks a distribution of byte sizes in fixed memory.
// It trades precision for footprint: all estimators interpolate within
// bucket boundaries rather than reporting exact sample values.
type SizeHistogram struct {
	mu      sync.RWMutex
	bounds  []int   // upper bound of each bucket except the overflow bucket
	counts  []int64 // samples per bucket, len(bounds)+1
	samples int64
	total   int64 // sum of all sampled sizes
}

// NewSizeHistogram creates a histogram with the default byte-to-gigabyte
// bucket layout.
func NewSizeHistogram() *SizeHistogram {
	bounds := make([]int, histogramBuckets-1)
	for i := range bounds {
		bounds[i] = histogramBase << (2 * i)
	}
	return &SizeHistogram{
		bounds: bounds,
		counts: make([]int64, histogramBuckets),
	}
}

// AddSample counts a size into its bucket.
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) AddSample(size int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.counts[h.bucketFor(size)]++
	h.samples++
	h.total += int64(size)
}

// bucketFor returns the index of the bucket a size falls into.
// Caller must hold the lock.
func (h *SizeHistogram) bucketFor(size int) int {
	return sort.SearchInts(h.bounds, size)
}

// GetCount returns the total number of samples
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) GetCount() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.samples
}

// AverageSize returns the exact mean of all sampled sizes. Unlike the
// percentile estimators this does not lose precision to bucketing.
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) AverageSize() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.samples == 0 {
		return 0
	}
	return int(h.total / h.samples)
}

// MedianEstimate estimates the median sample size.
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) MedianEstimate() int {
	return h.GetPercentileEstimate(50)
}

// GetPercentileEstimate estimates the size at the given percentile (0-100).
// The estimate is the midpoint of the bucket the percentile falls into.
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) GetPercentileEstimate(percentile int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.samples == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.samples) * float64(percentile) / 100.0))
	if target < 1 {
		target = 1
	}

	var seen int64
	for i, count := range h.counts {
		seen += count
		if seen >= target {
			return h.bucketMidpoint(i)
		}
	}

	// all buckets together always cover every sample
	return int(h.total / h.samples)
}

// bucketMidpoint returns the size estimate for a bucket index.
// Caller must hold the lock.
func (h *SizeHistogram) bucketMidpoint(i int) int {
	switch {
	case i == 0:
		return h.bounds[0] / 2
	case i < len(h.bounds):
		return (h.bounds[i-1] + h.bounds[i]) / 2
	default:
		// overflow bucket, estimate as twice the last boundary
		return h.bounds[len(h.bounds)-1] * 2
	}
}

// SizeDistribution returns the bucket boundaries and the percentage of
// samples in each bucket (the last percentage covers the overflow bucket).
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) SizeDistribution() ([]int, []float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	percentages := make([]float64, len(h.counts))
	if h.samples == 0 {
		return h.bounds, percentages
	}

	for i, count := range h.counts {
		percentages[i] = float64(count) * 100.0 / float64(h.samples)
	}
	return h.bounds, percentages
}

// Reset clears all histogram data
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = 0
	h.total = 0
	for i := range h.counts {
		h.counts[i] = 0
	}
}
