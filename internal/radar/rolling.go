package radar

import "math"

// Rolling-window helpers over optional series. Windows are right-aligned:
// the value at index i covers vals[i-window+1 .. i]. A position yields a
// value only when the window holds at least minPeriods defined entries;
// otherwise it stays nil.

// rollingMean computes the rolling arithmetic mean.
func rollingMean(vals []*float64, window, minPeriods int) []*float64 {
	if minPeriods < 1 {
		minPeriods = 1
	}

	out := make([]*float64, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}

		sum := 0.0
		count := 0
		for j := lo; j <= i; j++ {
			if vals[j] == nil {
				continue
			}
			sum += *vals[j]
			count++
		}

		if count >= minPeriods {
			mean := sum / float64(count)
			out[i] = &mean
		}
	}
	return out
}

// rollingStd computes the rolling population standard deviation
// (normalized by N, not N-1).
func rollingStd(vals []*float64, window, minPeriods int) []*float64 {
	if minPeriods < 1 {
		minPeriods = 1
	}

	out := make([]*float64, len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}

		sum := 0.0
		count := 0
		for j := lo; j <= i; j++ {
			if vals[j] == nil {
				continue
			}
			sum += *vals[j]
			count++
		}
		if count < minPeriods {
			continue
		}

		mean := sum / float64(count)
		sq := 0.0
		for j := lo; j <= i; j++ {
			if vals[j] == nil {
				continue
			}
			d := *vals[j] - mean
			sq += d * d
		}

		std := math.Sqrt(sq / float64(count))
		out[i] = &std
	}
	return out
}

// meanDefined averages the defined entries of a series. Returns nil when
// every entry is missing.
func meanDefined(vals []*float64) *float64 {
	sum := 0.0
	count := 0
	for _, v := range vals {
		if v == nil {
			continue
		}
		sum += *v
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
