package chart

import (
	"sort"
	"time"

	"github.com/GGulati/IndexFunds/internal/models"
	"github.com/GGulati/IndexFunds/internal/services/rates"
)

// calendarDate truncates a UTC epoch timestamp to its day string, the key
// space exchange-rate observations are published in.
func calendarDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

// utcTimestamps shifts a series' exchange-local timestamps onto the UTC
// axis. Samples from different exchanges only become comparable instants
// after this shift.
func utcTimestamps(series *models.PriceSeries) []int64 {
	out := make([]int64, len(series.Timestamps))
	for i, ts := range series.Timestamps {
		out[i] = ts - series.UTCOffsetSeconds
	}
	return out
}

// buildTimeline forms the deduplicated ascending union of all UTC
// timestamp sets, plus a timestamp→index map so per-symbol alignment is
// a lookup rather than a search. An index-by-index merge would pair up
// unrelated trading days across exchanges with different holidays.
func buildTimeline(timestampSets [][]int64) ([]int64, map[int64]int) {
	seen := make(map[int64]struct{})
	for _, set := range timestampSets {
		for _, ts := range set {
			seen[ts] = struct{}{}
		}
	}

	timeline := make([]int64, 0, len(seen))
	for ts := range seen {
		timeline = append(timeline, ts)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i] < timeline[j] })

	index := make(map[int64]int, len(timeline))
	for i, ts := range timeline {
		index[ts] = i
	}
	return timeline, index
}

// alignValues places a symbol's closes onto the shared timeline. Slots
// with no observation at that exact instant stay null.
func alignValues(index map[int64]int, timelineLen int, utcTS []int64, closes []float64) []models.NullFloat64 {
	values := make([]models.NullFloat64, timelineLen)
	for i := range values {
		values[i] = models.Null()
	}
	for i, ts := range utcTS {
		if pos, ok := index[ts]; ok {
			values[pos] = models.NullFloat64(closes[i])
		}
	}
	return values
}

// forwardFill carries the last observed value into later null slots.
// Slots before the first observation stay null: the instrument had no
// data yet at those instants, and back-filling would fabricate history.
func forwardFill(values []models.NullFloat64) {
	last := models.Null()
	for i, v := range values {
		if v.IsNull() {
			values[i] = last
		} else {
			last = v
		}
	}
}

// convertToUSD divides each value by the exchange rate in effect on that
// value's own calendar date. Reports whether any point fell back to the
// identity rate for lack of an observation.
func convertToUSD(values []models.NullFloat64, timeline []int64, rateSeries *models.ExchangeRateSeries) (degraded bool) {
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		rate, deg := rates.RateForDate(rateSeries, calendarDate(timeline[i]))
		if deg {
			degraded = true
		}
		values[i] = models.NullFloat64(float64(v) / rate)
	}
	return degraded
}

// percentBasis rescales values so the first non-null entry is 100. The
// base is captured once, after any currency conversion, so later points
// express relative performance against the window's start.
func percentBasis(values []models.NullFloat64) {
	var base float64
	found := false
	for _, v := range values {
		if !v.IsNull() {
			base = float64(v)
			found = true
			break
		}
	}
	if !found || base == 0 {
		return
	}
	for i, v := range values {
		if !v.IsNull() {
			values[i] = models.NullFloat64(float64(v) / base * 100)
		}
	}
}

// windowStats returns the minimum and maximum of the non-null values.
// These are window-local figures, not the provider's 52-week numbers.
func windowStats(values []models.NullFloat64) (low, high models.NullFloat64) {
	low, high = models.Null(), models.Null()
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if low.IsNull() || v < low {
			low = v
		}
		if high.IsNull() || v > high {
			high = v
		}
	}
	return low, high
}
