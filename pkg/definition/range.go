package definition

import (
	"encoding/json"
	"fmt"
	"math"
)

// Range is either a fixed count (Min == Max) or an inclusive [Min, Max] interval.
// It is used for wait durations (milliseconds), repeat iterations and retry attempts.
type Range struct {
	Min int
	Max int
}

// Fixed returns a range holding a single value.
func Fixed(n int) *Range { return &Range{Min: n, Max: n} }

// Between returns an inclusive range.
func Between(min, max int) *Range { return &Range{Min: min, Max: max} }

// IsFixed reports whether the range holds a single value.
func (r Range) IsFixed() bool { return r.Min == r.Max }

// Pick returns a value drawn uniformly from the range using random, which must
// return values in [0, 1).
func (r Range) Pick(random func() float64) int {
	if r.IsFixed() {
		return r.Min
	}
	n := r.Min + int(math.Floor(random()*float64(r.Max-r.Min+1)))
	if n > r.Max {
		return r.Max
	}
	return n
}

func (r Range) String() string {
	if r.IsFixed() {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d, %d", r.Min, r.Max)
}

// MarshalJSON writes fixed ranges as a number and intervals as a pair.
func (r Range) MarshalJSON() ([]byte, error) {
	if r.IsFixed() {
		return json.Marshal(r.Min)
	}
	return json.Marshal([]int{r.Min, r.Max})
}

// MarshalYAML mirrors MarshalJSON.
func (r Range) MarshalYAML() (any, error) {
	if r.IsFixed() {
		return r.Min, nil
	}
	return []int{r.Min, r.Max}, nil
}

// ParseRange converts a decoded number or two-element array into a Range.
func ParseRange(raw any) (Range, error) {
	if n, ok := toInt(raw); ok {
		return Range{Min: n, Max: n}, nil
	}
	items, ok := raw.([]any)
	if !ok || len(items) != 2 {
		return Range{}, fmt.Errorf("expected an integer or an array of two integers")
	}
	min, okMin := toInt(items[0])
	max, okMax := toInt(items[1])
	if !okMin || !okMax {
		return Range{}, fmt.Errorf("expected an array of two integers")
	}
	return Range{Min: min, Max: max}, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(raw any) (int, bool) {
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
