package lagerana

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects the values of a repeated float flag. The first
// value set replaces the defaults.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

func (f *FloatArrayFlags) Set(valueStr string) error {
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return err
	}

	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	f.Array = append(f.Array, value)
	return nil
}

func (f *FloatArrayFlags) String() string {
	return fmt.Sprint(f.Array)
}

// At returns the i-th value, or def when fewer values were given.
func (f *FloatArrayFlags) At(i int, def float64) float64 {
	if i < len(f.Array) {
		return f.Array[i]
	}
	return def
}

// IntervalFlag is a flag holding a "lo,hi" interval.
type IntervalFlag struct {
	Lo, Hi float64
}

func (f *IntervalFlag) Set(valueStr string) error {
	toks := strings.Split(valueStr, ",")
	if len(toks) != 2 {
		return fmt.Errorf("invalid interval %q: want lo,hi", valueStr)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(toks[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", valueStr, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(toks[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", valueStr, err)
	}
	if hi < lo {
		return fmt.Errorf("invalid interval %q: hi < lo", valueStr)
	}
	f.Lo, f.Hi = lo, hi
	return nil
}

func (f *IntervalFlag) String() string {
	return fmt.Sprintf("%g,%g", f.Lo, f.Hi)
}

// Contains reports whether lo < v < hi.
func (f *IntervalFlag) Contains(v float64) bool {
	return f.Lo < v && v < f.Hi
}
