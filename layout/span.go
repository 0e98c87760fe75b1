package layout

import (
	"strconv"
	"strings"

	"github.com/bearlytools/bffl/errors"
)

// Span selects elements of a Dimensioned layout with start:stop:step semantics.
// Negative Start and Stop count from the end. A Step that was not given means 1.
type Span struct {
	Start, Stop, Step int
	// HasStart and HasStop report if Start and Stop were given. When not given they
	// default to the first and last element in the direction of Step.
	HasStart, HasStop bool
	// HasStep reports if Step was given. A given Step must not be 0.
	HasStep bool
}

// Range is the span start:stop.
func Range(start, stop int) Span {
	return Span{Start: start, Stop: stop, HasStart: true, HasStop: true}
}

// RangeStep is the span start:stop:step. Indices() rejects a step of 0.
func RangeStep(start, stop, step int) Span {
	return Span{Start: start, Stop: stop, Step: step, HasStart: true, HasStop: true, HasStep: true}
}

// From is the span start:.
func From(start int) Span {
	return Span{Start: start, HasStart: true}
}

// To is the span :stop.
func To(stop int) Span {
	return Span{Stop: stop, HasStop: true}
}

// ParseSpan parses "start:stop" or "start:stop:step", where any component may be empty.
func ParseSpan(s string) (Span, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Span{}, errors.Value("", s, "expected start:stop[:step], got %q", s)
	}

	var sp Span
	conv := func(p string) (int, bool, error) {
		p = strings.TrimSpace(p)
		if p == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false, errors.Value("", s, "bad slice component %q", p)
		}
		return n, true, nil
	}

	var err error
	if sp.Start, sp.HasStart, err = conv(parts[0]); err != nil {
		return Span{}, err
	}
	if sp.Stop, sp.HasStop, err = conv(parts[1]); err != nil {
		return Span{}, err
	}
	if len(parts) == 3 {
		if sp.Step, sp.HasStep, err = conv(parts[2]); err != nil {
			return Span{}, err
		}
		if sp.HasStep && sp.Step == 0 {
			return Span{}, errors.Value("", s, "slice step cannot be zero")
		}
	}
	return sp, nil
}

// String renders the span as start:stop[:step].
func (s Span) String() string {
	var b strings.Builder
	if s.HasStart {
		b.WriteString(strconv.Itoa(s.Start))
	}
	b.WriteByte(':')
	if s.HasStop {
		b.WriteString(strconv.Itoa(s.Stop))
	}
	if s.Step != 1 && (s.HasStep || s.Step != 0) {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(s.Step))
	}
	return b.String()
}

// Indices resolves the span against dim elements and returns the selected indices.
func (s Span) Indices(dim int) ([]int, error) {
	if dim < 0 {
		return nil, errors.Value("", dim, "dimension must be >= 0, got %d", dim)
	}
	if s.HasStep && s.Step == 0 {
		return nil, errors.Value("", s.String(), "slice step cannot be zero")
	}
	step := s.Step
	if step == 0 {
		step = 1
	}

	lower, upper := 0, dim
	if step < 0 {
		lower, upper = -1, dim-1
	}

	clamp := func(v int, given bool, def int) int {
		if !given {
			return def
		}
		if v < 0 {
			v += dim
			if v < lower {
				v = lower
			}
			return v
		}
		if v > upper {
			v = upper
		}
		return v
	}

	var start, stop int
	if step < 0 {
		start = clamp(s.Start, s.HasStart, upper)
		stop = clamp(s.Stop, s.HasStop, lower)
	} else {
		start = clamp(s.Start, s.HasStart, lower)
		stop = clamp(s.Stop, s.HasStop, upper)
	}

	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out, nil
}
