package spreadsheet

import (
	"iter"
	"strings"
)

// Aggregate folds the values of a range into one number.
type Aggregate func(values iter.Seq[Value]) float64

// aggregates holds the only functions a formula may call
var aggregates = map[string]Aggregate{
	"SUM":     SUM,
	"AVERAGE": AVERAGE,
	"COUNT":   COUNT,
}

// LookupAggregate finds an aggregate by name, case-insensitively.
func LookupAggregate(name string) (Aggregate, bool) {
	fn, ok := aggregates[strings.ToUpper(name)]
	return fn, ok
}

// AggregateFromHint picks the aggregate named in a free-form hint such as
// "AVERAGE(A1:A3)". AVERAGE wins over COUNT, and anything unrecognized
// falls back to SUM.
func AggregateFromHint(hint string) (string, Aggregate) {
	upper := strings.ToUpper(hint)
	switch {
	case strings.Contains(upper, "AVERAGE"):
		return "AVERAGE", AVERAGE
	case strings.Contains(upper, "COUNT"):
		return "COUNT", COUNT
	}
	return "SUM", SUM
}

// SUM adds every numeric value. text, errors and absent cells add nothing.
func SUM(values iter.Seq[Value]) float64 {
	sum := 0.0
	for v := range values {
		if n, ok := v.Number(); ok {
			sum += n
		}
	}
	return sum
}

// AVERAGE divides the numeric sum by the numeric count, and is 0 when the
// range holds no numbers.
func AVERAGE(values iter.Seq[Value]) float64 {
	sum, count := 0.0, 0
	for v := range values {
		if n, ok := v.Number(); ok {
			sum += n
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// COUNT counts present, non-empty cells: numbers, non-empty text, and
// formula cells showing #ERROR.
func COUNT(values iter.Seq[Value]) float64 {
	count := 0
	for v := range values {
		switch {
		case v.IsNumber(), v.IsError():
			count++
		case v.IsText():
			if s, _ := v.Text(); s != "" {
				count++
			}
		}
	}
	return float64(count)
}

// rangeValues yields the values of present cells inside rng
func rangeValues(r Resolver, rng RangeAddress) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, c := range r.CellsIn(rng) {
			v, ok := r.Resolve(c)
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}
