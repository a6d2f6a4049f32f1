package evaluator

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
)

// mathRNG backs Math.random/Math.randomInt/Math.seed with a seeded PCG
// generator, grounded on the teacher's std/math module
// (pkg/parsley/evaluator/stdlib_math.go).
var (
	mathRNG   *rand.Rand
	mathRNGMu sync.Mutex
)

func init() {
	mathRNG = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func f64(v Value) (float64, bool) {
	f, _, ok := asNumber(v)
	return f, ok
}

func numArgErr(name string, v Value) error {
	return badArg(name + " requires a number, got " + string(v.Kind()))
}

func unaryFloatFn(name string, f func(float64) float64) *NativeFn {
	return NewNativeFn(name, 1, func(ec *EvalContext, args []Value) (Value, error) {
		x, ok := f64(args[0])
		if !ok {
			return nil, numArgErr(name, args[0])
		}
		return Float{Value: f(x)}, nil
	})
}

// arrayOfFloats forces every element of an Array to a number.
func arrayOfFloats(name string, v Value) ([]float64, error) {
	arr, ok := v.(Array)
	if !ok {
		return nil, badArg(name + " requires an array argument")
	}
	out := make([]float64, len(arr.Elements))
	for i, t := range arr.Elements {
		ev, err := t.Force()
		if err != nil {
			return nil, err
		}
		f, ok := f64(ev)
		if !ok {
			return nil, badArg(name + ": array element is not a number")
		}
		out[i] = f
	}
	return out, nil
}

// loadMathModule builds the Math stdlib module object (SPEC_FULL §4.7).
// The teacher's variadic (arity "1+") aggregation built-ins (min/max/sum/
// avg/product/count/median/mode/stddev/variance/range) are redesigned here
// to take a single Array argument: lazylang application is strictly unary
// everywhere (spec §3), so a variable-arity native has nowhere to curry
// from — `Math.sum xs` replaces the teacher's `sum(1, 2, 3)`.
func loadMathModule() *Object {
	fields := []Field{
		{Key: "PI", Value: ThunkOf(Float{Value: math.Pi})},
		{Key: "E", Value: ThunkOf(Float{Value: math.E})},
		{Key: "TAU", Value: ThunkOf(Float{Value: math.Pi * 2})},

		{Key: "floor", Value: ThunkOf(unaryFloatFn("Math.floor", math.Floor))},
		{Key: "ceil", Value: ThunkOf(unaryFloatFn("Math.ceil", math.Ceil))},
		{Key: "trunc", Value: ThunkOf(unaryFloatFn("Math.trunc", math.Trunc))},
		{Key: "round", Value: ThunkOf(NewNativeFn("Math.round", 1, func(ec *EvalContext, args []Value) (Value, error) {
			x, ok := f64(args[0])
			if !ok {
				return nil, numArgErr("Math.round", args[0])
			}
			return Integer{Value: int64(math.Round(x))}, nil
		}))},

		{Key: "abs", Value: ThunkOf(NewNativeFn("Math.abs", 1, func(ec *EvalContext, args []Value) (Value, error) {
			switch x := args[0].(type) {
			case Integer:
				if x.Value < 0 {
					return Integer{Value: -x.Value}, nil
				}
				return x, nil
			case Float:
				return Float{Value: math.Abs(x.Value)}, nil
			}
			return nil, numArgErr("Math.abs", args[0])
		}))},
		{Key: "sign", Value: ThunkOf(NewNativeFn("Math.sign", 1, func(ec *EvalContext, args []Value) (Value, error) {
			x, ok := f64(args[0])
			if !ok {
				return nil, numArgErr("Math.sign", args[0])
			}
			switch {
			case x > 0:
				return Integer{Value: 1}, nil
			case x < 0:
				return Integer{Value: -1}, nil
			default:
				return Integer{Value: 0}, nil
			}
		}))},
		{Key: "clamp", Value: ThunkOf(NewNativeFn("Math.clamp", 3, func(ec *EvalContext, args []Value) (Value, error) {
			x, ok1 := f64(args[0])
			lo, ok2 := f64(args[1])
			hi, ok3 := f64(args[2])
			if !ok1 || !ok2 || !ok3 {
				return nil, numArgErr("Math.clamp", args[0])
			}
			return Float{Value: math.Min(math.Max(x, lo), hi)}, nil
		}))},

		{Key: "sum", Value: ThunkOf(arrayAggFn("Math.sum", func(xs []float64) float64 {
			var s float64
			for _, x := range xs {
				s += x
			}
			return s
		}))},
		{Key: "product", Value: ThunkOf(arrayAggFn("Math.product", func(xs []float64) float64 {
			p := 1.0
			for _, x := range xs {
				p *= x
			}
			return p
		}))},
		{Key: "avg", Value: ThunkOf(arrayAggFn("Math.avg", meanOf))},
		{Key: "mean", Value: ThunkOf(arrayAggFn("Math.mean", meanOf))},
		{Key: "min", Value: ThunkOf(arrayAggFn("Math.min", func(xs []float64) float64 {
			m := xs[0]
			for _, x := range xs[1:] {
				if x < m {
					m = x
				}
			}
			return m
		}))},
		{Key: "max", Value: ThunkOf(arrayAggFn("Math.max", func(xs []float64) float64 {
			m := xs[0]
			for _, x := range xs[1:] {
				if x > m {
					m = x
				}
			}
			return m
		}))},
		{Key: "range", Value: ThunkOf(arrayAggFn("Math.range", func(xs []float64) float64 {
			lo, hi := xs[0], xs[0]
			for _, x := range xs[1:] {
				if x < lo {
					lo = x
				}
				if x > hi {
					hi = x
				}
			}
			return hi - lo
		}))},
		{Key: "median", Value: ThunkOf(arrayAggFn("Math.median", medianOf))},
		{Key: "mode", Value: ThunkOf(arrayAggFn("Math.mode", modeOf))},
		{Key: "variance", Value: ThunkOf(arrayAggFn("Math.variance", varianceOf))},
		{Key: "stddev", Value: ThunkOf(arrayAggFn("Math.stddev", func(xs []float64) float64 {
			return math.Sqrt(varianceOf(xs))
		}))},
		{Key: "count", Value: ThunkOf(NewNativeFn("Math.count", 1, func(ec *EvalContext, args []Value) (Value, error) {
			arr, ok := args[0].(Array)
			if !ok {
				return nil, badArg("Math.count requires an array argument")
			}
			return Integer{Value: int64(len(arr.Elements))}, nil
		}))},

		{Key: "random", Value: ThunkOf(NewNativeFn("Math.random", 0, func(ec *EvalContext, args []Value) (Value, error) {
			mathRNGMu.Lock()
			defer mathRNGMu.Unlock()
			return Float{Value: mathRNG.Float64()}, nil
		}))},
		{Key: "randomInt", Value: ThunkOf(NewNativeFn("Math.randomInt", 2, func(ec *EvalContext, args []Value) (Value, error) {
			lo, ok1 := args[0].(Integer)
			hi, ok2 := args[1].(Integer)
			if !ok1 || !ok2 {
				return nil, badArg("Math.randomInt requires two integers")
			}
			mathRNGMu.Lock()
			defer mathRNGMu.Unlock()
			span := hi.Value - lo.Value
			if span <= 0 {
				return lo, nil
			}
			return Integer{Value: lo.Value + mathRNG.Int64N(span)}, nil
		}))},
		{Key: "seed", Value: ThunkOf(NewNativeFn("Math.seed", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, ok := args[0].(Integer)
			if !ok {
				return nil, badArg("Math.seed requires an integer")
			}
			mathRNGMu.Lock()
			mathRNG = rand.New(rand.NewPCG(uint64(s.Value), uint64(s.Value)))
			mathRNGMu.Unlock()
			return Null{}, nil
		}))},

		{Key: "sqrt", Value: ThunkOf(unaryFloatFn("Math.sqrt", math.Sqrt))},
		{Key: "exp", Value: ThunkOf(unaryFloatFn("Math.exp", math.Exp))},
		{Key: "log", Value: ThunkOf(unaryFloatFn("Math.log", math.Log))},
		{Key: "log10", Value: ThunkOf(unaryFloatFn("Math.log10", math.Log10))},
		{Key: "pow", Value: ThunkOf(NewNativeFn("Math.pow", 2, func(ec *EvalContext, args []Value) (Value, error) {
			base, ok1 := f64(args[0])
			exp, ok2 := f64(args[1])
			if !ok1 || !ok2 {
				return nil, numArgErr("Math.pow", args[0])
			}
			return Float{Value: math.Pow(base, exp)}, nil
		}))},

		{Key: "sin", Value: ThunkOf(unaryFloatFn("Math.sin", math.Sin))},
		{Key: "cos", Value: ThunkOf(unaryFloatFn("Math.cos", math.Cos))},
		{Key: "tan", Value: ThunkOf(unaryFloatFn("Math.tan", math.Tan))},
		{Key: "asin", Value: ThunkOf(unaryFloatFn("Math.asin", math.Asin))},
		{Key: "acos", Value: ThunkOf(unaryFloatFn("Math.acos", math.Acos))},
		{Key: "atan", Value: ThunkOf(unaryFloatFn("Math.atan", math.Atan))},
		{Key: "atan2", Value: ThunkOf(NewNativeFn("Math.atan2", 2, func(ec *EvalContext, args []Value) (Value, error) {
			y, ok1 := f64(args[0])
			x, ok2 := f64(args[1])
			if !ok1 || !ok2 {
				return nil, numArgErr("Math.atan2", args[0])
			}
			return Float{Value: math.Atan2(y, x)}, nil
		}))},
		{Key: "degrees", Value: ThunkOf(unaryFloatFn("Math.degrees", func(r float64) float64 { return r * 180 / math.Pi }))},
		{Key: "radians", Value: ThunkOf(unaryFloatFn("Math.radians", func(d float64) float64 { return d * math.Pi / 180 }))},

		{Key: "hypot", Value: ThunkOf(NewNativeFn("Math.hypot", 2, func(ec *EvalContext, args []Value) (Value, error) {
			x, ok1 := f64(args[0])
			y, ok2 := f64(args[1])
			if !ok1 || !ok2 {
				return nil, numArgErr("Math.hypot", args[0])
			}
			return Float{Value: math.Hypot(x, y)}, nil
		}))},
		{Key: "lerp", Value: ThunkOf(NewNativeFn("Math.lerp", 3, func(ec *EvalContext, args []Value) (Value, error) {
			a, ok1 := f64(args[0])
			b, ok2 := f64(args[1])
			t, ok3 := f64(args[2])
			if !ok1 || !ok2 || !ok3 {
				return nil, numArgErr("Math.lerp", args[0])
			}
			return Float{Value: a + (b-a)*t}, nil
		}))},
	}
	return NewObject(fields)
}

func meanOf(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func medianOf(xs []float64) float64 {
	sorted := append([]float64{}, xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// modeOf returns the most frequent value, breaking ties toward the value
// that occurs first in xs.
func modeOf(xs []float64) float64 {
	counts := make(map[float64]int, len(xs))
	for _, x := range xs {
		counts[x]++
	}
	best, bestCount := xs[0], 0
	for _, x := range xs {
		if counts[x] > bestCount {
			best, bestCount = x, counts[x]
		}
	}
	return best
}

func varianceOf(xs []float64) float64 {
	m := meanOf(xs)
	var s float64
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	return s / float64(len(xs))
}

// arrayAggFn wraps a []float64 -> float64 aggregation as a single-Array-
// argument native, erroring on an empty array.
func arrayAggFn(name string, agg func([]float64) float64) *NativeFn {
	return NewNativeFn(name, 1, func(ec *EvalContext, args []Value) (Value, error) {
		xs, err := arrayOfFloats(name, args[0])
		if err != nil {
			return nil, err
		}
		if len(xs) == 0 {
			return nil, badArg(name + ": array must not be empty")
		}
		return Float{Value: agg(xs)}, nil
	})
}
