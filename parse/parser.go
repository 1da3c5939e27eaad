package parse

// Parser wraps a pure function from an input Context to a Result.
// Parsers are immutable; all combinators return new values.
type Parser[T any] struct {
	run func(Context) Result[T]
}

// New wraps a parse function as a Parser.
func New[T any](run func(Context) Result[T]) Parser[T] {
	return Parser[T]{run: run}
}

// Parse runs the parser against the given context.
func (p Parser[T]) Parse(ctx Context) Result[T] {
	return p.run(ctx)
}

// ParseString runs the parser against a fresh context over s.
func (p Parser[T]) ParseString(s string) Result[T] {
	return p.run(NewContext(s))
}

// Succeed returns a parser that always succeeds with value without
// consuming input.
func Succeed[T any](value T) Parser[T] {
	return New(func(ctx Context) Result[T] {
		return Success(value, ctx)
	})
}

// Failing returns a parser that always fails with the given message.
func Failing[T any](msg string) Parser[T] {
	return New(func(ctx Context) Result[T] {
		return Fail[T](ctx, Fixed(msg))
	})
}

// Lazy defers construction of a parser until first use, allowing
// recursive grammars to reference themselves.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	var cached *Parser[T]

	return New(func(ctx Context) Result[T] {
		if cached == nil {
			p := build()
			cached = &p
		}

		return cached.run(ctx)
	})
}

// Pair holds the two results of a sequence.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Seq runs a then b, producing both values.
func Seq[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return New(func(ctx Context) Result[Pair[A, B]] {
		ra := a.run(ctx)
		if !ra.IsSuccess() {
			return FailWith[Pair[A, B]](ra.Failure())
		}
		rb := b.run(ra.Next())
		if !rb.IsSuccess() {
			return FailWith[Pair[A, B]](rb.Failure())
		}

		return Success(
			Pair[A, B]{First: ra.Value(), Second: rb.Value()},
			rb.Next(),
		)
	})
}

// KeepLeft runs a then b and keeps only a's value.
func KeepLeft[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return New(func(ctx Context) Result[A] {
		ra := a.run(ctx)
		if !ra.IsSuccess() {
			return ra
		}
		rb := b.run(ra.Next())
		if !rb.IsSuccess() {
			return FailWith[A](rb.Failure())
		}

		return Success(ra.Value(), rb.Next())
	})
}

// KeepRight runs a then b and keeps only b's value.
func KeepRight[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return New(func(ctx Context) Result[B] {
		ra := a.run(ctx)
		if !ra.IsSuccess() {
			return FailWith[B](ra.Failure())
		}

		return b.run(ra.Next())
	})
}

// Choice tries each alternative from the same position and returns the
// first success. When all alternatives fail, the failure that advanced
// furthest is returned; ties are resolved in favor of the later
// alternative, which keeps error selection stable for a fixed
// alternative order.
func Choice[T any](alternatives ...Parser[T]) Parser[T] {
	return New(func(ctx Context) Result[T] {
		var best *Failure
		for _, alt := range alternatives {
			r := alt.run(ctx)
			if r.IsSuccess() {
				return r
			}
			if best == nil ||
				r.Failure().At.Offset() >= best.At.Offset() {
				best = r.Failure()
			}
		}
		if best == nil {
			return Fail[T](ctx, Fixed("no alternatives given"))
		}

		return FailWith[T](best)
	})
}

// Map transforms the success value without changing the position.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return New(func(ctx Context) Result[B] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return FailWith[B](r.Failure())
		}

		return Success(f(r.Value()), r.Next())
	})
}

// As replaces the success value with a constant.
func As[A, B any](p Parser[A], value B) Parser[B] {
	return Map(p, func(A) B { return value })
}

// FlatMap continues with the parser returned by f on the remaining
// input. Start-set information cannot be propagated through FlatMap
// because the continuation depends on the parsed value.
func FlatMap[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return New(func(ctx Context) Result[B] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return FailWith[B](r.Failure())
		}

		return f(r.Value()).run(r.Next())
	})
}

// EvalMap transforms the success value through a fallible function;
// an error becomes a parser failure at the start position.
func EvalMap[A, B any](p Parser[A], f func(A) (B, error)) Parser[B] {
	return New(func(ctx Context) Result[B] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return FailWith[B](r.Failure())
		}
		v, err := f(r.Value())
		if err != nil {
			return Fail[B](ctx, func() string { return err.Error() })
		}

		return Success(v, r.Next())
	})
}

// Collect transforms the success value through a partial function; a
// false second return becomes a parser failure.
func Collect[A, B any](p Parser[A], f func(A) (B, bool)) Parser[B] {
	return New(func(ctx Context) Result[B] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return FailWith[B](r.Failure())
		}
		v, ok := f(r.Value())
		if !ok {
			return Fail[B](ctx, Fixed("value not accepted"))
		}

		return Success(v, r.Next())
	})
}

// Option is an optional parse result.
type Option[T any] struct {
	value   T
	defined bool
}

// Some wraps a present value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, defined: true}
}

// None returns the absent value.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsDefined reports whether a value is present.
func (o Option[T]) IsDefined() bool {
	return o.defined
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.defined
}

// GetOrElse returns the value, or fallback when absent.
func (o Option[T]) GetOrElse(fallback T) T {
	if o.defined {
		return o.value
	}

	return fallback
}

// Opt makes a parser optional: it always succeeds, consuming exactly
// what the inner parser consumes on success and nothing on failure.
func Opt[T any](p Parser[T]) Parser[Option[T]] {
	return New(func(ctx Context) Result[Option[T]] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return Success(None[T](), ctx)
		}

		return Success(Some(r.Value()), r.Next())
	})
}

// Rep applies p zero or more times. It never fails; a zero-width
// success terminates the loop to avoid spinning in place.
func Rep[T any](p Parser[T]) Parser[[]T] {
	return RepBetween(p, 0, 0)
}

// RepMin applies p at least min times, failing below the bound.
func RepMin[T any](p Parser[T], min int) Parser[[]T] {
	return RepBetween(p, min, 0)
}

// RepBetween applies p repeatedly with inclusive bounds. A max of zero
// means unbounded; once max results are collected, further input is
// left unconsumed.
func RepBetween[T any](p Parser[T], min, max int) Parser[[]T] {
	return New(func(ctx Context) Result[[]T] {
		var values []T
		current := ctx
		for max == 0 || len(values) < max {
			r := p.run(current)
			if !r.IsSuccess() {
				break
			}
			if r.Next().Offset() == current.Offset() {
				break
			}
			values = append(values, r.Value())
			current = r.Next()
		}
		if len(values) < min {
			return Fail[[]T](current, func() string {
				return "expected at least " + itoa(min) +
					" repetitions, found " + itoa(len(values))
			})
		}

		return Success(values, current)
	})
}

// RepSep applies p zero or more times separated by sep.
func RepSep[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return RepSepMin(p, sep, 0)
}

// RepSepMin applies p at least min times separated by sep.
func RepSepMin[T, S any](p Parser[T], sep Parser[S], min int) Parser[[]T] {
	rest := Rep(KeepRight(sep, p))
	first := FlatMap(p, func(head T) Parser[[]T] {
		return Map(rest, func(tail []T) []T {
			return append([]T{head}, tail...)
		})
	})

	return New(func(ctx Context) Result[[]T] {
		r := first.run(ctx)
		values := r.Value()
		next := r.Next()
		if !r.IsSuccess() {
			values, next = nil, ctx
		}
		if len(values) < min {
			return Fail[[]T](ctx, func() string {
				return "expected at least " + itoa(min) +
					" repetitions, found " + itoa(len(values))
			})
		}

		return Success(values, next)
	})
}

// Not succeeds without consuming input iff p fails at the current
// position.
func Not[T any](p Parser[T]) Parser[struct{}] {
	return New(func(ctx Context) Result[struct{}] {
		if p.run(ctx).IsSuccess() {
			return Fail[struct{}](ctx, Fixed("unexpected match"))
		}

		return Success(struct{}{}, ctx)
	})
}

// Lookahead runs p without consuming input, returning its value.
func Lookahead[T any](p Parser[T]) Parser[T] {
	return New(func(ctx Context) Result[T] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return r
		}

		return Success(r.Value(), ctx)
	})
}

// Lookbehind runs p against the window of n bytes preceding the
// current offset. It never consumes input. When fewer than n bytes
// precede the offset, the window is what is available.
func Lookbehind[T any](n int, p Parser[T]) Parser[T] {
	return New(func(ctx Context) Result[T] {
		start := ctx.Offset() - n
		if start < 0 {
			start = 0
		}
		window := NewContextAt(
			ctx.Source()[start:ctx.Offset()],
			ctx.Path(),
		)
		r := p.run(window)
		if !r.IsSuccess() {
			return Fail[T](ctx, r.Failure().msg)
		}

		return Success(r.Value(), ctx)
	})
}

// Source discards the parsed value and returns the exact input slice
// the inner parser consumed.
func Source[T any](p Parser[T]) Parser[string] {
	return New(func(ctx Context) Result[string] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return FailWith[string](r.Failure())
		}

		return Success(ctx.Capture(r.Next()), r.Next())
	})
}

// Cursored pairs a parsed value with the source fragment it started
// at, for later error reporting.
type Cursored[T any] struct {
	Value    T
	Fragment Fragment
}

// WithCursor captures the start fragment alongside the parsed value.
func WithCursor[T any](p Parser[T]) Parser[Cursored[T]] {
	return New(func(ctx Context) Result[Cursored[T]] {
		r := p.run(ctx)
		if !r.IsSuccess() {
			return FailWith[Cursored[T]](r.Failure())
		}

		return Success(Cursored[T]{
			Value:    r.Value(),
			Fragment: ctx.Fragment(),
		}, r.Next())
	})
}

// WithMessage replaces the failure message of p while keeping the
// failure position.
func WithMessage[T any](p Parser[T], msg string) Parser[T] {
	return New(func(ctx Context) Result[T] {
		r := p.run(ctx)
		if r.IsSuccess() {
			return r
		}

		return Fail[T](r.Failure().At, Fixed(msg))
	})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	negative := n < 0
	if negative {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if negative {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}
