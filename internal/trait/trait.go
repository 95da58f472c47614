// Package trait implements observable widget state values and bidirectional
// links between them. Links are how two widgets keep a shared value in sync:
// setting either side propagates to the other, and setting a trait to its
// current value is a no-op, which keeps propagation from echoing forever.
package trait

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Linkable is the type-erased view of a trait used when pairing traits
// between application instances and when mirroring them over a link hub.
type Linkable interface {
	// PairWith links the trait bidirectionally with a peer of the same
	// concrete type, pushing the receiver's value to the peer first.
	// The returned function removes the link.
	PairWith(peer Linkable) (func(), error)
	// Encode returns the current value as a string.
	Encode() string
	// Decode parses and sets the value from its string form.
	Decode(s string) error
	// ObserveAny registers an observer ignoring the typed values.
	ObserveAny(fn func())
}

// Trait holds a value of a comparable type plus its observers.
type Trait[T comparable] struct {
	value     T
	observers []func(old, new T)
}

func New[T comparable](v T) *Trait[T] {
	return &Trait[T]{value: v}
}

func (t *Trait[T]) Get() T { return t.value }

// Set stores a new value and fires observers. Setting the current value
// does nothing.
func (t *Trait[T]) Set(v T) {
	if v == t.value {
		return
	}
	old := t.value
	t.value = v
	for _, fn := range t.observers {
		fn(old, v)
	}
}

// Observe registers a callback fired after every value change.
func (t *Trait[T]) Observe(fn func(old, new T)) {
	t.observers = append(t.observers, fn)
}

func (t *Trait[T]) ObserveAny(fn func()) {
	t.Observe(func(T, T) { fn() })
}

func (t *Trait[T]) Encode() string {
	switch v := any(t.value).(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func (t *Trait[T]) Decode(s string) error {
	var v T
	switch p := any(&v).(type) {
	case *int:
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "decode %q as int", s)
		}
		*p = n
	case *float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Wrapf(err, "decode %q as float", s)
		}
		*p = f
	case *bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Wrapf(err, "decode %q as bool", s)
		}
		*p = b
	case *string:
		*p = s
	default:
		return errors.Errorf("unsupported trait type %T", v)
	}
	t.Set(v)
	return nil
}

func (t *Trait[T]) PairWith(peer Linkable) (func(), error) {
	p, ok := peer.(*Trait[T])
	if !ok {
		return nil, errors.Errorf("cannot link %T with %T", t, peer)
	}
	l := Bind(t, p)
	return l.Release, nil
}

// Link is an active bidirectional binding between two traits.
type Link[T comparable] struct {
	a, b   *Trait[T]
	active bool
}

// Bind links a and b, pushing a's current value to b. Changes on either
// side then mirror to the other until Release.
func Bind[T comparable](a, b *Trait[T]) *Link[T] {
	l := &Link[T]{a: a, b: b, active: true}
	a.Observe(func(_, v T) {
		if l.active {
			b.Set(v)
		}
	})
	b.Observe(func(_, v T) {
		if l.active {
			a.Set(v)
		}
	})
	b.Set(a.Get())
	return l
}

// Release deactivates the link; both traits keep their current values and
// move independently afterwards.
func (l *Link[T]) Release() { l.active = false }
