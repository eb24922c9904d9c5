// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

// Opt is an explicit "unknown" marker for optional scalar fields. Producers
// publish partial entities; an unset Opt means "this producer said nothing
// about the field" and must never clear existing state on merge.
type Opt[T any] struct {
	val T
	set bool
}

// Some wraps a known value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{val: v, set: true}
}

// None is the unknown marker; identical to the zero value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// FromPtr converts a nullable pointer (the usual wire decoding shape) into
// an Opt.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return Opt[T]{}
	}
	return Some(*p)
}

// IsSome reports whether a value is present.
func (o Opt[T]) IsSome() bool {
	return o.set
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.val, o.set
}

// Or returns the value, or fallback when unknown.
func (o Opt[T]) Or(fallback T) T {
	if o.set {
		return o.val
	}
	return fallback
}

// Merge returns incoming when it is present, otherwise keeps o. This is the
// field-level rule behind every partial update in the runtime.
func (o Opt[T]) Merge(incoming Opt[T]) Opt[T] {
	if incoming.set {
		return incoming
	}
	return o
}
