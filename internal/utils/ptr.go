// Package utils has pointer helpers for the optional fields on documents and users.
package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *v, or fallback when v is nil.
func Deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// Clone copies the value behind v so the result shares no memory with it. Nil stays nil.
func Clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// NonBlank trims s and returns nil when nothing is left.
func NonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Equal reports whether both pointers are nil or point at equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
