// Package strstore is the append-only storage for lexed string literals.
// The lexer decodes a string literal's escapes once and hands the resulting
// bytes to a Store, getting back a Handle it can embed directly in a Token;
// nothing downstream ever re-decodes the literal.
package strstore

// Store is an append-only buffer of decoded string-literal payloads.
type Store struct {
	values []string
}

// Handle identifies a string previously interned into a Store.
type Handle int

// Intern appends s and returns a Handle that retrieves it via Get.
func (s *Store) Intern(value string) Handle {
	s.values = append(s.values, value)
	return Handle(len(s.values) - 1)
}

// Get returns the string a Handle was created with.
func (s *Store) Get(h Handle) string {
	return s.values[h]
}

// Len reports how many strings have been interned.
func (s *Store) Len() int {
	return len(s.values)
}
