// Package domain contains the core entities of the flashcard generator:
// the card record produced by the language model and the validation rules
// that gate a record's entry into an accumulated deck.
//
// Entities in this package have no dependencies on external services or
// infrastructure. A Card is immutable once it has been appended to a
// generation result; nothing in the system mutates an accumulated card.
package domain
