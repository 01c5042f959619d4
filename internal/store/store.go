package store

import "errors"

// ErrNotFound is returned when a vocable id does not exist.
var ErrNotFound = errors.New("vocable not found")

// Store persists the trainer's three collections: the vocabulary list,
// the score map and the quiz session history. Loading a collection that
// has never been saved returns an empty collection, not an error. Every
// save replaces the whole collection.
type Store interface {
	LoadVocables() ([]Vocable, error)
	SaveVocables([]Vocable) error

	LoadScores() (Scores, error)
	SaveScores(Scores) error

	LoadSessions() ([]Session, error)
	SaveSessions([]Session) error

	Close() error
}
