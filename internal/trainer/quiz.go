package trainer

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/vokabeltrainer/vokabeltrainer/internal/store"
)

// Direction says which language is shown and which is expected.
type Direction string

const (
	DirectionDEEN Direction = "de_en" // show German, expect English
	DirectionENDE Direction = "en_de" // show English, expect German
)

// Question is one prompt of a quiz round.
type Question struct {
	Vocable   store.Vocable
	Direction Direction
	Index     int
	Total     int
}

// Prompt returns the word shown to the learner.
func (q Question) Prompt() string {
	if q.Direction == DirectionDEEN {
		return q.Vocable.DE
	}
	return q.Vocable.EN
}

// Expected returns the translation the learner has to type.
func (q Question) Expected() string {
	if q.Direction == DirectionDEEN {
		return q.Vocable.EN
	}
	return q.Vocable.DE
}

// Quiz is one round of questions. Scores are persisted after every
// answer; the session record is persisted once when the round finishes.
type Quiz struct {
	store     store.Store
	log       *slog.Logger
	rng       *rand.Rand
	now       func() store.Stamp
	selected  []store.Vocable
	scores    store.Scores
	index     int
	direction Direction
	results   []store.Result
}

// NewQuiz starts a round of count questions. A count of 1 picks a single
// vocable uniformly at random; larger counts select by practice priority
// (lowest score first, least recently practiced first) and are capped at
// the number of vocables available. Returns ErrNoVocables when the
// vocabulary is empty; nothing is written in that case.
func (t *Trainer) NewQuiz(count int, rng *rand.Rand) (*Quiz, error) {
	vocables, err := t.store.LoadVocables()
	if err != nil {
		return nil, err
	}
	if len(vocables) == 0 {
		return nil, ErrNoVocables
	}
	scores, err := t.store.LoadScores()
	if err != nil {
		return nil, err
	}

	var selected []store.Vocable
	if count <= 1 {
		selected = []store.Vocable{vocables[rng.Intn(len(vocables))]}
	} else {
		selected = selectByPriority(vocables, scores, count, rng)
	}

	q := &Quiz{
		store:    t.store,
		log:      t.log,
		rng:      rng,
		now:      t.now,
		selected: selected,
		scores:   scores,
	}
	q.direction = q.randomDirection()
	return q, nil
}

// selectByPriority orders vocables by score ascending, then least
// recently practiced (never practiced first), with a random tiebreak,
// and returns the first count of them.
func selectByPriority(vocables []store.Vocable, scores store.Scores, count int, rng *rand.Rand) []store.Vocable {
	type candidate struct {
		vocable   store.Vocable
		score     int
		practiced time.Time
		tiebreak  float64
	}

	candidates := make([]candidate, 0, len(vocables))
	for _, v := range vocables {
		rec := scores.Get(v.ID)
		c := candidate{vocable: v, score: rec.Score, tiebreak: rng.Float64()}
		if rec.LastPracticed != nil {
			c.practiced = rec.LastPracticed.Time
		}
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		if !candidates[i].practiced.Equal(candidates[j].practiced) {
			return candidates[i].practiced.Before(candidates[j].practiced)
		}
		return candidates[i].tiebreak < candidates[j].tiebreak
	})

	if count > len(candidates) {
		count = len(candidates)
	}
	selected := make([]store.Vocable, count)
	for i := range selected {
		selected[i] = candidates[i].vocable
	}
	return selected
}

func (q *Quiz) randomDirection() Direction {
	if q.rng.Intn(2) == 0 {
		return DirectionDEEN
	}
	return DirectionENDE
}

// Done reports whether every question has been answered.
func (q *Quiz) Done() bool {
	return q.index >= len(q.selected)
}

// Current returns the question waiting for an answer.
func (q *Quiz) Current() Question {
	return Question{
		Vocable:   q.selected[q.index],
		Direction: q.direction,
		Index:     q.index,
		Total:     len(q.selected),
	}
}

// Answer checks the typed text against the expected translation, updates
// the score record and saves the score document before returning. The
// comparison is byte-exact: case-sensitive and without trimming. A
// correct answer increments the score and sets both timestamps; a wrong
// one only sets last_practiced.
func (q *Quiz) Answer(text string) (store.Result, error) {
	if q.Done() {
		return store.Result{}, errors.New("quiz round already finished")
	}

	question := q.Current()
	correct := text == question.Expected()

	now := q.now()
	key := store.Key(question.Vocable.ID)
	rec := q.scores[key]
	if rec == nil {
		rec = &store.ScoreRecord{}
		q.scores[key] = rec
	}
	rec.LastPracticed = &now
	if correct {
		rec.Score++
		rec.LastCorrect = &now
	}

	if err := q.store.SaveScores(q.scores); err != nil {
		return store.Result{}, fmt.Errorf("failed to save scores: %w", err)
	}

	result := store.Result{
		VocableID:     question.Vocable.ID,
		German:        question.Vocable.DE,
		English:       question.Vocable.EN,
		Direction:     string(question.Direction),
		UserAnswer:    text,
		CorrectAnswer: question.Expected(),
		WasCorrect:    correct,
	}
	q.results = append(q.results, result)

	q.index++
	if !q.Done() {
		q.direction = q.randomDirection()
	}
	return result, nil
}

// Results returns the outcomes of all answered questions.
func (q *Quiz) Results() []store.Result {
	return q.results
}

// CorrectCount returns how many answers were correct so far.
func (q *Quiz) CorrectCount() int {
	count := 0
	for _, r := range q.results {
		if r.WasCorrect {
			count++
		}
	}
	return count
}

// Finish appends the completed round to the session history and returns
// the session record. The round must be done.
func (q *Quiz) Finish() (store.Session, error) {
	if !q.Done() {
		return store.Session{}, errors.New("quiz round not finished")
	}

	session := store.Session{
		Timestamp: q.now(),
		Total:     len(q.results),
		Correct:   q.CorrectCount(),
		Results:   q.results,
	}

	sessions, err := q.store.LoadSessions()
	if err != nil {
		return store.Session{}, err
	}
	sessions = append(sessions, session)
	if err := q.store.SaveSessions(sessions); err != nil {
		return store.Session{}, fmt.Errorf("failed to save sessions: %w", err)
	}

	q.log.Info("quiz round finished", "total", session.Total, "correct", session.Correct)
	return session, nil
}
