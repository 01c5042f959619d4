package trainer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/vokabeltrainer/vokabeltrainer/internal/store"
	"github.com/vokabeltrainer/vokabeltrainer/internal/wordlist"
)

// ErrNoVocables is returned when an operation needs at least one vocable.
var ErrNoVocables = errors.New("no vocables available")

// Trainer orchestrates vocabulary management, scoring and statistics on
// top of a Store.
type Trainer struct {
	store store.Store
	log   *slog.Logger
	now   func() store.Stamp
}

// New creates a Trainer backed by st.
func New(st store.Store, log *slog.Logger) *Trainer {
	if log == nil {
		log = slog.Default()
	}
	return &Trainer{
		store: st,
		log:   log,
		now:   store.Now,
	}
}

// Add appends a new vocable pair and persists the vocabulary document.
// The id is one greater than the current maximum (1 for an empty list).
// Duplicates and empty strings are accepted as-is; no score record is
// created until the vocable is first practiced.
func (t *Trainer) Add(de, en string) (store.Vocable, error) {
	vocables, err := t.store.LoadVocables()
	if err != nil {
		return store.Vocable{}, err
	}

	next := 1
	for _, v := range vocables {
		if v.ID >= next {
			next = v.ID + 1
		}
	}

	vocable := store.Vocable{ID: next, DE: de, EN: en}
	vocables = append(vocables, vocable)

	if err := t.store.SaveVocables(vocables); err != nil {
		return store.Vocable{}, fmt.Errorf("failed to save vocables: %w", err)
	}

	t.log.Info("vocable added", "id", vocable.ID)
	return vocable, nil
}

// All returns every vocable in stored order.
func (t *Trainer) All() ([]store.Vocable, error) {
	return t.store.LoadVocables()
}

// ScoredVocable is a vocable enriched with its learning progress.
type ScoredVocable struct {
	store.Vocable
	Score         int
	LastPracticed *store.Stamp
	LastCorrect   *store.Stamp
}

// WithScores returns every vocable with its score record merged in. A
// vocable without a record reports score 0 and no timestamps. The call
// never writes either document.
func (t *Trainer) WithScores() ([]ScoredVocable, error) {
	vocables, err := t.store.LoadVocables()
	if err != nil {
		return nil, err
	}
	scores, err := t.store.LoadScores()
	if err != nil {
		return nil, err
	}

	result := make([]ScoredVocable, 0, len(vocables))
	for _, v := range vocables {
		rec := scores.Get(v.ID)
		result = append(result, ScoredVocable{
			Vocable:       v,
			Score:         rec.Score,
			LastPracticed: rec.LastPracticed,
			LastCorrect:   rec.LastCorrect,
		})
	}
	return result, nil
}

// Delete removes a vocable and its score record and persists both
// documents. Returns store.ErrNotFound if the id does not exist.
func (t *Trainer) Delete(id int) error {
	vocables, err := t.store.LoadVocables()
	if err != nil {
		return err
	}

	kept := vocables[:0]
	for _, v := range vocables {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(vocables) {
		return store.ErrNotFound
	}

	scores, err := t.store.LoadScores()
	if err != nil {
		return err
	}
	delete(scores, store.Key(id))

	if err := t.store.SaveVocables(kept); err != nil {
		return fmt.Errorf("failed to save vocables: %w", err)
	}
	if err := t.store.SaveScores(scores); err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}

	t.log.Info("vocable deleted", "id", id)
	return nil
}

// Sessions returns the quiz round history, most recent first.
func (t *Trainer) Sessions() ([]store.Session, error) {
	sessions, err := t.store.LoadSessions()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// Import extracts vocable pairs from a word-list file and adds them all.
// Returns the number of pairs added.
func (t *Trainer) Import(path string) (int, error) {
	pairs, err := wordlist.Extract(path)
	if err != nil {
		return 0, err
	}
	return t.AddAll(pairs)
}

// AddAll appends pairs with sequential ids in one save.
func (t *Trainer) AddAll(pairs []wordlist.Pair) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	vocables, err := t.store.LoadVocables()
	if err != nil {
		return 0, err
	}

	next := 1
	for _, v := range vocables {
		if v.ID >= next {
			next = v.ID + 1
		}
	}
	for _, p := range pairs {
		vocables = append(vocables, store.Vocable{ID: next, DE: p.DE, EN: p.EN})
		next++
	}

	if err := t.store.SaveVocables(vocables); err != nil {
		return 0, fmt.Errorf("failed to save vocables: %w", err)
	}

	t.log.Info("vocables imported", "count", len(pairs))
	return len(pairs), nil
}

// Band names, in display order.
const (
	BandUnpracticed = "unpracticed" // score 0
	BandBeginner    = "beginner"    // 1-9
	BandLearning    = "learning"    // 10-19
	BandAdvanced    = "advanced"    // 20-29
	BandGood        = "good"        // 30-39
	BandMaster      = "master"      // 40+
)

// BandOrder is the fixed display order of score bands.
var BandOrder = []string{BandUnpracticed, BandBeginner, BandLearning, BandAdvanced, BandGood, BandMaster}

// Band is one score range of the statistics dashboard.
type Band struct {
	Key        string
	Count      int
	Percentage int
}

// Statistics summarizes the vocabulary's learning progress.
type Statistics struct {
	Total      int
	TotalScore int
	MaxScore   int
	MinScore   int
	Bands      []Band
}

// Statistics groups all vocables into score bands with integer
// percentages of the total.
func (t *Trainer) Statistics() (Statistics, error) {
	vocables, err := t.store.LoadVocables()
	if err != nil {
		return Statistics{}, err
	}
	scores, err := t.store.LoadScores()
	if err != nil {
		return Statistics{}, err
	}

	counts := map[string]int{}
	stats := Statistics{Total: len(vocables)}
	for i, v := range vocables {
		score := scores.Get(v.ID).Score
		counts[bandFor(score)]++

		stats.TotalScore += score
		if i == 0 || score > stats.MaxScore {
			stats.MaxScore = score
		}
		if i == 0 || score < stats.MinScore {
			stats.MinScore = score
		}
	}

	for _, key := range BandOrder {
		band := Band{Key: key, Count: counts[key]}
		if stats.Total > 0 {
			band.Percentage = int(math.Round(float64(band.Count) / float64(stats.Total) * 100))
		}
		stats.Bands = append(stats.Bands, band)
	}
	return stats, nil
}

func bandFor(score int) string {
	switch {
	case score == 0:
		return BandUnpracticed
	case score <= 9:
		return BandBeginner
	case score <= 19:
		return BandLearning
	case score <= 29:
		return BandAdvanced
	case score <= 39:
		return BandGood
	default:
		return BandMaster
	}
}
