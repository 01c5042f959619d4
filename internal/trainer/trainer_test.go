package trainer

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vokabeltrainer/vokabeltrainer/internal/store"
	"github.com/vokabeltrainer/vokabeltrainer/internal/wordlist"
)

func newTestTrainer(t *testing.T) (*Trainer, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewJSONStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return New(st, slog.New(slog.NewJSONHandler(io.Discard, nil))), dir
}

func stampAt(tm time.Time) *store.Stamp {
	s := store.Stamp{Time: tm}
	return &s
}

// TestAddAssignsSequentialIDs tests that ids are strictly increasing
// starting at 1
func TestAddAssignsSequentialIDs(t *testing.T) {
	tr, _ := newTestTrainer(t)

	for i, want := range []int{1, 2, 3} {
		v, err := tr.Add("Haus", "house")
		if err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
		if v.ID != want {
			t.Errorf("Expected id %d, got %d", want, v.ID)
		}
	}
}

// TestAddContinuesFromMaxID tests that the next id is one greater than
// the current maximum, not the list length
func TestAddContinuesFromMaxID(t *testing.T) {
	tr, _ := newTestTrainer(t)

	if err := tr.store.SaveVocables([]store.Vocable{
		{ID: 1, DE: "a", EN: "b"},
		{ID: 5, DE: "c", EN: "d"},
	}); err != nil {
		t.Fatalf("SaveVocables failed: %v", err)
	}

	v, err := tr.Add("Hund", "dog")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v.ID != 6 {
		t.Errorf("Expected id 6, got %d", v.ID)
	}
}

// TestAddAcceptsDuplicatesAndEmpty tests that no uniqueness or
// non-empty constraint is applied
func TestAddAcceptsDuplicatesAndEmpty(t *testing.T) {
	tr, _ := newTestTrainer(t)

	if _, err := tr.Add("Haus", "house"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := tr.Add("Haus", "house"); err != nil {
		t.Errorf("Expected duplicate to be accepted: %v", err)
	}
	if _, err := tr.Add("", ""); err != nil {
		t.Errorf("Expected empty pair to be accepted: %v", err)
	}

	vocables, err := tr.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(vocables) != 3 {
		t.Errorf("Expected 3 vocables, got %d", len(vocables))
	}
}

// TestAddPersistsDocument tests the persisted document after a single
// add on a fresh data directory
func TestAddPersistsDocument(t *testing.T) {
	tr, dir := newTestTrainer(t)

	if _, err := tr.Add("Haus", "house"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	st, err := store.NewJSONStore(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	vocables, err := st.LoadVocables()
	if err != nil {
		t.Fatalf("LoadVocables failed: %v", err)
	}
	if len(vocables) != 1 || vocables[0] != (store.Vocable{ID: 1, DE: "Haus", EN: "house"}) {
		t.Errorf("Unexpected document content: %+v", vocables)
	}
}

// TestAddDoesNotCreateScoreRecord tests that score records are created
// lazily on the first quiz attempt, not at add time
func TestAddDoesNotCreateScoreRecord(t *testing.T) {
	tr, dir := newTestTrainer(t)

	if _, err := tr.Add("Haus", "house"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, store.FileScores)); !os.IsNotExist(err) {
		t.Error("Expected scores document to be absent after add")
	}
}

// TestWithScoresDefaults tests that vocables without a record report
// score 0 and empty timestamps, and that viewing writes nothing
func TestWithScoresDefaults(t *testing.T) {
	tr, dir := newTestTrainer(t)

	if _, err := tr.Add("Hund", "dog"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	scored, err := tr.WithScores()
	if err != nil {
		t.Fatalf("WithScores failed: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("Expected 1 vocable, got %d", len(scored))
	}
	if scored[0].Score != 0 || scored[0].LastPracticed != nil || scored[0].LastCorrect != nil {
		t.Errorf("Expected zero progress, got %+v", scored[0])
	}

	if _, err := os.Stat(filepath.Join(dir, store.FileScores)); !os.IsNotExist(err) {
		t.Error("Viewing must not create the scores document")
	}
}

// TestDelete tests removing a vocable together with its score record
func TestDelete(t *testing.T) {
	tr, _ := newTestTrainer(t)

	v, err := tr.Add("Katze", "cat")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := tr.store.SaveScores(store.Scores{
		store.Key(v.ID): {Score: 2, LastPracticed: stampAt(time.Now())},
	}); err != nil {
		t.Fatalf("SaveScores failed: %v", err)
	}

	if err := tr.Delete(v.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	vocables, err := tr.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(vocables) != 0 {
		t.Errorf("Expected no vocables, got %+v", vocables)
	}

	scores, err := tr.store.LoadScores()
	if err != nil {
		t.Fatalf("LoadScores failed: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("Expected score record to be removed, got %+v", scores)
	}
}

// TestDeleteNotFound tests the error for an unknown id
func TestDeleteNotFound(t *testing.T) {
	tr, _ := newTestTrainer(t)

	if err := tr.Delete(42); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestSessionsMostRecentFirst tests the history ordering
func TestSessionsMostRecentFirst(t *testing.T) {
	tr, _ := newTestTrainer(t)

	old := store.Session{Timestamp: store.Stamp{Time: time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)}, Total: 1}
	recent := store.Session{Timestamp: store.Stamp{Time: time.Date(2024, 2, 1, 10, 0, 0, 0, time.Local)}, Total: 2}
	if err := tr.store.SaveSessions([]store.Session{old, recent}); err != nil {
		t.Fatalf("SaveSessions failed: %v", err)
	}

	sessions, err := tr.Sessions()
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Total != 2 || sessions[1].Total != 1 {
		t.Errorf("Expected most recent first, got %+v", sessions)
	}
}

// TestAddAll tests bulk import of extracted pairs
func TestAddAll(t *testing.T) {
	tr, _ := newTestTrainer(t)

	if _, err := tr.Add("Haus", "house"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	count, err := tr.AddAll([]wordlist.Pair{
		{DE: "Hund", EN: "dog"},
		{DE: "Katze", EN: "cat"},
	})
	if err != nil {
		t.Fatalf("AddAll failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 added, got %d", count)
	}

	vocables, err := tr.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(vocables) != 3 || vocables[1].ID != 2 || vocables[2].ID != 3 {
		t.Errorf("Unexpected vocables: %+v", vocables)
	}
}

// TestStatisticsBands tests the score band breakdown and percentages
func TestStatisticsBands(t *testing.T) {
	tr, _ := newTestTrainer(t)

	vocables := []store.Vocable{
		{ID: 1, DE: "a", EN: "b"}, // unpracticed
		{ID: 2, DE: "c", EN: "d"}, // beginner
		{ID: 3, DE: "e", EN: "f"}, // learning
		{ID: 4, DE: "g", EN: "h"}, // master
	}
	if err := tr.store.SaveVocables(vocables); err != nil {
		t.Fatalf("SaveVocables failed: %v", err)
	}
	if err := tr.store.SaveScores(store.Scores{
		"2": {Score: 5},
		"3": {Score: 12},
		"4": {Score: 41},
	}); err != nil {
		t.Fatalf("SaveScores failed: %v", err)
	}

	stats, err := tr.Statistics()
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("Expected total 4, got %d", stats.Total)
	}
	if stats.TotalScore != 58 || stats.MaxScore != 41 || stats.MinScore != 0 {
		t.Errorf("Unexpected score summary: %+v", stats)
	}

	want := map[string]int{
		BandUnpracticed: 1,
		BandBeginner:    1,
		BandLearning:    1,
		BandAdvanced:    0,
		BandGood:        0,
		BandMaster:      1,
	}
	for _, band := range stats.Bands {
		if band.Count != want[band.Key] {
			t.Errorf("Band %s: expected count %d, got %d", band.Key, want[band.Key], band.Count)
		}
	}
	if stats.Bands[0].Percentage != 25 {
		t.Errorf("Expected 25%%, got %d", stats.Bands[0].Percentage)
	}
}

// TestStatisticsEmpty tests the dashboard with no vocables
func TestStatisticsEmpty(t *testing.T) {
	tr, _ := newTestTrainer(t)

	stats, err := tr.Statistics()
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Expected total 0, got %d", stats.Total)
	}
	for _, band := range stats.Bands {
		if band.Count != 0 || band.Percentage != 0 {
			t.Errorf("Expected empty band %s, got %+v", band.Key, band)
		}
	}
}
