package store

import (
	"fmt"
	"strconv"
	"time"
)

// StampLayout is the timestamp format used in the persisted documents:
// zero-padded day.month.year with a 24-hour clock, local time.
const StampLayout = "02.01.2006 15:04:05"

// Stamp is a point in time that serializes as "DD.MM.YYYY HH:MM:SS".
type Stamp struct {
	time.Time
}

// Now returns the current local time as a Stamp.
func Now() Stamp {
	return Stamp{time.Now()}
}

func (s Stamp) String() string {
	return s.Format(StampLayout)
}

func (s Stamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.Format(StampLayout) + `"`), nil
}

// UnmarshalJSON accepts the document format and JSON null. Older score
// documents contain null timestamps for records created at add time.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", raw)
	}
	t, err := time.ParseInLocation(StampLayout, raw[1:len(raw)-1], time.Local)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp: %w", err)
	}
	s.Time = t
	return nil
}

// Vocable is one German-English word pair with a stable integer id.
type Vocable struct {
	ID int    `json:"id"`
	DE string `json:"de"`
	EN string `json:"en"`
}

// ScoreRecord tracks learning progress for one vocable. LastCorrect is
// absent until the vocable has been answered correctly at least once.
type ScoreRecord struct {
	Score         int    `json:"score"`
	LastPracticed *Stamp `json:"last_practiced"`
	LastCorrect   *Stamp `json:"last_correct,omitempty"`
}

// Scores maps the decimal text form of a vocable id to its score record.
type Scores map[string]*ScoreRecord

// Key returns the map key for a vocable id.
func Key(id int) string {
	return strconv.Itoa(id)
}

// Get returns a copy of the record for id, or a zero record if the
// vocable has never been practiced.
func (s Scores) Get(id int) ScoreRecord {
	if rec, ok := s[Key(id)]; ok && rec != nil {
		return *rec
	}
	return ScoreRecord{}
}

// Result is the outcome of a single quiz question.
type Result struct {
	VocableID     int    `json:"vocable_id"`
	German        string `json:"german"`
	English       string `json:"english"`
	Direction     string `json:"direction"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	WasCorrect    bool   `json:"was_correct"`
}

// Session is one completed quiz round.
type Session struct {
	Timestamp Stamp    `json:"timestamp"`
	Total     int      `json:"total"`
	Correct   int      `json:"correct"`
	Results   []Result `json:"results"`
}
