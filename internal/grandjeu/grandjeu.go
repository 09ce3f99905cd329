// Package grandjeu holds the rules of the game: the challenge catalog, the
// per-team progress record, the unlock state machine and the code/answer
// verifier. Everything here is pure; persistence lives in package store.
package grandjeu

import "time"

// Challenge is one "TOP" level. A challenge with an empty Answer is
// single-phase: entering the secret code completes it. Otherwise the code
// reveals a question whose answer completes it.
type Challenge struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
	Answer      string `json:"answer,omitempty"`
	Points      int    `json:"points"`
	Hint        string `json:"hint,omitempty"`
	Theme       string `json:"theme,omitempty"`
}

// DefaultPoints is awarded by challenges created without an explicit value.
const DefaultPoints = 100

// TwoPhase reports whether the challenge asks a question after its code.
func (c Challenge) TwoPhase() bool { return c.Answer != "" }

// Progress is the per-challenge sub-record of a team.
type Progress struct {
	CodeEntered     bool `json:"codeEntered"`
	AnswerSubmitted bool `json:"answerSubmitted"`
	Completed       bool `json:"completed"`
}

// Team is a patrol's identity and progress document. It is read and written
// as a whole.
type Team struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email,omitempty"`
	PasswordHash  string           `json:"passwordHash"`
	CurrentTop    int              `json:"currentTop"`
	CompletedTops []int            `json:"completedTops"`
	Score         int              `json:"score"`
	Attempts      int              `json:"attempts"`
	Progress      map[int]Progress `json:"progress"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastActivity  time.Time        `json:"lastActivity"`
}

// NewTeam returns a team at the start of the game, with an all-false
// progress entry for every challenge in the catalog.
func NewTeam(id, name, email, passwordHash string, catalog Catalog, now time.Time) Team {
	t := Team{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastActivity: now,
	}
	t.Reset(catalog, now)
	return t
}

// Reset puts the team back at the start: pointer on the first level,
// nothing completed, zero score and attempts, every progress flag cleared.
func (t *Team) Reset(catalog Catalog, now time.Time) {
	t.CurrentTop = 1
	t.CompletedTops = []int{}
	t.Score = 0
	t.Attempts = 0
	t.Progress = make(map[int]Progress, len(catalog))
	for _, c := range catalog {
		t.Progress[c.ID] = Progress{}
	}
	t.LastActivity = now
}

// ProgressOf returns the sub-record for a challenge. A missing entry reads as
// all-false.
func (t Team) ProgressOf(id int) Progress {
	return t.Progress[id]
}

// HasCompleted reports whether id is in the completed set.
func (t Team) HasCompleted(id int) bool {
	for _, c := range t.CompletedTops {
		if c == id {
			return true
		}
	}
	return false
}

// Finished reports whether every challenge of the catalog is completed.
func (t Team) Finished(catalog Catalog) bool {
	if len(catalog) == 0 {
		return false
	}
	for _, c := range catalog {
		if !t.HasCompleted(c.ID) {
			return false
		}
	}
	return true
}
