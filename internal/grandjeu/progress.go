package grandjeu

import (
	"strings"
	"time"
)

// Outcome describes what a submission did to the team record. The caller
// persists the record whenever Changed is set, even if an error is returned
// alongside (a failed single-phase attempt still counts).
type Outcome struct {
	Changed   bool
	Completed bool
	Awarded   int
}

// SubmitCode checks a secret code against challenge ch.
//
// On a two-phase challenge a match marks the code as entered and reveals the
// question; re-entering an accepted code is a no-op success. On a
// single-phase challenge every counted submission increments Attempts and a
// match completes the challenge.
func (t *Team) SubmitCode(catalog Catalog, ch Challenge, input string, now time.Time) (Outcome, error) {
	if !t.StateOf(ch.ID).Accessible() {
		return Outcome{}, ErrChallengeLocked
	}
	if strings.TrimSpace(input) == "" {
		return Outcome{}, missing("code")
	}

	if ch.TwoPhase() {
		p := t.ProgressOf(ch.ID)
		if p.CodeEntered || p.Completed {
			return Outcome{}, nil
		}
		if !MatchCode(input, ch.Code) {
			return Outcome{}, ErrIncorrectCode
		}
		p.CodeEntered = true
		t.setProgress(ch.ID, p)
		t.LastActivity = now
		return Outcome{Changed: true}, nil
	}

	if t.HasCompleted(ch.ID) {
		return Outcome{}, ErrAlreadyCompleted
	}
	t.Attempts++
	t.LastActivity = now
	if !MatchCode(input, ch.Code) {
		return Outcome{Changed: true}, ErrIncorrectCode
	}
	t.setProgress(ch.ID, Progress{CodeEntered: true, AnswerSubmitted: true, Completed: true})
	t.complete(catalog, ch.ID)
	return Outcome{Changed: true, Completed: true, Awarded: ch.Points}, nil
}

// SubmitAnswer checks the answer of a two-phase challenge whose code was
// already entered. A wrong answer leaves the record untouched.
func (t *Team) SubmitAnswer(catalog Catalog, ch Challenge, input string, now time.Time) (Outcome, error) {
	if !ch.TwoPhase() {
		return Outcome{}, ErrNoQuestion
	}
	if !t.StateOf(ch.ID).Accessible() {
		return Outcome{}, ErrChallengeLocked
	}
	p := t.ProgressOf(ch.ID)
	if p.Completed || t.HasCompleted(ch.ID) {
		return Outcome{}, ErrAlreadyCompleted
	}
	if !p.CodeEntered {
		return Outcome{}, ErrCodeRequired
	}
	if strings.TrimSpace(input) == "" {
		return Outcome{}, missing("answer")
	}
	if !MatchAnswer(input, ch.Answer) {
		return Outcome{}, ErrIncorrectAnswer
	}

	p.AnswerSubmitted = true
	p.Completed = true
	t.setProgress(ch.ID, p)
	t.complete(catalog, ch.ID)
	t.LastActivity = now
	return Outcome{Changed: true, Completed: true, Awarded: ch.Points}, nil
}

// complete adds id to the completed set once, moves the pointer past it when
// it was the current level and recomputes the score from the catalog.
func (t *Team) complete(catalog Catalog, id int) {
	if !t.HasCompleted(id) {
		t.CompletedTops = append(t.CompletedTops, id)
	}
	if id == t.CurrentTop {
		t.CurrentTop = t.nextOpen(catalog, id)
	}
	t.Rescore(catalog)
}

// nextOpen is the first catalog ID after id that is not yet completed, or one
// past the last ID when the team has nothing left ahead.
func (t Team) nextOpen(catalog Catalog, id int) int {
	for _, ch := range catalog {
		if ch.ID > id && !t.HasCompleted(ch.ID) {
			return ch.ID
		}
	}
	if last := catalog.LastID(); last >= id {
		return last + 1
	}
	return id + 1
}

// Reconcile realigns the team with an edited catalog: the pointer moves to
// the lowest challenge not yet completed (one past the last when none is
// left) and the score is recomputed. Completed IDs of deleted challenges stay
// in the record and score nothing. It reports whether anything changed.
func (t *Team) Reconcile(catalog Catalog) bool {
	top, score := t.CurrentTop, t.Score
	if len(catalog) > 0 {
		t.CurrentTop = catalog.LastID() + 1
		for _, ch := range catalog {
			if !t.HasCompleted(ch.ID) {
				t.CurrentTop = ch.ID
				break
			}
		}
	}
	t.Rescore(catalog)
	return t.CurrentTop != top || t.Score != score
}

// Rescore sets Score to the sum of the points of the completed challenges.
func (t *Team) Rescore(catalog Catalog) {
	t.Score = catalog.Points(t.CompletedTops)
}

func (t *Team) setProgress(id int, p Progress) {
	if t.Progress == nil {
		t.Progress = make(map[int]Progress)
	}
	t.Progress[id] = p
}
