package grandjeu

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestTeam(catalog Catalog) Team {
	return NewTeam("t1", "Les Pionniers", "", "", catalog, testNow)
}

func mustFind(t *testing.T, c Catalog, id int) Challenge {
	t.Helper()
	ch, ok := c.Find(id)
	if !ok {
		t.Fatalf("challenge %d not in catalog", id)
	}
	return ch
}

func TestNewTeam(t *testing.T) {
	team := newTestTeam(PathfinderCatalog)

	if team.CurrentTop != 1 || len(team.CompletedTops) != 0 || team.Score != 0 || team.Attempts != 0 {
		t.Fatalf("new team = %+v", team)
	}
	if len(team.Progress) != len(PathfinderCatalog) {
		t.Errorf("progress entries = %d, want %d", len(team.Progress), len(PathfinderCatalog))
	}
	for id, p := range team.Progress {
		if p != (Progress{}) {
			t.Errorf("progress[%d] = %+v, want all false", id, p)
		}
	}
}

func TestSinglePhaseCaseInsensitive(t *testing.T) {
	for _, input := range []string{"ADVENT2025", "advent2025", "AdVeNt2025", "  advent2025 "} {
		t.Run(input, func(t *testing.T) {
			team := newTestTeam(AdventistCatalog)
			out, err := team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 1), input, testNow)
			if err != nil {
				t.Fatalf("SubmitCode: %v", err)
			}
			if !out.Completed || out.Awarded != 100 {
				t.Errorf("outcome = %+v", out)
			}
			if len(team.CompletedTops) != 1 || team.CompletedTops[0] != 1 {
				t.Errorf("completedTops = %v, want [1]", team.CompletedTops)
			}
			if team.CurrentTop != 2 {
				t.Errorf("currentTop = %d, want 2", team.CurrentTop)
			}
			if team.Score != 100 {
				t.Errorf("score = %d, want 100", team.Score)
			}
			if team.Attempts != 1 {
				t.Errorf("attempts = %d, want 1", team.Attempts)
			}
		})
	}
}

func TestSinglePhaseWrongCodeCountsAttempt(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	out, err := team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 1), "NOPE", testNow)
	if !errors.Is(err, ErrIncorrectCode) {
		t.Fatalf("err = %v, want ErrIncorrectCode", err)
	}
	if !out.Changed {
		t.Error("failed attempt should be persisted")
	}
	if team.Attempts != 1 || team.Score != 0 || len(team.CompletedTops) != 0 || team.CurrentTop != 1 {
		t.Errorf("team after wrong code = %+v", team)
	}
}

func TestSinglePhaseResubmissionGuarded(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	ch := mustFind(t, AdventistCatalog, 1)
	if _, err := team.SubmitCode(AdventistCatalog, ch, "ADVENT2025", testNow); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	out, err := team.SubmitCode(AdventistCatalog, ch, "ADVENT2025", testNow)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if out.Changed {
		t.Error("resubmission should not change the record")
	}
	if team.Score != 100 || len(team.CompletedTops) != 1 || team.Attempts != 1 {
		t.Errorf("team after resubmission = %+v", team)
	}
}

func TestLockedChallengeRejected(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	_, err := team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 2), "ELLEN1827", testNow)
	if !errors.Is(err, ErrChallengeLocked) {
		t.Fatalf("err = %v, want ErrChallengeLocked", err)
	}
	if team.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", team.Attempts)
	}
}

func TestBlankCode(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	_, err := team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 1), "   ", testNow)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "code" {
		t.Fatalf("err = %v, want ValidationError on code", err)
	}
	if team.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", team.Attempts)
	}
}

func TestTwoPhaseFlow(t *testing.T) {
	team := newTestTeam(PathfinderCatalog)
	ch := mustFind(t, PathfinderCatalog, 1)

	if _, err := team.SubmitAnswer(PathfinderCatalog, ch, "Khaki", testNow); !errors.Is(err, ErrCodeRequired) {
		t.Fatalf("answer before code: err = %v, want ErrCodeRequired", err)
	}

	if _, err := team.SubmitCode(PathfinderCatalog, ch, "wrong", testNow); !errors.Is(err, ErrIncorrectCode) {
		t.Fatalf("wrong code: err = %v, want ErrIncorrectCode", err)
	}
	if team.Attempts != 0 || team.ProgressOf(1).CodeEntered {
		t.Fatalf("wrong code changed the team: %+v", team)
	}

	out, err := team.SubmitCode(PathfinderCatalog, ch, "faneva", testNow)
	if err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	if !out.Changed || out.Completed {
		t.Errorf("code outcome = %+v", out)
	}
	if !team.ProgressOf(1).CodeEntered || len(team.CompletedTops) != 0 {
		t.Fatalf("after code: %+v", team)
	}

	out, err = team.SubmitCode(PathfinderCatalog, ch, "FANEVA", testNow)
	if err != nil || out.Changed {
		t.Errorf("re-entering code: out=%+v err=%v, want idempotent success", out, err)
	}

	if _, err := team.SubmitAnswer(PathfinderCatalog, ch, "beige", testNow); !errors.Is(err, ErrIncorrectAnswer) {
		t.Fatalf("wrong answer: err = %v, want ErrIncorrectAnswer", err)
	}
	if team.Attempts != 0 || team.ProgressOf(1).AnswerSubmitted {
		t.Fatalf("wrong answer changed the team: %+v", team)
	}

	out, err = team.SubmitAnswer(PathfinderCatalog, ch, "  kHaKi ", testNow)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !out.Completed || out.Awarded != DefaultPoints {
		t.Errorf("answer outcome = %+v", out)
	}
	p := team.ProgressOf(1)
	if !p.CodeEntered || !p.AnswerSubmitted || !p.Completed {
		t.Errorf("progress = %+v, want all true", p)
	}
	if team.CurrentTop != 2 || team.Score != DefaultPoints {
		t.Errorf("team = currentTop %d score %d", team.CurrentTop, team.Score)
	}

	if _, err := team.SubmitAnswer(PathfinderCatalog, ch, "Khaki", testNow); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second answer: err = %v, want ErrAlreadyCompleted", err)
	}
	if len(team.CompletedTops) != 1 || team.Score != DefaultPoints {
		t.Errorf("double counted: %+v", team)
	}
}

func TestTwoPhaseUnicodeAnswer(t *testing.T) {
	team := newTestTeam(PathfinderCatalog)
	team.CurrentTop = 10
	ch := mustFind(t, PathfinderCatalog, 10)

	if _, err := team.SubmitCode(PathfinderCatalog, ch, "loko10", testNow); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	// Decomposed "A" + combining grave.
	if _, err := team.SubmitAnswer(PathfinderCatalog, ch, "RÀ", testNow); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !team.HasCompleted(10) {
		t.Error("challenge 10 not completed")
	}
}

func TestAnswerOnSinglePhase(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	_, err := team.SubmitAnswer(AdventistCatalog, mustFind(t, AdventistCatalog, 1), "x", testNow)
	if !errors.Is(err, ErrNoQuestion) {
		t.Fatalf("err = %v, want ErrNoQuestion", err)
	}
}

func TestScoreInvariant(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	codes := []string{"advent2025", "bad", "ellen1827", "SABBAT7", "wrong", "maranatha"}

	for _, code := range codes {
		ch := mustFind(t, AdventistCatalog, team.CurrentTop)
		team.SubmitCode(AdventistCatalog, ch, code, testNow)

		if got, want := team.Score, AdventistCatalog.Points(team.CompletedTops); got != want {
			t.Fatalf("after %q: score = %d, want %d", code, got, want)
		}
		seen := map[int]bool{}
		for _, id := range team.CompletedTops {
			if seen[id] {
				t.Fatalf("duplicate %d in %v", id, team.CompletedTops)
			}
			seen[id] = true
		}
	}

	if !team.Finished(AdventistCatalog) {
		t.Error("team should have finished")
	}
	if team.Score != 750 {
		t.Errorf("score = %d, want 750", team.Score)
	}
	if team.Attempts != 6 {
		t.Errorf("attempts = %d, want 6", team.Attempts)
	}
	if team.CurrentTop != 5 {
		t.Errorf("currentTop = %d, want 5", team.CurrentTop)
	}
}

func TestAvailableChallengeKeepsPointer(t *testing.T) {
	team := newTestTeam(PathfinderCatalog)
	team.CurrentTop = 3
	team.CompletedTops = []int{2}
	ch := mustFind(t, PathfinderCatalog, 1)

	if _, err := team.SubmitCode(PathfinderCatalog, ch, "FANEVA", testNow); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	if _, err := team.SubmitAnswer(PathfinderCatalog, ch, "khaki", testNow); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if team.CurrentTop != 3 {
		t.Errorf("currentTop = %d, want 3", team.CurrentTop)
	}
	if team.Score != 2*DefaultPoints {
		t.Errorf("score = %d, want %d", team.Score, 2*DefaultPoints)
	}
}

func TestPointerSkipsDeletedAndCompleted(t *testing.T) {
	catalog := NewCatalog([]Challenge{
		{ID: 1, Code: "A", Points: 10},
		{ID: 3, Code: "C", Points: 30},
		{ID: 4, Code: "D", Points: 40},
	})
	team := NewTeam("t", "T", "", "", catalog, testNow)
	team.CompletedTops = []int{3}

	if _, err := team.SubmitCode(catalog, mustFind(t, catalog, 1), "a", testNow); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	if team.CurrentTop != 4 {
		t.Errorf("currentTop = %d, want 4", team.CurrentTop)
	}
	if team.Score != 40 {
		t.Errorf("score = %d, want 40", team.Score)
	}
}

func TestReset(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 1), "ADVENT2025", testNow)
	team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 2), "nope", testNow)

	later := testNow.Add(time.Hour)
	team.Reset(AdventistCatalog, later)

	if team.CurrentTop != 1 || len(team.CompletedTops) != 0 || team.Score != 0 || team.Attempts != 0 {
		t.Errorf("after reset = %+v", team)
	}
	for id, p := range team.Progress {
		if p != (Progress{}) {
			t.Errorf("progress[%d] = %+v after reset", id, p)
		}
	}
	if !team.LastActivity.Equal(later) {
		t.Errorf("lastActivity = %v, want %v", team.LastActivity, later)
	}
}

func without(c Catalog, id int) Catalog {
	out := make(Catalog, 0, len(c))
	for _, ch := range c {
		if ch.ID != id {
			out = append(out, ch)
		}
	}
	return out
}

func TestReconcile(t *testing.T) {
	completeOne := func(t *testing.T) Team {
		t.Helper()
		team := newTestTeam(AdventistCatalog)
		if _, err := team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 1), "ADVENT2025", testNow); err != nil {
			t.Fatalf("SubmitCode: %v", err)
		}
		return team
	}

	repriced := NewCatalog(AdventistCatalog)
	repriced[0].Points = 500

	tests := []struct {
		name        string
		catalog     Catalog
		wantTop     int
		wantScore   int
		wantChanged bool
	}{
		{"catalog unchanged", AdventistCatalog, 2, 100, false},
		{"current challenge deleted", without(AdventistCatalog, 2), 3, 100, true},
		{"completed challenge deleted", without(AdventistCatalog, 1), 2, 0, true},
		{"points edited", repriced, 2, 500, true},
		{"every open challenge deleted", AdventistCatalog[:1], 2, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := completeOne(t)
			if changed := team.Reconcile(tt.catalog); changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if team.CurrentTop != tt.wantTop {
				t.Errorf("currentTop = %d, want %d", team.CurrentTop, tt.wantTop)
			}
			if team.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", team.Score, tt.wantScore)
			}
			if len(team.CompletedTops) != 1 || team.CompletedTops[0] != 1 {
				t.Errorf("completedTops = %v, want [1]", team.CompletedTops)
			}
		})
	}
}

func TestReconcileUnblocksNextChallenge(t *testing.T) {
	team := newTestTeam(AdventistCatalog)
	if _, err := team.SubmitCode(AdventistCatalog, mustFind(t, AdventistCatalog, 1), "ADVENT2025", testNow); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}

	catalog := without(AdventistCatalog, 2)
	team.Reconcile(catalog)

	if st := team.StateOf(3); st != StateCurrent {
		t.Fatalf("state of 3 = %s, want current", st)
	}
	out, err := team.SubmitCode(catalog, mustFind(t, catalog, 3), "sabbat7", testNow)
	if err != nil {
		t.Fatalf("SubmitCode on 3: %v", err)
	}
	if !out.Completed || team.CurrentTop != 4 || team.Score != 300 {
		t.Errorf("after 3: outcome = %+v, team = %+v", out, team)
	}
}
