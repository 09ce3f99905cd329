package grandjeu

// State is the derived unlock state of a challenge for one team.
type State string

const (
	StateLocked    State = "locked"
	StateAvailable State = "available"
	StateCurrent   State = "current"
	StateCompleted State = "completed"
)

// StateOf derives the state of challenge id from the team's pointer and
// completed set. It is never stored.
func StateOf(id, currentTop int, completed []int) State {
	for _, c := range completed {
		if c == id {
			return StateCompleted
		}
	}
	switch {
	case id == currentTop:
		return StateCurrent
	case id < currentTop:
		return StateAvailable
	default:
		return StateLocked
	}
}

// Accessible reports whether a player may open the challenge.
func (s State) Accessible() bool { return s != StateLocked }

// StateOf is the team-bound form of the package function.
func (t Team) StateOf(id int) State {
	return StateOf(id, t.CurrentTop, t.CompletedTops)
}

// BoardEntry is one row of a team's game board.
type BoardEntry struct {
	Challenge Challenge
	State     State
	Progress  Progress
	// Unlocked is true once the instructions may be shown: the code was
	// entered on a two-phase challenge, or the challenge is completed.
	Unlocked bool
}

// Summary is the progress indicator shown above the board.
type Summary struct {
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
	Percent   int  `json:"percent"`
	Finished  bool `json:"finished"`
}

// Board derives the per-challenge view of a team over the catalog.
func Board(t Team, catalog Catalog) ([]BoardEntry, Summary) {
	entries := make([]BoardEntry, 0, len(catalog))
	done := 0
	for _, ch := range catalog {
		st := t.StateOf(ch.ID)
		p := t.ProgressOf(ch.ID)
		if st == StateCompleted {
			done++
		}
		entries = append(entries, BoardEntry{
			Challenge: ch,
			State:     st,
			Progress:  p,
			Unlocked:  st == StateCompleted || (ch.TwoPhase() && p.CodeEntered),
		})
	}

	sum := Summary{Completed: done, Total: len(catalog), Finished: t.Finished(catalog)}
	if sum.Total > 0 {
		sum.Percent = done * 100 / sum.Total
	}
	return entries, sum
}
