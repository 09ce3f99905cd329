package grandjeu

import "sort"

// Standing is one row of the leaderboard.
type Standing struct {
	Rank       int    `json:"rank"`
	TeamID     string `json:"teamId"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Completed  int    `json:"completed"`
	Attempts   int    `json:"attempts"`
	CurrentTop int    `json:"currentTop"`
	Finished   bool   `json:"finished"`
}

// Leaderboard is the organizer's dashboard.
type Leaderboard struct {
	Standings  []Standing `json:"standings"`
	TotalScore int        `json:"totalScore"`
	Teams      int        `json:"teams"`
	Challenges int        `json:"challenges"`
}

// Rank orders teams by score, then fewer attempts, then name.
func Rank(teams []Team, catalog Catalog) Leaderboard {
	sorted := make([]Team, len(teams))
	copy(sorted, teams)
	for i := range sorted {
		sorted[i].Reconcile(catalog)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Attempts != b.Attempts {
			return a.Attempts < b.Attempts
		}
		return a.Name < b.Name
	})

	lb := Leaderboard{
		Standings:  make([]Standing, 0, len(sorted)),
		Teams:      len(sorted),
		Challenges: len(catalog),
	}
	for i, t := range sorted {
		lb.TotalScore += t.Score
		lb.Standings = append(lb.Standings, Standing{
			Rank:       i + 1,
			TeamID:     t.ID,
			Name:       t.Name,
			Score:      t.Score,
			Completed:  completedIn(t, catalog),
			Attempts:   t.Attempts,
			CurrentTop: t.CurrentTop,
			Finished:   t.Finished(catalog),
		})
	}
	return lb
}

// completedIn counts the completed challenges still in the catalog.
func completedIn(t Team, catalog Catalog) int {
	n := 0
	for _, ch := range catalog {
		if t.HasCompleted(ch.ID) {
			n++
		}
	}
	return n
}
