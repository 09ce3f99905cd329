package server

import (
	"bytes"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// TeamView is a team record without its credentials.
type TeamView struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	Email         string                    `json:"email,omitempty"`
	CurrentTop    int                       `json:"currentTop"`
	CompletedTops []int                     `json:"completedTops"`
	Score         int                       `json:"score"`
	Attempts      int                       `json:"attempts"`
	Progress      map[int]grandjeu.Progress `json:"progress"`
	CreatedAt     time.Time                 `json:"createdAt"`
	LastActivity  time.Time                 `json:"lastActivity"`
}

func teamView(t grandjeu.Team) TeamView {
	completed := t.CompletedTops
	if completed == nil {
		completed = []int{}
	}
	return TeamView{
		ID:            t.ID,
		Name:          t.Name,
		Email:         t.Email,
		CurrentTop:    t.CurrentTop,
		CompletedTops: completed,
		Score:         t.Score,
		Attempts:      t.Attempts,
		Progress:      t.Progress,
		CreatedAt:     t.CreatedAt,
		LastActivity:  t.LastActivity,
	}
}

// ChallengeView is a challenge as a team sees it. Secrets never leave the
// server; the instructions only once they may be read.
type ChallengeView struct {
	ID              int            `json:"id"`
	Title           string         `json:"title"`
	Theme           string         `json:"theme,omitempty"`
	Points          int            `json:"points"`
	State           grandjeu.State `json:"state"`
	TwoPhase        bool           `json:"twoPhase"`
	HasHint         bool           `json:"hasHint"`
	CodeEntered     bool           `json:"codeEntered"`
	AnswerSubmitted bool           `json:"answerSubmitted"`
	Completed       bool           `json:"completed"`
	Description     string         `json:"description,omitempty"`
	DescriptionHTML string         `json:"descriptionHtml,omitempty"`
}

// BoardResponse is the response for GET /api/game/board and the payload
// of live progress events.
type BoardResponse struct {
	Team       TeamView         `json:"team"`
	Summary    grandjeu.Summary `json:"summary"`
	Challenges []ChallengeView  `json:"challenges"`
}

// boardView realigns its copy of t with catalog first, so a record written
// before the last catalog edit still shows the right pointer and score.
func boardView(t grandjeu.Team, catalog grandjeu.Catalog) BoardResponse {
	t.Reconcile(catalog)
	entries, summary := grandjeu.Board(t, catalog)
	views := make([]ChallengeView, 0, len(entries))
	for _, e := range entries {
		v := ChallengeView{
			ID:              e.Challenge.ID,
			Title:           e.Challenge.Title,
			Theme:           e.Challenge.Theme,
			Points:          e.Challenge.Points,
			State:           e.State,
			TwoPhase:        e.Challenge.TwoPhase(),
			HasHint:         e.Challenge.Hint != "",
			CodeEntered:     e.Progress.CodeEntered,
			AnswerSubmitted: e.Progress.AnswerSubmitted,
			Completed:       e.Progress.Completed,
		}
		// A single-phase description is the riddle leading to the code, so
		// it shows as soon as the challenge is reachable.
		if e.Unlocked || (!v.TwoPhase && e.State.Accessible()) {
			v.Description = e.Challenge.Description
			v.DescriptionHTML = renderMarkdown(e.Challenge.Description)
		}
		views = append(views, v)
	}
	return BoardResponse{Team: teamView(t), Summary: summary, Challenges: views}
}

// AdminChallengeView is the full challenge record, secrets included.
type AdminChallengeView struct {
	grandjeu.Challenge
	TwoPhase        bool   `json:"twoPhase"`
	DescriptionHTML string `json:"descriptionHtml"`
}

func adminChallengeView(c grandjeu.Challenge) AdminChallengeView {
	return AdminChallengeView{
		Challenge:       c,
		TwoPhase:        c.TwoPhase(),
		DescriptionHTML: renderMarkdown(c.Description),
	}
}

// Raw HTML in descriptions is escaped: goldmark only passes it through
// with html.WithUnsafe.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}
