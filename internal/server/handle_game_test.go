package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

func TestSignUp(t *testing.T) {
	app := setupApp(t)

	req := SignUpRequest{
		Name:            "Les Castors",
		Email:           "Castors@Example.org",
		Password:        "castor1",
		ConfirmPassword: "castor1",
	}
	w := app.do(t, http.MethodPost, "/api/teams", req)
	expectStatus(t, w, http.StatusCreated)

	resp := decode[SessionResponse](t, w)
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if resp.Team.Email != "castors@example.org" {
		t.Errorf("email = %q, want lower-cased", resp.Team.Email)
	}
	if resp.Team.CurrentTop != 1 || len(resp.Team.Progress) != len(testCatalog) {
		t.Errorf("unexpected initial team %+v", resp.Team)
	}

	// Same name, different case.
	dup := req
	dup.Name = "les castors"
	dup.Email = "other@example.org"
	w = app.do(t, http.MethodPost, "/api/teams", dup)
	expectStatus(t, w, http.StatusConflict)

	bad := req
	bad.Name = "Les Hiboux"
	bad.Email = "hiboux@example.org"
	bad.ConfirmPassword = "nope"
	w = app.do(t, http.MethodPost, "/api/teams", bad)
	expectStatus(t, w, http.StatusBadRequest)

	long := req
	long.Name = "Les Hérons"
	long.Email = "herons@example.org"
	long.Password = strings.Repeat("h", 80)
	long.ConfirmPassword = long.Password
	w = app.do(t, http.MethodPost, "/api/teams", long)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name   string
		req    LoginRequest
		status int
	}{
		{"exact name", LoginRequest{Login: testTeamName, Password: testTeamPassword}, http.StatusOK},
		{"name any case", LoginRequest{Login: "  LES PIONNIERS ", Password: testTeamPassword}, http.StatusOK},
		{"wrong password", LoginRequest{Login: testTeamName, Password: "nope"}, http.StatusUnauthorized},
		{"unknown team", LoginRequest{Login: "Les Fantômes", Password: testTeamPassword}, http.StatusUnauthorized},
		{"missing login", LoginRequest{Password: testTeamPassword}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/session", tt.req)
			expectStatus(t, w, tt.status)
		})
	}
}

func TestBoardRequiresToken(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodGet, "/api/game/board", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	w = app.do(t, http.MethodGet, "/api/game/board", nil, withToken("not-a-token"))
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestBoardHidesSecrets(t *testing.T) {
	app := setupApp(t)
	token := app.login(t)

	w := app.do(t, http.MethodGet, "/api/game/board", nil, withToken(token))
	expectStatus(t, w, http.StatusOK)

	body := w.Body.String()
	for _, secret := range []string{"ADVENT2025", "FOREST", "passwordHash"} {
		if strings.Contains(body, secret) {
			t.Errorf("board leaks %q", secret)
		}
	}

	var board BoardResponse
	json.Unmarshal([]byte(body), &board)
	wantStates := []grandjeu.State{grandjeu.StateCurrent, grandjeu.StateLocked, grandjeu.StateLocked}
	for i, c := range board.Challenges {
		if c.State != wantStates[i] {
			t.Errorf("challenge %d state = %s, want %s", c.ID, c.State, wantStates[i])
		}
	}
	first := board.Challenges[0]
	if !strings.Contains(first.DescriptionHTML, "<strong>door</strong>") {
		t.Errorf("current single-phase riddle not rendered: %q", first.DescriptionHTML)
	}
	if board.Challenges[1].Description != "" {
		t.Error("locked challenge shows its description")
	}
	if board.Summary.Total != 3 || board.Summary.Completed != 0 {
		t.Errorf("summary = %+v", board.Summary)
	}
}

func TestSinglePhaseSubmission(t *testing.T) {
	app := setupApp(t)
	token := app.login(t)
	path := "/api/game/challenges/1/code"

	w := app.do(t, http.MethodPost, path, CodeRequest{Code: "WRONG"}, withToken(token))
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if resp := decode[ErrorResponse](t, w); resp.Hint != "Look behind the chapel." {
		t.Errorf("hint = %q", resp.Hint)
	}

	w = app.do(t, http.MethodPost, path, CodeRequest{Code: "advent2025"}, withToken(token))
	expectStatus(t, w, http.StatusOK)
	resp := decode[SubmissionResponse](t, w)
	if !resp.Completed || resp.Awarded != 100 {
		t.Errorf("unexpected outcome %+v", resp)
	}
	team := resp.Board.Team
	if team.CurrentTop != 2 || team.Score != 100 || team.Attempts != 2 {
		t.Errorf("team after completion: top=%d score=%d attempts=%d", team.CurrentTop, team.Score, team.Attempts)
	}

	// Resubmitting a completed challenge is refused and not counted.
	w = app.do(t, http.MethodPost, path, CodeRequest{Code: "ADVENT2025"}, withToken(token))
	expectStatus(t, w, http.StatusConflict)

	w = app.do(t, http.MethodGet, "/api/game/board", nil, withToken(token))
	board := decode[BoardResponse](t, w)
	if board.Team.Attempts != 2 || board.Team.Score != 100 || len(board.Team.CompletedTops) != 1 {
		t.Errorf("resubmission changed the team: %+v", board.Team)
	}
}

func TestTwoPhaseSubmission(t *testing.T) {
	app := setupApp(t)
	token := app.login(t)

	w := app.do(t, http.MethodPost, "/api/game/challenges/2/code", CodeRequest{Code: "FOREST"}, withToken(token))
	expectStatus(t, w, http.StatusConflict) // still locked

	w = app.do(t, http.MethodPost, "/api/game/challenges/1/code", CodeRequest{Code: "ADVENT2025"}, withToken(token))
	expectStatus(t, w, http.StatusOK)

	w = app.do(t, http.MethodPost, "/api/game/challenges/2/answer", AnswerRequest{Answer: "oak"}, withToken(token))
	expectStatus(t, w, http.StatusConflict) // code first

	w = app.do(t, http.MethodPost, "/api/game/challenges/2/code", CodeRequest{Code: "PLAINE"}, withToken(token))
	expectStatus(t, w, http.StatusUnprocessableEntity)

	w = app.do(t, http.MethodPost, "/api/game/challenges/2/code", CodeRequest{Code: " forest "}, withToken(token))
	expectStatus(t, w, http.StatusOK)
	resp := decode[SubmissionResponse](t, w)
	if resp.Completed {
		t.Error("code alone completed a two-phase challenge")
	}
	second := resp.Board.Challenges[1]
	if !second.CodeEntered || second.Description == "" {
		t.Errorf("question not revealed: %+v", second)
	}
	if resp.Board.Team.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 (two-phase misses are free)", resp.Board.Team.Attempts)
	}

	w = app.do(t, http.MethodPost, "/api/game/challenges/2/answer", AnswerRequest{Answer: "pine"}, withToken(token))
	expectStatus(t, w, http.StatusUnprocessableEntity)

	w = app.do(t, http.MethodPost, "/api/game/challenges/2/answer", AnswerRequest{Answer: "  OAK "}, withToken(token))
	expectStatus(t, w, http.StatusOK)
	resp = decode[SubmissionResponse](t, w)
	if !resp.Completed || resp.Awarded != 150 {
		t.Errorf("unexpected outcome %+v", resp)
	}
	if resp.Board.Team.Score != 250 || resp.Board.Team.CurrentTop != 3 {
		t.Errorf("team = %+v", resp.Board.Team)
	}

	w = app.do(t, http.MethodPost, "/api/game/challenges/1/answer", AnswerRequest{Answer: "x"}, withToken(token))
	expectStatus(t, w, http.StatusConflict) // no question on a single-phase challenge
}

func TestSubmitBadRequests(t *testing.T) {
	app := setupApp(t)
	token := app.login(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown challenge", "/api/game/challenges/99/code", CodeRequest{Code: "X"}, http.StatusNotFound},
		{"bad id", "/api/game/challenges/abc/code", CodeRequest{Code: "X"}, http.StatusBadRequest},
		{"blank code", "/api/game/challenges/1/code", CodeRequest{Code: "   "}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, tt.path, tt.body, withToken(token))
			expectStatus(t, w, tt.status)
		})
	}
}

func TestHint(t *testing.T) {
	app := setupApp(t)
	token := app.login(t)

	w := app.do(t, http.MethodGet, "/api/game/challenges/1/hint", nil, withToken(token))
	expectStatus(t, w, http.StatusOK)
	if got := decode[HintResponse](t, w).Hint; got != "Look behind the chapel." {
		t.Errorf("hint = %q", got)
	}

	w = app.do(t, http.MethodGet, "/api/game/challenges/3/hint", nil, withToken(token))
	expectStatus(t, w, http.StatusConflict)

	app.do(t, http.MethodPost, "/api/game/challenges/1/code", CodeRequest{Code: "ADVENT2025"}, withToken(token))
	w = app.do(t, http.MethodGet, "/api/game/challenges/2/hint", nil, withToken(token))
	expectStatus(t, w, http.StatusNotFound)
}

// readEvent returns the next SSE event name and data, skipping pings.
func readEvent(t *testing.T, br *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestEventsStream(t *testing.T) {
	app := setupApp(t)
	token := app.login(t)

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	w := app.do(t, http.MethodGet, "/api/game/events", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/game/events?token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}
	br := bufio.NewReader(resp.Body)

	name, data := readEvent(t, br)
	var board BoardResponse
	json.Unmarshal([]byte(data), &board)
	if name != "state" || board.Team.Name != testTeamName || board.Team.Score != 0 {
		t.Fatalf("initial event %s: %s", name, data)
	}

	body, _ := json.Marshal(CodeRequest{Code: "ADVENT2025"})
	post, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/game/challenges/1/code", bytes.NewReader(body))
	post.Header.Set("Authorization", "Bearer "+token)
	presp, err := http.DefaultClient.Do(post)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	presp.Body.Close()
	if presp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", presp.StatusCode)
	}

	name, data = readEvent(t, br)
	board = BoardResponse{}
	json.Unmarshal([]byte(data), &board)
	if name != "state" || board.Team.Score != 100 || board.Team.CurrentTop != 2 {
		t.Errorf("update event %s: %s", name, data)
	}
}
