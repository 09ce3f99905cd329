package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// HealthStatus is one entry of the /healthz response, keyed by dependency.
type HealthStatus struct {
	Status    string `json:"status" enum:"ok,error"`
	LatencyMS int64  `json:"latency_ms"`
}

type challengePath struct {
	ID int `path:"id"`
}

type teamPath struct {
	ID string `path:"id"`
}

type qrRequest struct {
	ID   int `path:"id"`
	Size int `query:"size" minimum:"64" maximum:"2048"`
}

type eventsRequest struct {
	Token string `query:"token" required:"true"`
}

type codeRequest struct {
	challengePath
	CodeRequest
}

type answerRequest struct {
	challengePath
	AnswerRequest
}

type updateChallengeRequest struct {
	challengePath
	AdminChallengeRequest
}

type updateTeamRequest struct {
	teamPath
	AdminTeamRequest
}

// errorResponses documents ErrorResponse bodies for each status.
func errorResponses(oc openapi.OperationContext, statuses ...int) {
	for _, s := range statuses {
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(s))
	}
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Grand Jeu API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Grand Jeu scavenger hunt.")

	add := func(method, path, summary, desc string, build func(oc openapi.OperationContext)) {
		oc, _ := r.NewOperationContext(method, path)
		oc.SetSummary(summary)
		oc.SetDescription(desc)
		build(oc)
		_ = r.AddOperation(oc)
	}

	add(http.MethodGet, "/healthz", "Health check",
		"Returns the health status of backend dependencies.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusOK))
			oc.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
		})

	// Teams.
	add(http.MethodPost, "/api/teams", "Sign up",
		"Registers a team and returns a session token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(SignUpRequest{})
			oc.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
			errorResponses(oc, http.StatusBadRequest, http.StatusConflict)
		})
	add(http.MethodPost, "/api/session", "Log in",
		"Logs a team in by name or email. Returns a session token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(LoginRequest{})
			oc.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusBadRequest, http.StatusUnauthorized)
		})

	// Game. All require a Bearer token.
	add(http.MethodGet, "/api/game/board", "Get board",
		"Returns the team's progress and every challenge with its state. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(BoardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized)
		})
	add(http.MethodPost, "/api/game/challenges/{id}/code", "Submit code",
		"Submits the code found on site. On a two-phase challenge this reveals the question; otherwise a match completes it. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(codeRequest{})
			oc.AddRespStructure(SubmissionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound,
				http.StatusConflict, http.StatusUnprocessableEntity, http.StatusServiceUnavailable)
		})
	add(http.MethodPost, "/api/game/challenges/{id}/answer", "Submit answer",
		"Answers the question of a two-phase challenge whose code was entered. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(answerRequest{})
			oc.AddRespStructure(SubmissionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound,
				http.StatusConflict, http.StatusUnprocessableEntity, http.StatusServiceUnavailable)
		})
	add(http.MethodGet, "/api/game/challenges/{id}/hint", "Reveal hint",
		"Returns the hint of an accessible challenge. Requires Bearer token.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(challengePath{})
			oc.AddRespStructure(HintResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict)
		})
	add(http.MethodGet, "/api/game/events", "SSE event stream",
		"Server-Sent Events stream of the team's board. Pass token as query parameter.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(eventsRequest{})
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
				openapi.WithContentType("text/event-stream"))
			errorResponses(oc, http.StatusUnauthorized)
		})

	// Admin auth.
	add(http.MethodPost, "/api/admin/login", "Admin login",
		"Authenticates an organizer and sets the admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(AdminLoginRequest{})
			oc.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusBadRequest, http.StatusUnauthorized)
		})
	add(http.MethodPost, "/api/admin/logout", "Admin logout",
		"Clears the admin session.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
		})
	add(http.MethodGet, "/api/admin/me", "Current admin",
		"Returns the authenticated organizer. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized)
		})

	// Admin challenges.
	add(http.MethodGet, "/api/admin/challenges", "List challenges",
		"Returns the full catalog, secrets included. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure([]AdminChallengeView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized)
		})
	add(http.MethodPost, "/api/admin/challenges", "Create challenge",
		"Appends a challenge with the next free ID. 409 when another create took that ID first. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(AdminChallengeRequest{})
			oc.AddRespStructure(AdminChallengeView{}, openapi.WithHTTPStatus(http.StatusCreated))
			errorResponses(oc, http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict)
		})
	add(http.MethodGet, "/api/admin/challenges/{id}", "Get challenge",
		"Returns one challenge. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(challengePath{})
			oc.AddRespStructure(AdminChallengeView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusNotFound, http.StatusUnauthorized)
		})
	add(http.MethodPut, "/api/admin/challenges/{id}", "Replace challenge",
		"Overwrites a challenge. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(updateChallengeRequest{})
			oc.AddRespStructure(AdminChallengeView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized)
		})
	add(http.MethodDelete, "/api/admin/challenges/{id}", "Delete challenge",
		"Deletes a challenge. Team records are left as they are. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(challengePath{})
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusNotFound, http.StatusUnauthorized)
		})
	add(http.MethodGet, "/api/admin/challenges/{id}/qr", "Challenge QR code",
		"Renders the challenge code as a PNG QR code. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(qrRequest{})
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
				openapi.WithContentType("image/png"))
			errorResponses(oc, http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized)
		})

	// Admin teams.
	add(http.MethodGet, "/api/admin/teams", "List teams",
		"Returns every team with its progress. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure([]TeamView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized)
		})
	add(http.MethodPost, "/api/admin/teams", "Create team",
		"Creates a team. Name and password are required. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(AdminTeamRequest{})
			oc.AddRespStructure(TeamView{}, openapi.WithHTTPStatus(http.StatusCreated))
			errorResponses(oc, http.StatusBadRequest, http.StatusConflict, http.StatusUnauthorized)
		})
	add(http.MethodPost, "/api/admin/teams/reset", "Reset all teams",
		"Puts every team back at the start. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(ResetAllResponse{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized)
		})
	add(http.MethodGet, "/api/admin/teams/{id}", "Get team",
		"Returns one team. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(teamPath{})
			oc.AddRespStructure(TeamView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusNotFound, http.StatusUnauthorized)
		})
	add(http.MethodPut, "/api/admin/teams/{id}", "Update team",
		"Changes a team's name, email or password. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(updateTeamRequest{})
			oc.AddRespStructure(TeamView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusBadRequest, http.StatusConflict, http.StatusNotFound, http.StatusUnauthorized)
		})
	add(http.MethodDelete, "/api/admin/teams/{id}", "Delete team",
		"Deletes a team. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(teamPath{})
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusNotFound, http.StatusUnauthorized)
		})
	add(http.MethodPost, "/api/admin/teams/{id}/reset", "Reset team",
		"Puts one team back at the start. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddReqStructure(teamPath{})
			oc.AddRespStructure(TeamView{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusNotFound, http.StatusUnauthorized)
		})

	// Dashboard.
	add(http.MethodGet, "/api/admin/leaderboard", "Leaderboard",
		"Ranks teams by score, then fewer attempts. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(grandjeu.Leaderboard{}, openapi.WithHTTPStatus(http.StatusOK))
			errorResponses(oc, http.StatusUnauthorized)
		})
	add(http.MethodGet, "/api/admin/live", "Live leaderboard",
		"Upgrades to a WebSocket that receives the leaderboard after every team change. Requires admin_session cookie.",
		func(oc openapi.OperationContext) {
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
			errorResponses(oc, http.StatusUnauthorized)
		})

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
