package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/healthy", http.HandlerFunc(app.healthy))

	session := alice.New(app.sessionManager.LoadAndSave, app.csrfToken, app.playerSession)

	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("GET /api/cases/{caseID}", session.ThenFunc(app.showCase))
	mux.Handle("POST /api/cases/{caseID}/evidence", session.ThenFunc(app.collectEvidence))
	mux.Handle("POST /api/cases/{caseID}/witnesses/{witnessID}/statements", session.ThenFunc(app.recordStatement))
	mux.Handle("POST /api/cases/{caseID}/contradictions/{contradictionID}/resolve", session.ThenFunc(app.resolveContradiction))
	mux.Handle("POST /api/cases/{caseID}/verdict", session.ThenFunc(app.submitVerdict))
	mux.Handle("POST /api/cases/{caseID}/reset", session.ThenFunc(app.resetInvestigation))

	return app.recoverPanic(app.logRequest(secureHeaders(noSurf(mux))))
}
