package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/michaelgov-ctrl/form-lab/ui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.notFound(w)
	})

	router.Handler(http.MethodGet, "/static/*filepath", http.FileServerFS(ui.Files))

	router.HandlerFunc(http.MethodGet, "/ping", ping)

	dynamic := alice.New(app.sessionManager.LoadAndSave, app.noSurf)

	router.Handler(http.MethodGet, "/", dynamic.ThenFunc(app.home))

	for name := range app.schemas {
		router.Handler(http.MethodGet, "/"+name, dynamic.ThenFunc(app.formPage(name)))
		router.Handler(http.MethodPost, "/"+name, dynamic.ThenFunc(app.formPost(name)))
	}

	router.Handler(http.MethodGet, "/repos", dynamic.ThenFunc(app.repositories))
	router.Handler(http.MethodGet, "/submissions", dynamic.ThenFunc(app.submissionList))

	// websocket upgrades bypass the session chain, its response writer cannot be hijacked
	router.HandlerFunc(http.MethodGet, "/forms/:form/ws", app.liveForm)

	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.metricsRegistry, promhttp.HandlerOpts{}))

	standard := alice.New(app.metrics, app.recoverPanic, app.enableCORS, app.logRequest, secureHeaders)

	return standard.Then(router)
}
