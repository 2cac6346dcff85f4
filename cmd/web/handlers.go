package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
)

// formInput covers every field any exercise form posts.
type formInput struct {
	Name      string `form:"name"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Complaint string `form:"complaint"`
	Amount    string `form:"amount"`
}

func (in formInput) value(f forms.Field) string {
	switch f {
	case forms.Name:
		return in.Name
	case forms.Email:
		return in.Email
	case forms.Password:
		return in.Password
	case forms.Complaint:
		return in.Complaint
	case forms.Amount:
		return in.Amount
	}
	return ""
}

func ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"copacetic"}`))
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	app.render(w, r, http.StatusOK, "home.tmpl.html", data)
}

func (app *application) formPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := app.newController(name)
		if err != nil {
			app.serverError(w, r, err)
			return
		}

		data := app.newTemplateData(r)
		data.Form = newFormView(c)
		app.render(w, r, http.StatusOK, "form.tmpl.html", data)
	}
}

// formPost replays the posted fields through a fresh controller and submits it.
func (app *application) formPost(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input formInput

		if err := app.decodePostForm(r, &input); err != nil {
			app.clientError(w, http.StatusBadRequest)
			return
		}

		c, err := app.newController(name)
		if err != nil {
			app.serverError(w, r, err)
			return
		}

		for _, spec := range c.Schema().Fields {
			if err := c.OnFieldChange(spec.Field, input.value(spec.Field)); err != nil {
				app.serverError(w, r, err)
				return
			}
		}

		receipt, err := c.OnSubmit(r.Context())
		if err != nil {
			if errors.Is(err, forms.ErrSubmissionBlocked) {
				data := app.newTemplateData(r)
				data.Form = newFormView(c)
				app.render(w, r, http.StatusUnprocessableEntity, "form.tmpl.html", data)
				return
			}

			app.serverError(w, r, err)
			return
		}

		app.logger.Info("form submitted", "form", receipt.Form, "reference_id", receipt.ReferenceID)

		http.Redirect(w, r, "/"+name, http.StatusSeeOther)
	}
}

func (app *application) liveForm(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	app.liveForms.ServeWS(w, r, params.ByName("form"))
}

func (app *application) repositories(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		user = app.config.github.user
	}

	repos, err := app.repos.ListRepositories(r.Context(), user)
	if err != nil {
		// an empty list is an acceptable degraded display
		app.logger.Warn("failed to list repositories", "user", user, "error", err)
		repos = nil
	}

	data := app.newTemplateData(r)
	data.GitHubUser = user
	data.Repos = repos
	app.render(w, r, http.StatusOK, "repos.tmpl.html", data)
}

func (app *application) submissionList(w http.ResponseWriter, r *http.Request) {
	submissions, err := app.submissions.Latest(r.Context(), 20)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	for _, s := range submissions {
		for _, spec := range app.schemas[s.Form].Fields {
			if spec.Sensitive {
				delete(s.Fields, string(spec.Field))
			}
		}
	}

	data := app.newTemplateData(r)
	data.Submissions = submissions
	app.render(w, r, http.StatusOK, "submissions.tmpl.html", data)
}
