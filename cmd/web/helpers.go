package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/michaelgov-ctrl/form-lab/internal/forms"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter) {
	app.clientError(w, http.StatusNotFound)
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data templateData) {
	ts, ok := app.templateCache[page]
	if !ok {
		app.serverError(w, r, fmt.Errorf("the template %s does not exist", page))
		return
	}

	buf := new(bytes.Buffer)

	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (app *application) decodePostForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	if err := app.formDecoder.Decode(dst, r.PostForm); err != nil {
		var invalidDecoderError *form.InvalidDecoderError
		if errors.As(err, &invalidDecoderError) {
			panic(err)
		}

		return err
	}

	return nil
}

// flash acknowledges submissions through the session flash message.
func (app *application) flash(ctx context.Context, message string) {
	app.sessionManager.Put(ctx, "flash", message)
}

func (app *application) newController(name string) (*forms.Controller, error) {
	schema, ok := app.schemas[name]
	if !ok {
		return nil, fmt.Errorf("no form named %q", name)
	}

	return forms.New(schema,
		forms.WithNotifier(forms.NotifyAll(
			forms.NotifierFunc(app.flash),
			forms.LogNotifier{Logger: app.logger},
		)),
		forms.WithIDGenerator(app.ids),
		forms.WithValidationMode(app.validationMode),
		forms.WithArchive(app.archive),
	)
}

// archive stores an accepted receipt; sensitive fields are hashed by the model.
func (app *application) archive(ctx context.Context, r forms.Receipt) error {
	schema, ok := app.schemas[r.Form]
	if !ok {
		return fmt.Errorf("archive: unknown form %q", r.Form)
	}

	fields := make(map[string]string, len(schema.Fields))
	sensitive := make(map[string]bool)
	for _, spec := range schema.Fields {
		fields[string(spec.Field)] = r.Values[spec.Field]
		if spec.Sensitive {
			sensitive[string(spec.Field)] = true
		}
	}

	id, err := app.submissions.Insert(ctx, r.Form, r.ReferenceID, fields, sensitive)
	if err != nil {
		return err
	}

	app.logger.Info("submission archived", "form", r.Form, "reference_id", r.ReferenceID, "id", id)
	return nil
}
