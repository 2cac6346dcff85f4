package slogloki

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/grafana/loki-client-go/loki"
	"github.com/prometheus/common/model"
)

type Option struct {
	Level  slog.Leveler
	Client *loki.Client

	AddSource   bool
	ReplaceAttr ReplaceAttrFn
}

func (o Option) NewLokiHandler() slog.Handler {
	if o.Level == nil {
		o.Level = slog.LevelDebug
	}

	if o.Client == nil {
		panic("missing loki client")
	}

	return &LokiHandler{option: o}
}

var _ slog.Handler = (*LokiHandler)(nil)

type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

type LokiHandler struct {
	option Option
	attrs  []groupedAttr
	groups []string
}

func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.option.Level.Level()
}

func (h *LokiHandler) Handle(_ context.Context, record slog.Record) error {
	line, err := json.Marshal(h.entry(record))
	if err != nil {
		return err
	}

	labels := model.LabelSet{
		"level": model.LabelValue(record.Level.String()),
	}

	return h.option.Client.Handle(labels, record.Time, string(line))
}

func (h *LokiHandler) entry(record slog.Record) entry {
	e := entry{}

	for _, ga := range h.attrs {
		e.addAt(ga.groups, ga.attr, h.option.ReplaceAttr)
	}

	record.Attrs(func(a slog.Attr) bool {
		e.addAt(h.groups, a, h.option.ReplaceAttr)
		return true
	})

	if h.option.AddSource && record.PC != 0 {
		e.addAt(nil, source(record.PC), nil)
	}

	e[slog.MessageKey] = record.Message

	return e
}

func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := slices.Clone(h.attrs)
	for _, a := range attrs {
		out = append(out, groupedAttr{groups: h.groups, attr: a})
	}

	return &LokiHandler{
		option: h.option,
		attrs:  out,
		groups: h.groups,
	}
}

func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &LokiHandler{
		option: h.option,
		attrs:  h.attrs,
		groups: append(slices.Clone(h.groups), name),
	}
}
