package slogloki

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
)

type ReplaceAttrFn = func(groups []string, a slog.Attr) slog.Attr

// entry is one log line before it is encoded; groups become nested entries.
type entry map[string]any

// addAt stores a under the group path. Attrs that end up empty leave no trace.
func (e entry) addAt(path []string, a slog.Attr, replace ReplaceAttrFn) {
	tmp := entry{}
	tmp.add(path, a, replace)
	if len(tmp) == 0 {
		return
	}

	e.group(path).merge(tmp)
}

func (e entry) add(groups []string, a slog.Attr, replace ReplaceAttrFn) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() != slog.KindGroup && replace != nil {
		a = replace(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := append(slices.Clip(groups), a.Key)
		sub := entry{}
		for _, ga := range a.Value.Group() {
			sub.add(inner, ga, replace)
		}
		if len(sub) == 0 {
			return
		}

		// an empty key inlines the group
		if a.Key == "" {
			e.merge(sub)
			return
		}
		e.group([]string{a.Key}).merge(sub)
		return
	}

	if a.Key == "" || a.Value.Equal(slog.Value{}) {
		return
	}
	e[a.Key] = value(a.Value)
}

func (e entry) group(path []string) entry {
	cur := e
	for _, name := range path {
		next, ok := cur[name].(entry)
		if !ok {
			next = entry{}
			cur[name] = next
		}
		cur = next
	}
	return cur
}

func (e entry) merge(other entry) {
	for k, v := range other {
		if sub, ok := v.(entry); ok {
			if existing, ok := e[k].(entry); ok {
				existing.merge(sub)
				continue
			}
		}
		e[k] = v
	}
}

func value(v slog.Value) any {
	if err, ok := v.Any().(error); ok {
		return entry{
			"kind":  fmt.Sprintf("%T", err),
			"error": err.Error(),
		}
	}
	return v.Any()
}

func source(pc uintptr) slog.Attr {
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()

	var args []any
	if f.Function != "" {
		args = append(args, slog.String("function", f.Function))
	}
	if f.File != "" {
		args = append(args, slog.String("file", f.File))
	}
	if f.Line != 0 {
		args = append(args, slog.Int("line", f.Line))
	}

	return slog.Group(slog.SourceKey, args...)
}
