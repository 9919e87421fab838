package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. Styles are bound to a
// renderer for the handler's writer, so output to a non-terminal carries no
// escape sequences.
type palette struct {
	key    lipgloss.Style
	time   lipgloss.Style
	source lipgloss.Style
	msg    lipgloss.Style
	str    lipgloss.Style
	num    lipgloss.Style
	lit    lipgloss.Style
	level  map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		key:    r.NewStyle().Foreground(lipgloss.Color("8")),
		time:   r.NewStyle().Foreground(lipgloss.Color("8")),
		source: r.NewStyle().Foreground(lipgloss.Color("5")),
		msg:    r.NewStyle().Bold(true),
		str:    r.NewStyle().Foreground(lipgloss.Color("6")),
		num:    r.NewStyle().Foreground(lipgloss.Color("3")),
		lit:    r.NewStyle().Foreground(lipgloss.Color("4")),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): r.NewStyle().Foreground(lipgloss.Color("8")),
			slog.LevelDebug:        r.NewStyle().Foreground(lipgloss.Color("4")),
			slog.LevelInfo:         r.NewStyle().Foreground(lipgloss.Color("2")),
			slog.LevelWarn:         r.NewStyle().Foreground(lipgloss.Color("3")),
			slog.LevelError:        r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
	}
}

func (p palette) levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return p.level[slog.LevelError]
	case level >= slog.LevelWarn:
		return p.level[slog.LevelWarn]
	case level >= slog.LevelInfo:
		return p.level[slog.LevelInfo]
	case level >= slog.LevelDebug:
		return p.level[slog.LevelDebug]
	default:
		return p.level[slog.Level(LevelTrace)]
	}
}

// prettyHandler renders records for a human reader, either as a single line
// of key=value pairs or as an indented JSON object.
// Group names qualify keys with a dotted prefix in both forms.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	json   bool
	attrs  []slog.Attr
	prefix string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	asJSON bool,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: newPalette(w),
		mu:    &sync.Mutex{},
		w:     w,
		json:  asJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			fields = append(fields, a)
		}
	}

	level := h.replace(slog.Any(slog.LevelKey, r.Level))

	var source slog.Attr

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			source = slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line))
		}
	}

	fields = append(fields, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.qualify(a)...)

		return true
	})

	buf := new(bytes.Buffer)
	if h.json {
		h.writeJSON(buf, r.Level, level, source, r.Message, fields)
	} else {
		h.writeText(buf, r.Level, level, source, r.Message, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs...)...)

	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.prefix = h.prefix + name + "."

	return &next
}

// replace applies the configured ReplaceAttr to one of the built-in keys.
func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// qualify resolves attrs, flattens nested groups and prefixes each key with
// the handler's group path.
func (h *prettyHandler) qualify(attrs ...slog.Attr) []slog.Attr {
	var out []slog.Attr

	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		if a.Value.Kind() == slog.KindGroup {
			sub := *h
			if a.Key != "" {
				sub.prefix = h.prefix + a.Key + "."
			}

			out = append(out, sub.qualify(a.Value.Group()...)...)

			continue
		}

		a.Key = h.prefix + a.Key
		out = append(out, a)
	}

	return out
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	lvl slog.Level,
	level, source slog.Attr,
	msg string,
	fields []slog.Attr,
) {
	parts := make([]string, 0, len(fields)+3)

	rest := fields
	if len(rest) > 0 && rest[0].Key == slog.TimeKey {
		parts = append(parts, h.style.time.Render(rest[0].Value.String()))
		rest = rest[1:]
	}

	parts = append(parts, h.style.levelStyle(lvl).Render(fmt.Sprintf("%-5s", level.Value.String())))

	if source.Key != "" {
		parts = append(parts, h.style.source.Render(source.Value.String()))
	}

	parts = append(parts, h.style.msg.Render(msg))

	for _, a := range rest {
		parts = append(parts, h.style.key.Render(a.Key+"=")+h.textValue(a.Value))
	}

	buf.WriteString(strings.Join(parts, " "))
	buf.WriteByte('\n')
}

func (h *prettyHandler) textValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(v.String())
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.style.num.Render(v.String())
	case slog.KindBool:
		return h.style.lit.Render(v.String())
	case slog.KindTime:
		return h.style.time.Render(v.Time().Format(time.RFC3339))
	default:
		return h.style.str.Render(fmt.Sprint(v.Any()))
	}
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	lvl slog.Level,
	level, source slog.Attr,
	msg string,
	fields []slog.Attr,
) {
	entries := make([]string, 0, len(fields)+3)
	add := func(key, value string) {
		entries = append(entries, "  "+h.style.key.Render(strconv.Quote(key))+": "+value)
	}

	rest := fields
	if len(rest) > 0 && rest[0].Key == slog.TimeKey {
		add(slog.TimeKey, h.style.time.Render(jsonString(rest[0].Value.String())))
		rest = rest[1:]
	}

	add(slog.LevelKey, h.style.levelStyle(lvl).Render(jsonString(level.Value.String())))

	if source.Key != "" {
		add(slog.SourceKey, h.style.source.Render(jsonString(source.Value.String())))
	}

	add(slog.MessageKey, h.style.msg.Render(jsonString(msg)))

	for _, a := range rest {
		add(a.Key, h.jsonValue(a.Value))
	}

	buf.WriteString("{\n")
	buf.WriteString(strings.Join(entries, ",\n"))
	buf.WriteString("\n}\n")
}

func (h *prettyHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(jsonString(v.String()))
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.style.num.Render(v.String())
	case slog.KindDuration:
		return h.style.num.Render(strconv.FormatInt(int64(v.Duration()), 10))
	case slog.KindBool:
		return h.style.lit.Render(v.String())
	case slog.KindTime:
		return h.style.time.Render(jsonString(v.Time().Format(time.RFC3339Nano)))
	default:
		val := v.Any()
		if err, ok := val.(error); ok {
			return h.style.str.Render(jsonString(err.Error()))
		}

		b, err := json.Marshal(val)
		if err != nil {
			return h.style.str.Render(jsonString(fmt.Sprint(val)))
		}

		return h.style.str.Render(string(b))
	}
}

func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}

	return string(b)
}
