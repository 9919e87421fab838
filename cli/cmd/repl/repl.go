package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/incpath/log"
	"github.com/ardnew/incpath/macro"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// replFile is the file name reported in diagnostics of evaluated lines.
const replFile = "<repl>"

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help             Print this cruft
  family [NAME]    Show or set the platform family (unix, windows)
  entries          List entry points and their primitives
  clear            Clear screen and cached results
  quit             Exit REPL

Usage:
  Type source text containing entry point calls, e.g. load_path_str("a", "b")
  The expansion previews below the input as you type
  Press Enter to print the expansion
  Press Tab to complete and cycle entry point names
  Use Up/Down arrows for history navigation (mode switches automatically)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	cache      *macro.Cache
	opts       []macro.Option
	family     macro.Family
	logger     log.Logger
	history    *History
	historyIdx int
	matches    fuzzy.Matches // candidates while tab-cycling
	suggIdx    int           // selected candidate index
	wordStart  int           // byte offset of the completed word
	wordEnd    int
	tabActive  bool
	width      int // terminal width for truncation
	quitting   bool
	mode       inputMode
}

// Run starts the REPL. History is persisted under cacheDir unless it is
// empty. The options configure every expansion; family is the initial
// platform family and can be changed interactively.
func Run(
	ctx context.Context,
	cacheDir string,
	family macro.Family,
	logger log.Logger,
	opts ...macro.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.String("family", family.String()),
	)

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("file", path),
			slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(
		newModel(ctx, history, family, logger, opts...),
		tea.WithContext(ctx),
	)
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	history *History,
	family macro.Family,
	logger log.Logger,
	opts ...macro.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		cache:      new(macro.Cache),
		opts:       opts,
		family:     family,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
}

// options returns the expansion options of the current session state.
func (m model) options() []macro.Option {
	return append(slices.Clip(m.opts),
		macro.WithFamily(m.family),
		macro.WithFile(replFile),
	)
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.tabActive && len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.width))

	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type an entry point call or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, family, entries, clear, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case m.mode == modeEval:
		b.WriteString(m.preview(input))
	}

	b.WriteString("\n")

	return b.String()
}

// preview renders the single-line expansion of input shown while typing.
func (m model) preview(input string) string {
	res, err := m.cache.Expand(m.ctxFunc(), input, m.options()...)

	var line string

	switch {
	case err != nil:
		var diags macro.Diagnostics
		if errors.As(err, &diags) && len(diags) > 0 {
			line = errorStyle.Render("✗ " + diags[0].Message())
		} else {
			line = errorStyle.Render("✗ " + err.Error())
		}

	case len(res.Sites) == 0:
		line = hintStyle.Render("no entry point calls")

	default:
		line = resultStyle.Render("→ " + strings.ReplaceAll(res.Output, "\n", " "))
	}

	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	if msg.Type != tea.KeyTab && msg.Type != tea.KeyShiftTab {
		m.tabActive = false
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.historyIdx = m.history.Len()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1), nil

	case tea.KeyDown:
		return m.historyStep(1), nil

	case tea.KeyEsc:
		return m.toggleMode(), nil
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// cycle completes the identifier at the cursor with the next (step > 0) or
// previous fuzzy candidate among the entry point names.
func (m model) cycle(step int) model {
	if m.mode != modeEval {
		return m
	}

	value := m.input.Value()

	if !m.tabActive {
		m.wordStart, m.wordEnd = wordAt(value, m.input.Position())
		m.matches = complete(value[m.wordStart:m.wordEnd],
			macro.EntryNames(m.opts...))

		if len(m.matches) == 0 {
			return m
		}

		m.tabActive = true
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	} else {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	}

	word := m.matches[m.suggIdx].Str

	m.input.SetValue(value[:m.wordStart] + word + value[m.wordEnd:])
	m.wordEnd = m.wordStart + len(word)
	m.input.SetCursor(m.wordEnd)

	// a single candidate needs no cycling
	if len(m.matches) == 1 {
		m.tabActive = false
	}

	return m
}

// historyStep moves through history, switching to the mode of the recalled
// entry. Moving past the newest entry clears the input.
func (m model) historyStep(step int) model {
	idx := m.historyIdx + step
	if idx < 0 || idx > m.history.Len() {
		return m
	}

	m.historyIdx = idx

	entry, err := m.history.Entry(idx)
	if err != nil {
		m.input.SetValue("")

		return m
	}

	m = m.setMode(entry.Mode)
	m.input.SetValue(entry.Line)
	m.input.CursorEnd()

	return m
}

func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.setMode(modeCtrl)
	}

	return m.setMode(modeEval)
}

func (m model) setMode(mode inputMode) model {
	m.mode = mode

	if mode == modeCtrl {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}

	return m
}

// executeInput evaluates the current line and prints the outcome above the
// input.
func (m model) executeInput() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())

	m.input.SetValue("")

	if line == "" {
		return m, nil
	}

	if err := m.history.Add(line, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(line)
	}

	echo := promptStyle.Render(evalPrompt) + inputStyle.Render(line)

	return m, tea.Println(echo + "\n" + m.evaluate(line))
}

// evaluate expands line and renders the output or its diagnostics.
func (m model) evaluate(line string) string {
	res, err := m.cache.Expand(m.ctxFunc(), line, m.options()...)
	if err != nil {
		var diags macro.Diagnostics
		if !errors.As(err, &diags) {
			return errorStyle.Render("✗ " + err.Error())
		}

		part := make([]string, 0, 2*len(diags))
		for _, d := range diags {
			part = append(part, errorStyle.Render("✗ "+d.Error()))

			for snip := range strings.Lines(d.Snippet(line)) {
				part = append(part, hintStyle.Render(strings.TrimSuffix(snip, "\n")))
			}
		}

		return strings.Join(part, "\n")
	}

	if len(res.Sites) == 0 {
		return hintStyle.Render(res.Output)
	}

	return resultStyle.Render(res.Output)
}

// command runs a control-mode command line.
func (m model) command(line string) (model, tea.Cmd) {
	echo := ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(line)

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "help", "?":
		return m, tea.Println(echo + hintStyle.Render(helpMessage()))

	case "family":
		if arg != "" {
			if !slices.Contains(slices.Collect(macro.Families()), strings.ToLower(arg)) {
				return m, tea.Println(echo + "\n" +
					errorStyle.Render("✗ unknown family: "+arg))
			}

			m.family = macro.ParseFamily(arg)
		}

		return m, tea.Println(echo + "\n" +
			resultStyle.Render(m.family.String()+" "+strconv.Quote(m.family.Separator())))

	case "entries":
		names := macro.EntryNames(m.opts...)

		part := make([]string, 0, len(names))
		for _, name := range names {
			entry, err := macro.LookupEntry(name, m.opts...)
			if err != nil {
				continue
			}

			part = append(part, fmt.Sprintf("%-16s → %s", entry.Name, entry.Primitive))
		}

		return m, tea.Println(echo + "\n" + resultStyle.Render(strings.Join(part, "\n")))

	case "clear":
		m.cache.Clear()

		return m, tea.ClearScreen

	case "quit", "exit", "q":
		m.quitting = true

		return m, tea.Quit

	default:
		return m, tea.Println(echo + "\n" +
			errorStyle.Render("✗ "+ErrUnknownCommand.Error()+": "+name))
	}
}
