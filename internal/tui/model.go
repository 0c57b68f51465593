package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/predict"
)

// predictionMsg carries the outcome of a prediction request back to Update
type predictionMsg struct {
	outcome form.Outcome
	err     error
}

// keyMap defines key bindings for the form
type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Submit, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// Model is the terminal loan form. Field focus changes are reported to the
// form state machine as blur events and keystrokes as change events.
type Model struct {
	State form.State

	inputs []textinput.Model
	// focus indexes inputs; len(inputs) is the submit button
	focus int

	Spinner spinner.Model
	Help    help.Model
	Keys    keyMap

	predictor predict.Predictor
	ctx       context.Context
	sessionID string
	lastErr   error

	Width  int
	Height int
}

// New creates the form with the first field focused.
func New(ctx context.Context, predictor predict.Predictor) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	inputs := make([]textinput.Model, len(form.AllFields))
	for i, f := range form.AllFields {
		in := textinput.New()
		in.Placeholder = f.Placeholder()
		in.CharLimit = 64
		in.Width = InputWidth
		in.Prompt = "› "
		inputs[i] = in
	}
	inputs[0].Focus()

	return Model{
		State:     form.NewState(),
		inputs:    inputs,
		Spinner:   s,
		Help:      help.New(),
		Keys:      defaultKeyMap(),
		predictor: predictor,
		ctx:       ctx,
		sessionID: uuid.New().String(),
	}
}

// Init starts the cursor blinking
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case predictionMsg:
		m.State, _ = form.Reduce(m.State, form.Settled{Outcome: msg.outcome})
		m.lastErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.State.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Next):
			return m.moveFocus(1)
		case key.Matches(msg, m.Keys.Prev):
			return m.moveFocus(-1)
		case key.Matches(msg, m.Keys.Submit):
			return m.submit()
		}
	}

	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards msg to the focused input and reports a change
// when its value differs afterwards. The status line goes with the general
// error once an edit leaves the failed phase.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus >= len(m.inputs) {
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	if after := m.inputs[m.focus].Value(); after != before {
		m.State, _ = form.Reduce(m.State, form.Change{Field: form.AllFields[m.focus], Value: after})
		if m.State.Phase() != form.PhaseFailed {
			m.lastErr = nil
		}
	}
	return m, cmd
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	stops := len(m.inputs) + 1

	if m.focus < len(m.inputs) {
		m.State, _ = form.Reduce(m.State, form.Blur{Field: form.AllFields[m.focus]})
		m.inputs[m.focus].Blur()
	}

	m.focus = (m.focus + delta + stops) % stops

	if m.focus < len(m.inputs) {
		m.inputs[m.focus].Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.State.CanSubmit() {
		return m, nil
	}

	next, payload := form.Reduce(m.State, form.Submit{})
	m.State = next

	fieldErrors := 0
	for _, f := range form.AllFields {
		if next.Errors.Field(f) != "" {
			fieldErrors++
		}
	}
	logging.LogSubmission("tui", m.sessionID, fieldErrors, payload != nil)

	if payload == nil {
		return m, nil
	}
	m.lastErr = nil
	return m, tea.Batch(m.Spinner.Tick, PredictCmd(m.ctx, m.predictor, *payload))
}

// PredictCmd sends payload and reports the outcome as a message for Update.
func PredictCmd(ctx context.Context, predictor predict.Predictor, payload form.Payload) tea.Cmd {
	return func() tea.Msg {
		result, err := predictor.Predict(ctx, payload)
		return predictionMsg{outcome: predict.Settle(result, err), err: err}
	}
}

// Focused returns the field with focus, or false when the submit button has it.
func (m Model) Focused() (form.Field, bool) {
	if m.focus < len(m.inputs) {
		return form.AllFields[m.focus], true
	}
	return "", false
}

// View renders the form
func (m Model) View() string {
	return RenderApplicationContainer(m.renderContent(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m Model) renderContent() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Loan Application Form"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(Subtitle))
	b.WriteString("\n\n")

	for i, f := range form.AllFields {
		label := LabelStyle
		if i == m.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(f.Label()), m.inputs[i].View()))
		b.WriteString("\n")
		if msg := m.State.Errors.Field(f); msg != "" {
			b.WriteString(FieldErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderButton())
	b.WriteString("\n\n")
	b.WriteString(m.renderResults())
	return b.String()
}

func (m Model) renderButton() string {
	switch {
	case m.State.Loading:
		return DisabledButtonStyle.Render("Submitting...")
	case m.focus == len(m.inputs):
		return FocusedButtonStyle.Render("Submit")
	default:
		return ButtonStyle.Render("Submit")
	}
}

func (m Model) renderResults() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Prediction Results"))
	b.WriteString("\n")

	switch {
	case m.State.Loading:
		b.WriteString(m.Spinner.View() + " Waiting for the prediction service...")
	case m.State.Result != nil:
		b.WriteString(ResultBoxStyle.Render("Response:\n" + m.State.Result.Display()))
	default:
		b.WriteString(SubtitleStyle.Render("Submit the form to see a prediction."))
	}

	var problems []string
	for _, k := range m.State.Errors.Keys() {
		if _, isField := form.ParseField(k); isField || k == form.GeneralKey {
			continue
		}
		problems = append(problems, k+": "+m.State.Errors[k])
	}
	if general := m.State.Errors.General(); general != "" {
		problems = append([]string{general}, problems...)
	}
	if len(problems) > 0 {
		b.WriteString("\n")
		b.WriteString(ErrorBoxStyle.Render(strings.Join(problems, "\n")))
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render(predict.ShortMessage(m.lastErr)))
	}
	return b.String()
}

// Run starts the terminal form and blocks until the user quits.
func Run(ctx context.Context, predictor predict.Predictor) error {
	p := tea.NewProgram(New(ctx, predictor), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
