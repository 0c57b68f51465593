package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/solutyics/loanform/internal/version"
)

// Application branding constants
const (
	AppName  = "LOAN APPLICATION"
	Subtitle = "Fill in the applicant details and submit for a prediction"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth     = 60  // Minimum supported terminal width
	DefaultTerminalWidth = 100 // Used until the first WindowSizeMsg arrives
	LabelWidth           = 24  // Width of the field label column
	InputWidth           = 32  // Visible width of each text input
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5F5F") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Width(LabelWidth).
			Foreground(TextColor)

	FocusedLabelStyle = LabelStyle.
				Foreground(PrimaryColor).
				Bold(true)

	// Field error shown under an input
	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(LabelWidth)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SubtleColor).
			Padding(0, 3).
			MarginTop(1)

	FocusedButtonStyle = ButtonStyle.
				Background(PrimaryColor).
				Bold(true)

	DisabledButtonStyle = ButtonStyle.
				Foreground(SubtleColor).
				Background(lipgloss.Color("236"))

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Results panel
	ResultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(0, 1)

	ErrorBoxStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// BuildHeaderContent creates header content with app name and version
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName)

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render("loanform " + version.Version)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen in the bordered frame with the
// header on top and footer text pinned below the content.
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	switch {
	case terminalWidth <= 0:
		terminalWidth = DefaultTerminalWidth
	case terminalWidth < MinTerminalWidth:
		terminalWidth = MinTerminalWidth
	}

	inner := terminalWidth - 4

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(inner).
		Padding(0, 1).
		Render(BuildHeaderContent())

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(inner).
		Padding(0, 1).
		Render(HelpStyle.Render(footerText))

	body := lipgloss.NewStyle().
		Width(inner).
		Padding(1, 2).
		Render(content)

	frame := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2)
	if terminalHeight > 2 {
		frame = frame.Height(terminalHeight - 2).AlignVertical(lipgloss.Top)
	}

	rendered := frame.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
	if terminalHeight <= 0 {
		return rendered
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, rendered)
}
