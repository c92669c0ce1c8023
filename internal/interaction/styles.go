package interaction

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	CrownIcon   = "👑"
	ShieldIcon  = "🛡️"
	DaggerIcon  = "🗡️"
	SuccessIcon = "✅"
	FailIcon    = "❌"
	SpeechIcon  = "💬"
)

// Lipgloss styles shared by all console prompts
var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	resistanceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	minionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	secretStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	boardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
