package runner

import "github.com/charmbracelet/lipgloss"

var (
	execStyle = lipgloss.NewStyle().Bold(true)
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	undoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
