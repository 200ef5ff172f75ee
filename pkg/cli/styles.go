package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/anthonypate54/familynest/pkg/types"
)

// One accent colour plus a status trio shared by messages and permission states.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	good    = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	bad     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	caution = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	faint   = lipgloss.AdaptiveColor{Light: "#57534E", Dark: "#A8A29E"}
)

const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "→"
	SymbolBullet  = "•"
)

var (
	BrandStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	CodeStyle    = lipgloss.NewStyle().Foreground(accent)
	InfoStyle    = CodeStyle
	SuccessStyle = lipgloss.NewStyle().Foreground(good)
	ErrorStyle   = lipgloss.NewStyle().Foreground(bad).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(caution)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(faint)
	HintStyle    = DimStyle.Italic(true)

	// KeyStyle pads labels so status and session fields line up
	KeyStyle = DimStyle.Width(12)

	TableHeaderStyle = DimStyle.Bold(true)
	TableCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// StatusStyle picks the style for a permission status
func StatusStyle(status string) lipgloss.Style {
	switch types.PermissionStatus(status) {
	case types.PermissionGranted:
		return SuccessStyle
	case types.PermissionDenied:
		return ErrorStyle
	}
	return DimStyle
}
