package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/bolo/internal/dispatch"
	"github.com/dgnsrekt/bolo/internal/script"
)

var (
	fuchsia   = lipgloss.Color("#EE6FF8")
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	yellow    = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#ECFD65"}

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(fuchsia).
			Padding(0, 1)

	labelStyle        = lipgloss.NewStyle().Width(7).Foreground(gray)
	focusedLabelStyle = labelStyle.Foreground(fuchsia).Bold(true)
	valueStyle        = lipgloss.NewStyle().Foreground(mintGreen)
	helpStyle         = lipgloss.NewStyle().Foreground(gray)
	noteStyle         = lipgloss.NewStyle().Foreground(darkGreen)
	suggestionStyle   = lipgloss.NewStyle().Foreground(gray)

	hindiChunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7730B", Dark: "#FFA657"})
	englishChunkStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0B62D7", Dark: "#79C0FF"})
)

// statusStyle colors the status line by kind.
func statusStyle(k dispatch.Kind) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch k {
	case dispatch.KindSpeaking, dispatch.KindSpeakingChunk:
		return s.Foreground(mintGreen)
	case dispatch.KindFinished:
		return s.Foreground(darkGreen)
	case dispatch.KindError, dispatch.KindUnsupported:
		return s.Foreground(red).Bold(true)
	case dispatch.KindEmpty, dispatch.KindStopped:
		return s.Foreground(yellow)
	default:
		return s.Foreground(gray)
	}
}

func chunkStyle(l script.Lang) lipgloss.Style {
	if l == script.LangHindi {
		return hindiChunkStyle
	}
	return englishChunkStyle
}
