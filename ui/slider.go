package ui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
)

// slider is a bounded numeric control rendered as a progress bar.
type slider struct {
	label    string
	min, max float64
	step     float64
	value    float64
	bar      progress.Model
}

func newSlider(label string, lo, hi, value float64) slider {
	s := slider{
		label: label,
		min:   lo,
		max:   hi,
		step:  0.1,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
			progress.WithWidth(30),
		),
	}
	s.set(value)
	return s
}

func (s *slider) set(v float64) {
	// Snap to one decimal so repeated steps don't accumulate float error.
	v = math.Round(v*10) / 10
	s.value = max(s.min, min(s.max, v))
}

func (s *slider) inc() { s.set(s.value + s.step) }
func (s *slider) dec() { s.set(s.value - s.step) }

func (s slider) percent() float64 {
	if s.max == s.min {
		return 0
	}
	return (s.value - s.min) / (s.max - s.min)
}

func (s slider) view(focused bool) string {
	label := labelStyle.Render(s.label)
	if focused {
		label = focusedLabelStyle.Render(s.label)
	}
	return fmt.Sprintf("%s %s %s", label, s.bar.ViewAs(s.percent()), valueStyle.Render(fmt.Sprintf("%.1f", s.value)))
}
