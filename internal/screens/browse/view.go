package browse

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wmview/internal/ui/components"
	"github.com/abhisek/wmview/internal/ui/layout"
	"github.com/abhisek/wmview/internal/ui/theme"
	"github.com/abhisek/wmview/internal/verify"
	"github.com/abhisek/wmview/internal/viewer"
)

const (
	loadFailedText = "Failed to load dataset."
	noMatchText    = "No samples match the current filters."
)

func (s *BrowseScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered(theme.Hint, width, "\n\n  Loading dataset...")
	}
	if s.loadErr {
		return layout.Centered(theme.Incorrect, width, "\n\n"+loadFailedText) + "\n" +
			layout.Centered(theme.Hint, width, "Details are in the log file. Press q to quit.")
	}

	var b strings.Builder
	b.WriteString(renderFilters(s.view, width))
	b.WriteString("\n")

	if s.view.Empty() {
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Hint, width, noMatchText))
		return b.String()
	}

	inner := width - 4
	b.WriteString(components.ProgressBar{
		Label:   "  Position",
		Percent: float64(s.view.Index+1) / float64(s.view.Total),
		Suffix:  positionLabel(s.view),
		Width:   inner,
	}.View())
	b.WriteString("\n\n")

	b.WriteString(s.renderSample(inner))
	b.WriteString("\n")
	b.WriteString(s.renderAnswer())
	b.WriteString("\n")
	if pred := s.renderPrediction(inner); pred != "" {
		b.WriteString("\n")
		b.WriteString(pred)
	}
	return b.String()
}

// renderFilters renders the three selectors on one line.
func renderFilters(v viewer.ViewState, width int) string {
	field := func(key, label, value string) string {
		return theme.Label.Render(fmt.Sprintf("%s %s: ", key, label)) + theme.Value.Render(value)
	}
	line := "  " + strings.Join([]string{
		field("[s]", "Setting", v.Setting.Label()),
		field("[t]", "Task", v.TaskLabel()),
		field("[c]", "Steps", v.StepsLabel()),
	}, "    ")

	if !layout.IsCompactWidth(width) && len(v.StepLengths) > 0 {
		steps := make([]string, len(v.StepLengths))
		for i, n := range v.StepLengths {
			steps[i] = fmt.Sprint(n)
		}
		line += theme.Hint.Render("  (" + strings.Join(steps, ", ") + ")")
	}
	return line
}

func (s *BrowseScreen) renderSample(width int) string {
	sample := s.view.Sample

	var b strings.Builder
	b.WriteString(theme.Title.Render(sample.ID))
	b.WriteString(theme.Label.Render(fmt.Sprintf("   %s  ·  %s  ·  %d steps", sample.Type, sample.TaskName, sample.StepCount())))
	b.WriteString("\n\n")

	b.WriteString(components.RenderMarkdown(sample.Question, width-4))
	b.WriteString("\n")

	if len(sample.Images) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render("Frames"))
		b.WriteString("\n")
		for i, img := range sample.Images {
			b.WriteString(theme.Body.Render(fmt.Sprintf("  %d. %s", i+1, img)))
			b.WriteString("\n")
		}
	}

	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (s *BrowseScreen) renderAnswer() string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(theme.Label.Render("Ground truth: "))
	if s.view.Revealed {
		b.WriteString(theme.Value.Render(s.view.Sample.GTAnswer.String()))
	} else {
		b.WriteString(theme.Hint.Render("hidden (r to reveal)"))
	}
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(theme.Label.Render("Your answer: "))
	if s.input.Focused() || s.input.Value() != "" {
		b.WriteString(s.input.View())
	} else {
		b.WriteString(theme.Hint.Render("press a to answer"))
	}

	if out := s.view.Outcome; out != nil {
		b.WriteString("\n  ")
		b.WriteString(renderOutcome(out))
	}
	return b.String()
}

func renderOutcome(out *viewer.Outcome) string {
	switch {
	case out.Err != nil:
		return theme.Warning.Render(verifyMessage(out.Err))
	case out.Result.Correct:
		return theme.Correct.Render("Correct!")
	default:
		return theme.Incorrect.Render("Not quite.")
	}
}

// verifyMessage turns a verifier error into an instruction.
func verifyMessage(err error) string {
	switch verify.Kind(err) {
	case "malformed":
		return "That is not valid JSON. Enter a list such as [1, 2, 3]."
	case "not_sequence":
		return "The answer must be a list such as [1, 2, 3]."
	case "out_of_range":
		return fmt.Sprintf("Every value must be an integer from %d to %d.", verify.MinValue, verify.MaxValue)
	default:
		return err.Error()
	}
}

func (s *BrowseScreen) renderPrediction(width int) string {
	switch {
	case s.predicting:
		return "  " + theme.Hint.Render("Asking the model...")
	case s.predictErr != "":
		return "  " + theme.Warning.Render(s.predictErr)
	case s.prediction == nil:
		return ""
	}

	p := s.prediction
	var verdict string
	switch {
	case p.VerifyErr != nil:
		verdict = theme.Warning.Render(verifyMessage(p.VerifyErr))
	case p.Result.Correct:
		verdict = theme.Correct.Render("Correct")
	default:
		verdict = theme.Incorrect.Render("Incorrect")
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(theme.Label.Render(fmt.Sprintf("Model (%s): ", p.Model)))
	b.WriteString(theme.Value.Render(p.Raw))
	b.WriteString("  ")
	b.WriteString(verdict)
	if p.Reasoning != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(2).Foreground(theme.TextDim).Render(p.Reasoning))
	}
	return b.String()
}

func positionLabel(v viewer.ViewState) string {
	return fmt.Sprintf("%d / %d", v.Index+1, v.Total)
}
