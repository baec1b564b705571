package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/router"
	"github.com/abhisek/wmview/internal/screen"
	"github.com/abhisek/wmview/internal/store"
	"github.com/abhisek/wmview/internal/ui/components"
	"github.com/abhisek/wmview/internal/ui/layout"
	"github.com/abhisek/wmview/internal/ui/theme"
)

// attemptsShown bounds the attempts loaded for one sample.
const attemptsShown = 50

type historyLoadedMsg struct {
	Attempts []store.Attempt
	Accuracy []store.SourceAccuracy
	Err      error
}

// HistoryScreen lists past verification attempts on one sample together
// with the accuracy of each answer source.
type HistoryScreen struct {
	repo     store.AttemptRepo
	sample   dataset.Sample
	attempts []store.Attempt
	accuracy []store.SourceAccuracy
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen for sample. A nil repo means history is
// disabled.
func New(repo store.AttemptRepo, sample dataset.Sample) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		sample:   sample,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	if s.repo == nil {
		s.loaded = true
		return nil
	}
	repo, id := s.repo, s.sample.ID
	return func() tea.Msg {
		ctx := context.Background()

		attempts, err := repo.List(ctx, store.QueryOpts{SampleID: id, Limit: attemptsShown})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		accuracy, err := repo.AccuracyBySource(ctx, store.QueryOpts{SampleID: id})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Attempts: attempts, Accuracy: accuracy}
	}
}

func (s *HistoryScreen) Title() string {
	return "History: " + s.sample.ID
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.accuracy = msg.Accuracy
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "h", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if s.repo == nil {
		return layout.Centered(theme.Hint, width, "\n\n  History is disabled.")
	}
	if !s.loaded {
		return layout.Centered(theme.Hint, width, "\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return layout.Centered(theme.Hint, width, "\n\n  No attempts on this sample yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	barWidth := min(width-4, 60)
	for _, acc := range s.accuracy {
		bar := components.ProgressBar{
			Label:   fmt.Sprintf("%-24s", acc.Source),
			Percent: acc.Rate(),
			Suffix:  fmt.Sprintf("%d/%d", acc.Correct, acc.Attempts),
			Width:   barWidth,
		}
		b.WriteString("  " + bar.View() + "\n")
	}
	b.WriteString("\n")

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		verdict := theme.Incorrect.Render("✗")
		if a.Correct {
			verdict = theme.Correct.Render("✓")
		}
		line := fmt.Sprintf("%s%s  %-24s  %s", prefix, a.Timestamp.Format("Jan 02 15:04"), a.Source, truncate(a.RawInput, 30))

		style := theme.Body
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "  " + verdict)
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    session %s  ·  %s  ·  %d steps", a.SessionID, a.Setting, a.StepCount)
			if a.ErrorKind != "" {
				detail += "  ·  rejected: " + a.ErrorKind
			}
			b.WriteString(theme.Hint.Render(detail))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
