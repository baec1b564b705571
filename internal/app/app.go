package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wmview/internal/logging"
	"github.com/abhisek/wmview/internal/router"
	"github.com/abhisek/wmview/internal/screen"
	"github.com/abhisek/wmview/internal/screens/browse"
	"github.com/abhisek/wmview/internal/ui/layout"
)

// Options configures the application. See browse.Options.
type Options = browse.Options

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	logger *zap.Logger
	width  int
	height int
}

// newAppModel creates a new AppModel with the browse screen.
func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(browse.New(opts)),
		logger: logging.OrNop(opts.Logger),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.QuitMsg:
		return m, m.quit()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// quit lets screens persist their state before the program exits.
func (m AppModel) quit() tea.Cmd {
	m.router.Close()
	m.logger.Info("viewer closed")
	return tea.Quit
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current window size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}
	if len(footerHints) == 0 {
		footerHints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	return err
}
