package watchtui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/detect"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

const decisionFetchLimit = 100

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	blockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	allowedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	sectionStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	chartBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Background(lipgloss.Color("196"))
	chartZeroStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Background(lipgloss.Color("238"))
)

// Fetcher is the API surface the dashboard polls. *Client satisfies it.
type Fetcher interface {
	Stats() (Stats, error)
	RecentDecisions(limit int) ([]model.Decision, error)
	Action() (model.ActionKind, error)
	SetAction(kind model.ActionKind) error
}

type tickMsg time.Time

type dataMsg struct {
	stats     Stats
	decisions []model.Decision
	action    model.ActionKind
}

type fetchErrMsg struct{ err error }

// Model is the bubbletea model for the watch dashboard.
type Model struct {
	fetcher        Fetcher
	updateInterval time.Duration

	width  int
	height int
	ready  bool

	stats     Stats
	decisions []model.Decision
	action    model.ActionKind
	lastErr   error

	feed viewport.Model
}

// NewModel creates a dashboard model polling fetcher at the given interval.
func NewModel(fetcher Fetcher, updateInterval time.Duration) Model {
	if updateInterval <= 0 {
		updateInterval = model.DefaultUpdateInterval
	}
	return Model{
		fetcher:        fetcher,
		updateInterval: updateInterval,
		action:         model.DefaultAction,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.updateInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchCmd() tea.Cmd {
	fetcher := m.fetcher
	return func() tea.Msg {
		stats, err := fetcher.Stats()
		if err != nil {
			return fetchErrMsg{err}
		}
		decisions, err := fetcher.RecentDecisions(decisionFetchLimit)
		if err != nil {
			return fetchErrMsg{err}
		}
		action, err := fetcher.Action()
		if err != nil {
			return fetchErrMsg{err}
		}
		return dataMsg{stats: stats, decisions: decisions, action: action}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		case "a":
			next := nextAction(m.action)
			fetcher := m.fetcher
			return m, func() tea.Msg {
				if err := fetcher.SetAction(next); err != nil {
					return fetchErrMsg{err}
				}
				return nil
			}
		}
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := m.height - chartHeight() - 7
		if feedHeight < 3 {
			feedHeight = 3
		}
		if !m.ready {
			m.feed = viewport.New(m.width-4, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = m.width - 4
			m.feed.Height = feedHeight
		}
		m.feed.SetContent(m.renderFeed())
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case dataMsg:
		m.stats = msg.stats
		m.decisions = msg.decisions
		m.action = msg.action
		m.lastErr = nil
		if m.ready {
			atBottom := m.feed.AtBottom()
			m.feed.SetContent(m.renderFeed())
			if atBottom {
				m.feed.GotoBottom()
			}
		}
		return m, nil

	case fetchErrMsg:
		m.lastErr = msg.err
		return m, nil
	}

	if m.ready {
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, cmd
	}
	return m, nil
}

func nextAction(current model.ActionKind) model.ActionKind {
	switch current {
	case model.ActionBack:
		return model.ActionHome
	case model.ActionHome:
		return model.ActionRecents
	default:
		return model.ActionBack
	}
}

func chartHeight() int { return 6 }

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.renderHeader()
	chart := sectionStyle.Width(m.width - 2).Render(m.renderChart())
	feed := sectionStyle.Width(m.width - 2).Render(m.feed.View())
	help := dimStyle.Render("q quit · a cycle action · r refresh · ↑/↓ scroll")

	return lipgloss.JoinVertical(lipgloss.Left, header, chart, feed, help)
}

func (m Model) renderHeader() string {
	blocked := m.stats.Outcomes[string(model.OutcomePerformed)] +
		m.stats.Outcomes[string(model.OutcomeSuppressed)]
	allowed := m.stats.Outcomes[string(model.OutcomeAllowed)]

	parts := []string{
		titleStyle.Render("shortsblocker"),
		statStyle.Render(fmt.Sprintf("total %d", m.stats.Total)),
		blockedStyle.Render(fmt.Sprintf("blocked %d", blocked)),
		allowedStyle.Render(fmt.Sprintf("allowed %d", allowed)),
		dimStyle.Render("action=" + string(m.action)),
	}
	line := strings.Join(parts, "  ")
	if m.lastErr != nil {
		line += "  " + errStyle.Render("api error: "+m.lastErr.Error())
	}
	return line
}

// renderChart draws blocked decisions per minute as a bar chart.
func (m Model) renderChart() string {
	if len(m.stats.PerMinute) == 0 {
		return dimStyle.Render("no decisions in the last hour")
	}

	width := m.width - 6
	if width < 20 {
		width = 20
	}
	maxBars := width / 2
	data := m.stats.PerMinute
	if len(data) > maxBars {
		data = data[len(data)-maxBars:]
	}

	bc := barchart.New(width, chartHeight(),
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for _, mc := range data {
		style := chartBarStyle
		if mc.Blocked == 0 {
			style = chartZeroStyle
		}
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "blocked", Value: float64(mc.Blocked), Style: style},
			},
		})
	}
	bc.Draw()

	title := dimStyle.Render("blocked per minute")
	return title + "\n" + bc.View()
}

// renderFeed formats the decision list, newest last.
func (m Model) renderFeed() string {
	if len(m.decisions) == 0 {
		return dimStyle.Render("waiting for decisions...")
	}

	lines := make([]string, 0, len(m.decisions))
	for _, d := range m.decisions {
		lines = append(lines, formatDecision(d))
	}
	return strings.Join(lines, "\n")
}

func formatDecision(d model.Decision) string {
	ts := dimStyle.Render(d.Timestamp.Local().Format("15:04:05"))
	app := shortAppName(d.App)

	var verdict string
	switch d.Outcome {
	case model.OutcomePerformed:
		verdict = blockedStyle.Render(fmt.Sprintf("BLOCKED %s", d.Action))
	case model.OutcomeSuppressed:
		verdict = errStyle.Render("BLOCKED cooldown")
	default:
		verdict = allowedStyle.Render("allowed")
	}

	return fmt.Sprintf("%s  %-9s  %s", ts, app, verdict)
}

func shortAppName(pkg string) string {
	switch pkg {
	case detect.PackageYouTube:
		return "youtube"
	case detect.PackageInstagram:
		return "instagram"
	}
	if idx := strings.LastIndex(pkg, "."); idx >= 0 && idx < len(pkg)-1 {
		return pkg[idx+1:]
	}
	return pkg
}
