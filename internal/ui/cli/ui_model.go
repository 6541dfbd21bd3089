package cli

import (
	"fmt"
	"time"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/scoring"
	"vibecheck/internal/ui/report/formats"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	highRiskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	cleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type fileItem struct {
	title, desc string
	score       int
}

func (i fileItem) Title() string       { return i.title }
func (i fileItem) Description() string { return i.desc }
func (i fileItem) FilterValue() string { return i.title }

type reportMsg struct {
	report *app.Report
}

type model struct {
	list         list.Model
	report       *app.Report
	lastUpdate   time.Time
	highRiskOnly bool
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Files by vibe score"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return model{list: l, lastUpdate: time.Now()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.list.FilterState() != list.Filtering {
				m.highRiskOnly = !m.highRiskOnly
				m.list.SetItems(m.items())
				return m, nil
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case reportMsg:
		m.report = msg.report
		m.lastUpdate = time.Now()
		m.list.SetItems(m.items())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// items lists visible files in report order. Skipped and errored files are
// shown after the scored ones unless only high-risk files are requested.
func (m model) items() []list.Item {
	if m.report == nil {
		return []list.Item{}
	}
	out := make([]list.Item, 0, len(m.report.Files))
	for _, f := range m.report.Visible() {
		if !f.Scored() {
			if m.highRiskOnly {
				continue
			}
			out = append(out, fileItem{title: f.RelPath, desc: unscoredStatus(f), score: -1})
			continue
		}
		if m.highRiskOnly && f.Score.Score < scoring.HighRiskFloor {
			continue
		}
		desc := f.Score.Label
		if top := formats.TopFinding(f.Score); top != "" {
			desc += " · " + top
		}
		out = append(out, fileItem{
			title: fmt.Sprintf("%3d  %s", f.Score.Score, f.RelPath),
			desc:  desc,
			score: f.Score.Score,
		})
	}
	return out
}

func unscoredStatus(f app.FileResult) string {
	if f.Skipped {
		return "skipped: " + f.SkipReason
	}
	return "error: " + f.Error
}

func (m model) View() string {
	if m.report == nil {
		return docStyle.Render(titleStyle("Vibe Check Monitor") + "\n\nScanning...")
	}
	_, scored, skipped, errored := m.report.Counts()
	repo := m.report.Repository
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %d files | %d skipped | %d errors",
		m.lastUpdate.Format("15:04:05"), scored, skipped, errored))

	var summary string
	if repo.HighRisk == 0 {
		summary = cleanStyle.Render(fmt.Sprintf("Repo %d/100 %s", repo.Score, repo.Label))
	} else {
		summary = fmt.Sprintf("%s | %s",
			formats.ScoreStyle(repo.Score).Render(fmt.Sprintf("Repo %d/100 %s", repo.Score, repo.Label)),
			highRiskStyle.Render(fmt.Sprintf("%d high-risk", repo.HighRisk)))
	}
	mode := "all files"
	if m.highRiskOnly {
		mode = "high-risk only"
	}

	header := fmt.Sprintf("%s\n%s | %s | %s (tab)\n",
		titleStyle("Vibe Check Monitor"), status, summary, statusStyle.Render(mode))
	return docStyle.Render(header + "\n" + m.list.View())
}
