package render

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/migration-analyzer/utils"
)

// TUIEngine shows the report in an interactive terminal view. It has no
// output file.
type TUIEngine struct{}

func NewTUIEngine(string) (RenderEngine, error) {
	return &TUIEngine{}, nil
}

func (e *TUIEngine) Render(report *Report) error {
	program := tea.NewProgram(
		newTUIModel(report),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := program.Run()
	return err
}

type tuiTab int

const (
	summaryTab tuiTab = iota
	factsTab
	failuresTab
)

var tabNames = []string{"Summary", "Facts", "Failures"}

const (
	headerHeight = 2
	footerHeight = 1
)

type tuiKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Summary  key.Binding
	Facts    key.Binding
	Failures key.Binding
	Up       key.Binding
	Down     key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Up, k.Down, k.Help, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Summary, k.Facts, k.Failures},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}

var tuiKeys = tuiKeyMap{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
	Summary:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "summary")),
	Facts:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "facts")),
	Failures: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "failures")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "f"), key.WithHelp("pgdn/f", "page down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup/b", "page up")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tuiModel struct {
	report *Report
	tab    tuiTab
	width  int
	height int

	ready    bool
	viewport viewport.Model
	help     help.Model
	keys     tuiKeyMap
}

func newTUIModel(report *Report) *tuiModel {
	return &tuiModel{
		report: report,
		help:   help.New(),
		keys:   tuiKeys,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		vpHeight := max(msg.Height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.setTab(utils.CycleEnum(m.tab, 1, failuresTab))
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setTab(utils.CycleEnum(m.tab, -1, failuresTab))
			return m, nil
		case key.Matches(msg, m.keys.Summary):
			m.setTab(summaryTab)
			return m, nil
		case key.Matches(msg, m.keys.Facts):
			m.setTab(factsTab)
			return m, nil
		case key.Matches(msg, m.keys.Failures):
			m.setTab(failuresTab)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *tuiModel) setTab(tab tuiTab) {
	m.tab = tab
	m.refresh()
}

func (m *tuiModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

func (m *tuiModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		utils.HelpBarStyle.Render(m.help.View(m.keys)),
	)
}

func (m *tuiModel) renderHeader() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := utils.TabInactiveStyle
		if tuiTab(i) == m.tab {
			style = utils.TabActiveStyle
		}
		label := fmt.Sprintf("%s [%d]", name, i+1)
		if tuiTab(i) == failuresTab && m.report.TotalFailures() > 0 {
			label = fmt.Sprintf("%s (%d) [%d]", name, m.report.TotalFailures(), i+1)
		}
		tabs[i] = style.Render(label)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(tabs, "  "),
		strings.Repeat("─", max(m.width, 1)),
	)
}

func (m *tuiModel) content() string {
	switch m.tab {
	case factsTab:
		return m.renderFacts()
	case failuresTab:
		return m.renderFailures()
	default:
		return m.renderSummary()
	}
}

func (m *tuiModel) renderSummary() string {
	r := m.report
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", utils.InfoStyle.Render("Report:   "), r.ID)
	fmt.Fprintf(&b, "%s %s\n", utils.InfoStyle.Render("Input:    "), r.InputPath)
	if r.Elapsed > 0 {
		fmt.Fprintf(&b, "%s %s\n", utils.InfoStyle.Render("Elapsed:  "), utils.FormatDuration(r.Elapsed))
	}
	fmt.Fprintf(&b, "\n%d archives  %d entries  %d facts  %s\n\n",
		len(r.Archives), r.TotalEntries(), r.TotalFacts(), failureCount(r.TotalFailures()))

	totals := r.CategoryTotals()
	if len(totals) == 0 {
		b.WriteString(utils.MutedStyle.Render("No facts found."))
		return b.String()
	}

	b.WriteString(utils.TitleStyle.Render("Facts by category") + "\n")
	b.WriteString(renderCategoryChart(totals, max(m.width-4, 20)))
	b.WriteString("\n\n")
	for _, t := range totals {
		marker := lipgloss.NewStyle().Foreground(utils.CategoryColor(t.Name)).Render("■")
		fmt.Fprintf(&b, "  %s %s: %d\n", marker, t.Name, t.Facts)
	}
	return b.String()
}

func failureCount(n int) string {
	text := fmt.Sprintf("%d failures", n)
	if n > 0 {
		return utils.CriticalStyle.Render(text)
	}
	return utils.GoodStyle.Render(text)
}

func renderCategoryChart(totals []CategoryTotal, width int) string {
	data := make([]barchart.BarData, 0, len(totals))
	for _, t := range totals {
		data = append(data, barchart.BarData{
			Label: t.Name,
			Values: []barchart.BarValue{{
				Name:  t.Name,
				Value: float64(t.Facts),
				Style: lipgloss.NewStyle().Foreground(utils.CategoryColor(t.Name)),
			}},
		})
	}

	chart := barchart.New(width, len(totals)*2,
		barchart.WithDataSet(data),
		barchart.WithHorizontalBars(),
	)
	chart.Draw()
	return chart.View()
}

func (m *tuiModel) renderFacts() string {
	var b strings.Builder
	width := max(m.width-8, 20)

	for _, archive := range m.report.Archives {
		header := fmt.Sprintf("%s  %d entries, %d facts", archive.Name, archive.Entries, archive.FactCount())
		b.WriteString(utils.TitleStyle.Render(header) + "\n")
		if len(archive.Categories) == 0 {
			b.WriteString(utils.MutedStyle.Render("  no facts") + "\n")
		}
		for _, category := range archive.Categories {
			style := lipgloss.NewStyle().Foreground(utils.CategoryColor(category.Name)).Bold(true)
			fmt.Fprintf(&b, "  %s\n", style.Render(fmt.Sprintf("%s (%d)", category.Name, len(category.Facts))))
			for _, fact := range category.Facts {
				fmt.Fprintf(&b, "    %s %s\n",
					utils.TruncateString(fact.Summary, width),
					utils.MutedStyle.Render(listEntries(fact.Entries)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *tuiModel) renderFailures() string {
	if m.report.TotalFailures() == 0 {
		return utils.GoodStyle.Render("Every entry was analyzed.")
	}

	var b strings.Builder
	for _, archive := range m.report.Archives {
		if len(archive.Failures) == 0 {
			continue
		}
		b.WriteString(utils.TitleStyle.Render(archive.Name) + "\n")
		for _, f := range archive.Failures {
			fmt.Fprintf(&b, "  %s %s\n", utils.CriticalStyle.Render(f.Entry), utils.MutedStyle.Render("["+f.Analyzer+"]"))
			fmt.Fprintf(&b, "    %s\n", f.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}
