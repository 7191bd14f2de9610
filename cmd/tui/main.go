package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Align(lipgloss.Center)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	geneIDStyle    = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	keywordStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	mutedTextStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// Entry and the nested types mirror the database.json written by cmd/main.go.
type Entry struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

type Gene struct {
	ID       string `json:"id"`
	Ortholog string `json:"ortholog,omitempty"`
}

type PathwayMap struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Section struct {
	Keyword string `json:"keyword"`
	Value   string `json:"value"`
}

type PathwayRecord struct {
	ID          string     `json:"id"`
	Description string     `json:"description,omitempty"`
	Entry       Entry      `json:"entry"`
	Name        string     `json:"name,omitempty"`
	Organism    string     `json:"organism,omitempty"`
	PathwayMap  PathwayMap `json:"pathway_map,omitempty"`
	Genes       []Gene     `json:"genes,omitempty"`
	RelPathways []string   `json:"rel_pathways,omitempty"`
	Sections    []Section  `json:"sections,omitempty"`
}

type listItem struct {
	record PathwayRecord
}

func (i listItem) FilterValue() string {
	return i.record.ID + " " + i.record.Name
}

func (i listItem) Title() string {
	if i.record.ID != "" {
		return i.record.ID
	}
	return i.record.Entry.ID
}

func (i listItem) Description() string {
	name := i.record.Name
	if name == "" {
		name = i.record.Description
	}
	return fmt.Sprintf("%s    Genes: %d", name, len(i.record.Genes))
}

type mode int

const (
	modeGenes mode = iota
	modeRelated
	modeOverview
)

func (m mode) String() string {
	switch m {
	case modeGenes:
		return "Genes"
	case modeRelated:
		return "Related pathways"
	case modeOverview:
		return "Overview"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	records       []PathwayRecord
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	totalRecords  int
	selectedIndex int
}

// cycleMode advances to the next view mode, wrapping around.
func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func loadRecords(path string) ([]PathwayRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []PathwayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func newModel(records []PathwayRecord) model {
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "KEGG Pathways"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:         l,
		records:      records,
		currentMode:  modeGenes,
		totalRecords: len(records),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate list dimensions (left panel takes 1/3 of width)
		listWidth := msg.Width / 3
		listHeight := msg.Height - 4 // Account for borders and status

		m.list.SetWidth(listWidth)
		m.list.SetHeight(listHeight)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab":
			return m.cycleMode(), nil

		case "1":
			m.currentMode = modeGenes
			return m, nil

		case "2":
			m.currentMode = modeRelated
			return m, nil

		case "3":
			m.currentMode = modeOverview
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpModal()
	}

	leftPanel := m.renderLeftPanel()
	rightPanel := m.renderRightPanel()
	statusBar := m.renderStatusBar()

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanel,
		rightPanel,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		statusBar,
	)
}

func (m model) renderLeftPanel() string {
	listWidth := m.width / 3

	listContainer := containerStyle.
		Width(listWidth - 2). // Account for padding
		Height(m.height - 4). // Account for status bar
		Render(m.list.View())

	return listContainer
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3

	if len(m.records) == 0 {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No pathways available")
	}

	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No pathway selected")
	}

	record := selectedItem.(listItem).record

	header := titleStyle.Render(fmt.Sprintf("%s - %s", record.ID, record.Name))
	meta := mutedTextStyle.Render(fmt.Sprintf("%s    Genes: %d    Related: %d",
		record.Organism, len(record.Genes), len(record.RelPathways)))

	content := strings.Join(m.buildRightLines(record), "\n")
	body := sectionStyle.
		Width(rightWidth - 6). // Account for padding and borders
		Render(content)

	panelContent := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		meta,
		"",
		body,
	)

	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(panelContent)
}

// buildRightLines renders the detail panel content for the current mode.
func (m model) buildRightLines(record PathwayRecord) []string {
	switch m.currentMode {
	case modeGenes:
		if len(record.Genes) == 0 {
			return []string{mutedTextStyle.Render("No genes in this entry")}
		}
		lines := make([]string, 0, len(record.Genes))
		for _, g := range record.Genes {
			lines = append(lines, geneIDStyle.Render(g.ID)+"  "+g.Ortholog)
		}
		return lines
	case modeRelated:
		if len(record.RelPathways) == 0 {
			return []string{mutedTextStyle.Render("No related pathways")}
		}
		return append([]string{}, record.RelPathways...)
	default:
		lines := []string{
			keywordStyle.Render("ENTRY") + "  " + record.Entry.ID + " " + record.Entry.Type,
		}
		if record.PathwayMap.ID != "" {
			lines = append(lines, keywordStyle.Render("MAP")+"    "+record.PathwayMap.ID+"  "+record.PathwayMap.Name)
		}
		for _, s := range record.Sections {
			lines = append(lines, keywordStyle.Render(s.Keyword)+"  "+s.Value)
		}
		return lines
	}
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d pathways", m.selectedIndex+1, m.totalRecords)
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode.String())
	rightInfo := "Press 'h' for help - 'q' to quit"

	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6 // Account for padding

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		rightSpacing := spacing - leftSpacing

		statusContent = fmt.Sprintf("%s%s%s%s%s",
			leftInfo,
			strings.Repeat(" ", leftSpacing),
			centerInfo,
			strings.Repeat(" ", rightSpacing),
			rightInfo,
		)
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}

	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `KEGG Pathway Browser - Help

Navigation:
  up/down, j/k Navigate list
  /            Filter pathways
  Enter        Select pathway

View Modes:
  1            Show genes
  2            Show related pathways
  3            Show entry overview
  Tab          Cycle modes

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Current Mode: ` + m.currentMode.String() + `
Total Pathways: ` + fmt.Sprintf("%d", m.totalRecords) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Align(lipgloss.Center)

	modal := modalStyle.Render(helpContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

func main() {
	dbPath := flag.String("db", "database.json", "path to database.json written by the fetcher")
	flag.Parse()

	records, err := loadRecords(*dbPath)
	if err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(newModel(records), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
