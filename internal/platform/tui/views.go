package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/castlechain/internal/core"
	"github.com/vovakirdan/castlechain/internal/ledger"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	walletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Background(lipgloss.Color("236"))

	offlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(1, 3)

	boardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	boardNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// View renders the current phase.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.phase {
	case phaseNameEntry:
		return m.nameEntryView()
	case phaseBoard:
		return m.boardView()
	}
	return m.playingView()
}

func (m Model) playingView() string {
	m.screen.Clear()
	m.game.Render(m.screen)

	// The pause overlay is the natural moment to surface the bindings
	bar := m.statusBar()
	if m.gameState.Paused {
		bar = m.help.View(m.keys)
	}
	return RenderScreen(m.screen) + "\n" + bar
}

// statusBar shows the wallet state, current prices, and the latest
// status message on the bottom line.
func (m Model) statusBar() string {
	var left string
	if m.wallet != nil {
		left = walletStyle.Render(" " + m.wallet.Account.Short() + " ")
	} else {
		left = offlineStyle.Render(" no wallet ")
	}

	if m.quote != nil {
		left += statusStyle.Render(fmt.Sprintf(" h:%.4f %s  u:%.2f %s ",
			m.quote.NativeDisplay(), m.quote.NativeSymbol,
			m.quote.StableDisplay(), m.quote.StableSymbol))
	}

	right := statusStyle.Render(" " + m.status + " ")

	gap := m.screen.Width() - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left + right
	}
	return left + statusStyle.Render(strings.Repeat(" ", gap)) + right
}

func (m Model) nameEntryView() string {
	outcome := "CASTLE FELL"
	if m.gameState.Outcome == core.OutcomeWin {
		outcome = "CASTLE DEFENDED!"
	}
	tag := ""
	if m.gameState.Augmented {
		tag = " (augmented)"
	}

	prompt := promptStyle.Render(fmt.Sprintf(
		"%s\n\nScore: %d%s\n\nName for the board:\n%s\n\nenter submits · esc keeps it local",
		outcome, m.gameState.Score, tag, m.nameInput.View(),
	))

	return lipgloss.Place(
		m.screen.Width(), m.screen.Height(),
		lipgloss.Center, lipgloss.Center,
		prompt,
	)
}

func (m Model) boardView() string {
	title := boardTitleStyle.Render(fmt.Sprintf("  Leaderboard — %s", m.boardScope))

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(m.boardTable.View())
	sb.WriteString("\n")
	if m.boardNote != "" {
		sb.WriteString(boardNoteStyle.Render("  " + m.boardNote))
		sb.WriteString("\n")
	}
	sb.WriteString(boardNoteStyle.Render("  tab switches scope · esc returns"))
	return sb.String()
}

// newBoardTable builds the leaderboard table widget.
func newBoardTable(entries []ledger.Entry, width int) table.Model {
	nameWidth := 20
	if width > 90 {
		nameWidth = 28
	}

	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: nameWidth},
		{Title: "Player", Width: 14},
		{Title: "Score", Width: 10},
		{Title: "Aug", Width: 4},
	}

	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		aug := ""
		if e.Augmented {
			aug = "✦"
		}
		player := ""
		if !e.Player.IsZero() {
			player = e.Player.Short()
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", e.Rank),
			e.Name,
			player,
			fmt.Sprintf("%d", e.Score),
			aug,
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 12)),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return t
}
