package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shelfchat/internal/api"
)

const (
	cardWidth     = 30
	unknownAuthor = "Unknown author"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(cardWidth)

	cardTitleStyle  = lipgloss.NewStyle().Bold(true)
	cardAuthorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cardScoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// LikedChecker reports whether a book is in the liked set.
type LikedChecker interface {
	Contains(id api.BookID) bool
	IDs() []api.BookID
}

// FormatScore renders a score with three decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("Score: %.3f", score)
}

// RenderCard renders one recommendation as a bordered card: title (or the
// book id when the title is missing), author and, when present, the score.
func RenderCard(r api.Recommendation) string {
	title := r.Title
	if title == "" {
		title = string(r.BookID)
	}
	author := r.Author
	if author == "" {
		author = unknownAuthor
	}

	lines := []string{
		cardTitleStyle.Render(truncate(title, cardWidth-2)),
		cardAuthorStyle.Render(truncate(author, cardWidth-2)),
	}
	if r.Score != nil {
		lines = append(lines, cardScoreStyle.Render(FormatScore(*r.Score)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// PrintRecommendations lays cards out in rows that fit the display width.
func (d *Display) PrintRecommendations(recs []api.Recommendation) {
	if len(recs) == 0 {
		d.PrintInfo("No recommendations yet")
		return
	}

	d.printf("\n%s\n\n", d.paint(colorBold, "Your Recommendations"))

	perRow := max(d.width/(cardWidth+4), 1)
	for start := 0; start < len(recs); start += perRow {
		end := min(start+perRow, len(recs))
		cards := make([]string, 0, end-start)
		for _, r := range recs[start:end] {
			cards = append(cards, RenderCard(r))
		}
		d.printf("%s\n", lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
}

// PrintSuggestions lists search hits numbered from 1, marking liked ones,
// followed by the liked ids.
func (d *Display) PrintSuggestions(books []api.BookSuggestion, liked LikedChecker) {
	if len(books) == 0 {
		d.PrintInfo("No matching books")
	}
	for i, b := range books {
		mark := "  "
		if liked != nil && liked.Contains(b.BookID) {
			mark = d.paint(colorGreen, "♥ ")
		}
		d.printf("%s%3d. %s — %s %s\n", mark, i+1, b.Title, b.Author, d.paint(colorGray, "["+string(b.BookID)+"]"))
	}
	d.PrintLiked(liked)
}

// PrintLiked shows the liked ids in insertion order.
func (d *Display) PrintLiked(liked LikedChecker) {
	if liked == nil {
		return
	}
	ids := liked.IDs()
	if len(ids) == 0 {
		d.printf("%s\n", d.paint(colorGray, "❤️ 0 books liked"))
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	d.printf("%s\n", d.paint(colorGray, fmt.Sprintf("❤️ %d books liked. Selected: %s", len(ids), strings.Join(parts, ", "))))
}

// Alert surfaces a failed recommendation fetch on a line of its own,
// stopping any running spinner first.
func (d *Display) Alert(err error) {
	d.StopSpinner()
	d.printf("%s\n", d.paint(colorRed, fmt.Sprintf("✗ Error fetching recommendations: %v", err)))
}
