package status

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"trendpress/internal/domain"
)

type RenderOptions struct {
	Now time.Time
	// StaleAfter marks sessions whose last validation is older than this.
	StaleAfter time.Duration
}

func renderView(sessions []domain.Session, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Platform Sessions"),
		s.header.Render(fmt.Sprintf("sessions: %d", len(sessions))),
	}

	if len(sessions) == 0 {
		lines = append(lines, s.empty.Render("No sessions available. Run 'trendpress login' first."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, session := range sessions {
		lines = append(lines, s.section.Render(renderSession(session, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(session domain.Session, opts RenderOptions, s styles) string {
	parts := []string{
		s.account.Render(sessionTitle(session)),
		statusLine(session, opts, s),
		s.detail.Render(fmt.Sprintf("id: %s", session.ID)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sessionTitle(session domain.Session) string {
	name := session.AccountName
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("%s (%s)", name, session.Platform)
}

func statusLine(session domain.Session, opts RenderOptions, s styles) string {
	label := s.metaKey.Render("status:")
	state := statusStyle(session.Status, s).Render(string(session.Status))
	validated := s.metaVal.Render(fmt.Sprintf("(validated %s)", formatValidatedRelative(session.LastValidatedAt, opts.Now)))

	line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", state, " ", validated)

	if isStale(session.LastValidatedAt, opts.Now, opts.StaleAfter) {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func statusStyle(status domain.SessionStatus, s styles) lipgloss.Style {
	switch status {
	case domain.SessionStatusActive:
		return s.active
	case domain.SessionStatusPending:
		return s.pending
	default:
		return s.warning
	}
}

func isStale(validatedAt, now time.Time, staleAfter time.Duration) bool {
	if validatedAt.IsZero() || now.IsZero() || staleAfter <= 0 {
		return false
	}
	return now.Sub(validatedAt) > staleAfter
}

func formatValidatedRelative(validatedAt, now time.Time) string {
	if validatedAt.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return validatedAt.Format(time.RFC3339)
	}

	elapsed := now.Sub(validatedAt)
	if elapsed < time.Minute {
		return "just now"
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	}
	if elapsed < 24*time.Hour {
		hours := int(math.Round(elapsed.Hours()))
		return fmt.Sprintf("%dh ago", hours)
	}

	days := int(elapsed.Hours() / 24)
	suffix := "days"
	if days == 1 {
		suffix = "day"
	}
	return fmt.Sprintf("%d %s ago", days, suffix)
}
