package cli

import (
	"context"
	"time"

	"vibecheck/internal/core/app"

	tea "github.com/charmbracelet/bubbletea"
)

// runUI drives a watch session behind the bubbletea monitor. Every rebuilt
// report is sent to the program as a reportMsg.
func runUI(ctx context.Context, a *app.App, target string, debounce time.Duration) error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen(), tea.WithContext(ctx))

	session, err := a.Analyzer.NewWatchSession(ctx, target, debounce, func(r *app.Report) {
		p.Send(reportMsg{report: r})
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return err
	}
	go p.Send(reportMsg{report: session.Report()})

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
