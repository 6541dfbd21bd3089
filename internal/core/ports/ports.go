package ports

import (
	"context"
	"time"

	"vibecheck/internal/data/history"
	"vibecheck/internal/engine/parser"
)

// SourceParser abstracts turning file content into a syntax tree.
type SourceParser interface {
	Parse(path string, content []byte) (*parser.Tree, error)
	IsSupportedPath(path string) bool
}

// HistoryStore abstracts scan persistence for the trend workflow.
type HistoryStore interface {
	SaveScan(ctx context.Context, scan history.Scan) error
	LoadScans(ctx context.Context, projectKey string, since time.Time) ([]history.Scan, error)
	LoadFileScores(ctx context.Context, scanID string) ([]history.FileRecord, error)
	Close() error
}

var (
	_ SourceParser = (*parser.Parser)(nil)
	_ HistoryStore = (*history.Store)(nil)
)
