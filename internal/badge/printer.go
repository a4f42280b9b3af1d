package badge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// SpoolPrinter writes badge markup into a spool directory where the print
// agent at the registration desk picks files up. Writes go through a temp
// file and rename so the agent never sees a partial badge.
type SpoolPrinter struct {
	dir    string
	logger *zap.Logger
}

// NewSpoolPrinter creates a spool printer. dir defaults to the OS temp dir.
func NewSpoolPrinter(dir string, logger *zap.Logger) *SpoolPrinter {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpoolPrinter{dir: dir, logger: logger}
}

// Print spools the badge markup as {badgeID}.svg.
func (p *SpoolPrinter) Print(ctx context.Context, badgeID, markup string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if markup == "" {
		return errors.New("spool: empty badge markup")
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("spool dir: %w", err)
	}

	final := filepath.Join(p.dir, badgeID+".svg")
	tmp, err := os.CreateTemp(p.dir, "badge-*.svg.tmp")
	if err != nil {
		return fmt.Errorf("spool temp file: %w", err)
	}
	if _, err := tmp.WriteString(markup); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("spool write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("spool close: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("spool rename: %w", err)
	}
	p.logger.Debug("badge spooled", zap.String("badge_id", badgeID), zap.String("file", final))
	return nil
}
