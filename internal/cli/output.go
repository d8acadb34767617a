package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dalemusser/assistcenter/internal/app/store/sqlitestore"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/fatih/color"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	pending = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// explain turns engine and store errors into operator-facing messages.
func explain(err error) error {
	var dep *assignment.DependentsError
	switch {
	case errors.As(err, &dep):
		return fmt.Errorf("refused: %d %s still assigned; reassign them first", dep.Count, dep.Entity)
	case errors.Is(err, sqlitestore.ErrDuplicate), errors.Is(err, assignment.ErrNotFound):
		return err
	case errors.Is(err, assignment.ErrConflict):
		return fmt.Errorf("conflict, re-read and retry: %w", err)
	}
	return err
}
