// Package cli implements assistctl, a command-line front end to the
// assignment engine backed by a local SQLite file.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dalemusser/assistcenter/internal/app/store/sqlitestore"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/auditlog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// actor is recorded on every audit event the CLI produces.
const actor = "cli"

// app carries the state shared by all subcommands. The store is opened
// lazily by the root command's pre-run hook.
type app struct {
	dbPath  string
	verbose bool

	store  *sqlitestore.Store
	engine *assignment.Engine
	log    *zap.Logger
}

// Run executes assistctl with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(stderr, failure("Error: "+err.Error()))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistctl",
		Short: "Manage assistance centers, technicians, staff and products",
		Long: `assistctl works on a local SQLite database. Technicians are assigned to
assistance centers and products to staff members, with the same transfer
confirmation and delete guards as the HTTP service.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "assistcenter.db", "SQLite database file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log engine and audit events to stderr")

	root.AddCommand(a.initCmd())
	root.AddCommand(a.centerCmd())
	root.AddCommand(a.techCmd())
	root.AddCommand(a.staffCmd())
	root.AddCommand(a.productCmd())

	// Assignment
	root.AddCommand(a.assignCmd())
	root.AddCommand(a.unassignCmd())
	root.AddCommand(a.availableCmd())
	root.AddCommand(a.removeCmd())
	root.AddCommand(a.rosterCmd())
	root.AddCommand(a.assignProductCmd())

	// Guarded deletes
	root.AddCommand(a.deleteCenterCmd())
	root.AddCommand(a.deleteTechCmd())
	root.AddCommand(a.deleteStaffCmd())

	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	a.log = zap.NewNop()
	if a.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		a.log = logger
	}

	store, err := sqlitestore.Open(cmd.Context(), a.dbPath)
	if err != nil {
		return err
	}
	a.store = store

	auditLogger := auditlog.New(nil, a.log, auditlog.Config{
		Admin:      auditlog.ModeLog,
		Assignment: auditlog.ModeLog,
	})
	a.engine = assignment.New(store, auditLogger, a.log)
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// ctx returns the command context tagged with the CLI actor.
func ctx(cmd *cobra.Command) context.Context {
	return auditlog.WithActor(cmd.Context(), actor)
}

func parseID(kind, s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s ID %q", kind, s)
	}
	return id, nil
}
