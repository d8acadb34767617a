package cli

import (
	"errors"
	"fmt"

	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (a *app) assignCmd() *cobra.Command {
	var (
		confirm  bool
		version  int64
		proposal string
	)
	cmd := &cobra.Command{
		Use:   "assign [tech] [center]",
		Short: "Assign a technician to an assistance center",
		Long: `Assign a technician to an assistance center.

If the technician already works at another center nothing changes and the
command reports the transfer that would happen. Run it again with
--confirm and the --version it printed to move the technician.

Examples:
  assistctl assign 65f0… 65f1…
  assistctl assign 65f0… 65f1… --confirm --version 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			techID, err := parseID("technician", args[0])
			if err != nil {
				return err
			}
			centerID, err := parseID("center", args[1])
			if err != nil {
				return err
			}

			req := assignment.AssignTechnicianRequest{
				TechnicianID: techID,
				CenterID:     centerID,
				Confirm:      confirm,
				ProposalID:   proposal,
			}
			if cmd.Flags().Changed("version") {
				req.ExpectedVersion = &version
			}
			if confirm && req.ExpectedVersion == nil {
				return errors.New("--confirm requires --version")
			}

			res, err := a.engine.AssignTechnician(ctx(cmd), req)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			name := res.Technician.FullName
			switch {
			case res.Status == assignment.StatusTransferRequired:
				fmt.Fprintf(out, "%s %s is assigned to %s (%s)\n",
					pending("! Transfer required:"), name, res.PreviousCenterName, res.PreviousCenterID.Hex())
				fmt.Fprintf(out, "  re-run with --confirm --version %d --proposal %s\n", res.Version, res.ProposalID)
			case !res.Changed:
				fmt.Fprintf(out, "%s %s is already at this center\n", dim("= No change:"), name)
			case res.PreviousCenterID != nil:
				fmt.Fprintf(out, "%s %s from %s (version %d)\n", success("✓ Transferred"), name, res.PreviousCenterName, res.Version)
			default:
				fmt.Fprintf(out, "%s %s (version %d)\n", success("✓ Assigned"), name, res.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm a transfer from another center")
	cmd.Flags().Int64Var(&version, "version", 0, "technician version observed when the transfer was proposed")
	cmd.Flags().StringVar(&proposal, "proposal", "", "proposal ID from the transfer prompt")
	return cmd
}

func (a *app) unassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign [tech]",
		Short: "Detach a technician from its center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			techID, err := parseID("technician", args[0])
			if err != nil {
				return err
			}
			t, err := a.engine.UnassignTechnician(ctx(cmd), techID)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("✓ Unassigned"), t.FullName)
			return nil
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [center] [tech]",
		Short: "Remove a technician from the given center's roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			centerID, err := parseID("center", args[0])
			if err != nil {
				return err
			}
			techID, err := parseID("technician", args[1])
			if err != nil {
				return err
			}
			t, err := a.engine.RemoveTechnicianFromCenter(ctx(cmd), centerID, techID)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("✓ Removed"), t.FullName)
			return nil
		},
	}
}

func (a *app) availableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "available [center]",
		Short: "List technicians that can be added to a center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			centerID, err := parseID("center", args[0])
			if err != nil {
				return err
			}
			avail, err := a.engine.ListAvailableTechnicians(ctx(cmd), centerID)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			if len(avail.Free)+len(avail.Transferable) == 0 {
				fmt.Fprintln(out, "No technicians available")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
			for _, t := range avail.Free {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID.Hex(), t.FullName, success("free"))
			}
			for _, tt := range avail.Transferable {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", tt.Technician.ID.Hex(), tt.Technician.FullName,
					pending("at "+tt.CurrentCenterName))
			}
			return tw.Flush()
		},
	}
}

func (a *app) rosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster [center]",
		Short: "List the technicians assigned to a center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			centerID, err := parseID("center", args[0])
			if err != nil {
				return err
			}
			techs, err := a.engine.CenterTechnicians(ctx(cmd), centerID)
			if err != nil {
				return explain(err)
			}
			if len(techs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No technicians assigned")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tVERSION")
			for _, t := range techs {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", t.ID.Hex(), t.FullName, t.Version)
			}
			return tw.Flush()
		},
	}
}

func (a *app) assignProductCmd() *cobra.Command {
	var none bool
	cmd := &cobra.Command{
		Use:   "assign-product [product] [staff]",
		Short: "Make a staff member responsible for a product",
		Long: `Make a staff member responsible for a product, replacing any previous
assignee. Pass --none instead of a staff ID to leave the product unassigned.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("product", args[0])
			if err != nil {
				return err
			}

			var staffID *primitive.ObjectID
			switch {
			case none && len(args) == 2:
				return errors.New("give a staff ID or --none, not both")
			case !none && len(args) == 1:
				return errors.New("a staff ID or --none is required")
			case !none:
				id, err := parseID("staff", args[1])
				if err != nil {
					return err
				}
				staffID = &id
			}

			p, err := a.engine.AssignProduct(ctx(cmd), productID, staffID)
			if err != nil {
				return explain(err)
			}
			if staffID == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("✓ Unassigned"), p.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s to %s\n", success("✓ Assigned"), p.Name, staffID.Hex())
			return nil
		},
	}
	cmd.Flags().BoolVar(&none, "none", false, "clear the product's staff member")
	return cmd
}

func (a *app) deleteCenterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-center [center]",
		Short: "Delete a center that has no technicians",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("center", args[0])
			if err != nil {
				return err
			}
			if err := a.engine.DeleteCenter(ctx(cmd), id); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s center %s\n", success("✓ Deleted"), id.Hex())
			return nil
		},
	}
}

func (a *app) deleteTechCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-tech [tech]",
		Short: "Delete an unassigned technician",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("technician", args[0])
			if err != nil {
				return err
			}
			if err := a.engine.DeleteTechnician(ctx(cmd), id); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s technician %s\n", success("✓ Deleted"), id.Hex())
			return nil
		},
	}
}

func (a *app) deleteStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-staff [staff]",
		Short: "Delete a staff member with no products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("staff", args[0])
			if err != nil {
				return err
			}
			if err := a.engine.DeleteStaff(ctx(cmd), id); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s staff member %s\n", success("✓ Deleted"), id.Hex())
			return nil
		},
	}
}
