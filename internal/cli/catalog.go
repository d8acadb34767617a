package cli

import (
	"errors"
	"fmt"

	"github.com/dalemusser/assistcenter/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validate(v any) error {
	if res := inputval.Validate(v); res.HasErrors() {
		return errors.New(res.All())
	}
	return nil
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and its schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The pre-run hook already opened the file and applied the schema.
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("✓ Initialized"), a.dbPath)
			return nil
		},
	}
}

/* ----------------------------------- centers ----------------------------------- */

type centerArgs struct {
	Name       string `validate:"required,max=200" label:"Name"`
	Street     string `validate:"required,max=200" label:"Street"`
	City       string `validate:"required,max=100" label:"City"`
	Province   string `validate:"required,max=100" label:"Province"`
	PostalCode string `validate:"required,max=20" label:"Postal code"`
	Phone      string `validate:"omitempty,phone" label:"Phone"`
	Email      string `validate:"omitempty,strictemail" label:"Email"`
}

func (a *app) centerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "center",
		Short: "Manage assistance centers",
	}

	var in centerArgs
	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Create an assistance center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = normalize.Name(htmlsanitize.PlainText(args[0]))
			in.Street = normalize.Name(htmlsanitize.PlainText(in.Street))
			in.City = normalize.Name(htmlsanitize.PlainText(in.City))
			in.Province = normalize.Name(htmlsanitize.PlainText(in.Province))
			in.PostalCode = normalize.PostalCode(in.PostalCode)
			in.Phone = normalize.Name(in.Phone)
			in.Email = normalize.Email(in.Email)
			if err := validate(in); err != nil {
				return err
			}

			c, err := a.store.CreateCenter(ctx(cmd), models.AssistanceCenter{
				Name:       in.Name,
				Street:     in.Street,
				City:       in.City,
				Province:   in.Province,
				PostalCode: in.PostalCode,
				Phone:      in.Phone,
				Email:      in.Email,
			})
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s center %s (%s)\n", success("✓ Created"), c.Name, c.ID.Hex())
			return nil
		},
	}
	add.Flags().StringVar(&in.Street, "street", "", "street address (required)")
	add.Flags().StringVar(&in.City, "city", "", "city (required)")
	add.Flags().StringVar(&in.Province, "province", "", "province (required)")
	add.Flags().StringVar(&in.PostalCode, "postal-code", "", "postal code (required)")
	add.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	add.Flags().StringVar(&in.Email, "email", "", "contact email")

	list := &cobra.Command{
		Use:   "list",
		Short: "List assistance centers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			centers, err := a.store.ListCenters(ctx(cmd))
			if err != nil {
				return err
			}
			if len(centers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No centers found")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCITY")
			for _, c := range centers {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID.Hex(), c.Name, c.City)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

/* --------------------------------- technicians --------------------------------- */

type techArgs struct {
	FullName       string `validate:"required,max=200" label:"Full name"`
	Specialization string `validate:"max=100" label:"Specialization"`
	Email          string `validate:"omitempty,strictemail" label:"Email"`
	Phone          string `validate:"omitempty,phone" label:"Phone"`
}

func (a *app) techCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tech",
		Aliases: []string{"technician"},
		Short:   "Manage technicians",
	}

	var in techArgs
	add := &cobra.Command{
		Use:   "add [full-name]",
		Short: "Create an unassigned technician",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.FullName = normalize.Name(htmlsanitize.PlainText(args[0]))
			in.Specialization = normalize.Name(htmlsanitize.PlainText(in.Specialization))
			in.Email = normalize.Email(in.Email)
			in.Phone = normalize.Name(in.Phone)
			if err := validate(in); err != nil {
				return err
			}

			t, err := a.store.CreateTechnician(ctx(cmd), models.Technician{
				FullName:       in.FullName,
				Specialization: in.Specialization,
				Email:          in.Email,
				Phone:          in.Phone,
			})
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s technician %s (%s)\n", success("✓ Created"), t.FullName, t.ID.Hex())
			return nil
		},
	}
	add.Flags().StringVar(&in.Specialization, "specialization", "", "area of expertise")
	add.Flags().StringVar(&in.Email, "email", "", "email address")
	add.Flags().StringVar(&in.Phone, "phone", "", "phone number")

	list := &cobra.Command{
		Use:   "list",
		Short: "List technicians with their current center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx(cmd)
			techs, err := a.store.ListTechnicians(c)
			if err != nil {
				return err
			}
			if len(techs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No technicians found")
				return nil
			}

			var ids []primitive.ObjectID
			for _, t := range techs {
				if t.CenterID != nil {
					ids = append(ids, *t.CenterID)
				}
			}
			names, err := a.store.CenterNames(c, ids)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCENTER\tVERSION")
			for _, t := range techs {
				center := dim("unassigned")
				if t.CenterID != nil {
					center = names[*t.CenterID]
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID.Hex(), t.FullName, center, t.Version)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

/* ------------------------------------ staff ------------------------------------ */

type staffArgs struct {
	Username string `validate:"required,min=3,max=64,alphanumunicode" label:"Username"`
	FullName string `validate:"required,max=200" label:"Full name"`
	Email    string `validate:"omitempty,strictemail" label:"Email"`
}

func (a *app) staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff members",
	}

	var in staffArgs
	add := &cobra.Command{
		Use:   "add [username] [full-name]",
		Short: "Create a staff member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Username = normalize.Username(args[0])
			in.FullName = normalize.Name(htmlsanitize.PlainText(args[1]))
			in.Email = normalize.Email(in.Email)
			if err := validate(in); err != nil {
				return err
			}

			m, err := a.store.CreateStaff(ctx(cmd), models.StaffMember{
				Username: in.Username,
				FullName: in.FullName,
				Email:    in.Email,
			})
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s staff member %s (%s)\n", success("✓ Created"), m.Username, m.ID.Hex())
			return nil
		},
	}
	add.Flags().StringVar(&in.Email, "email", "", "email address")

	list := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.store.ListStaff(ctx(cmd))
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No staff members found")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tUSERNAME\tNAME")
			for _, m := range members {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID.Hex(), m.Username, m.FullName)
			}
			return tw.Flush()
		},
	}

	products := &cobra.Command{
		Use:   "products [staff]",
		Short: "List the products a staff member is responsible for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID, err := parseID("staff", args[0])
			if err != nil {
				return err
			}
			list, err := a.engine.StaffProducts(ctx(cmd), staffID)
			if err != nil {
				return explain(err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products assigned")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
			for _, p := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID.Hex(), p.Name, p.Category)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list, products)
	return cmd
}

/* ----------------------------------- products ---------------------------------- */

type productArgs struct {
	Name     string `validate:"required,max=200" label:"Name"`
	Category string `validate:"max=100" label:"Category"`
}

func (a *app) productCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
	}

	var in productArgs
	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Create an unassigned product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = normalize.Name(htmlsanitize.PlainText(args[0]))
			in.Category = normalize.Name(htmlsanitize.PlainText(in.Category))
			if err := validate(in); err != nil {
				return err
			}

			p, err := a.store.CreateProduct(ctx(cmd), models.Product{Name: in.Name, Category: in.Category})
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s product %s (%s)\n", success("✓ Created"), p.Name, p.ID.Hex())
			return nil
		},
	}
	add.Flags().StringVar(&in.Category, "category", "", "product category")

	list := &cobra.Command{
		Use:   "list",
		Short: "List products with their staff member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.store.ListProducts(ctx(cmd))
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products found")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tSTAFF")
			for _, p := range products {
				staff := dim("unassigned")
				if p.StaffID != nil {
					staff = p.StaffID.Hex()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID.Hex(), p.Name, staff)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
