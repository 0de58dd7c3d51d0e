package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rentledger/internal/amqp"
	"rentledger/internal/config"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/services"
	"rentledger/internal/storage"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	manager  *storage.Manager
	events   *amqp.Client
	building string
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "rentledger",
		Short:         "Per-building tenant and rent ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.building, "building", "b", config.DefaultBuildings[0],
		"building whose ledger the command operates on")

	rootCmd.AddCommand(
		a.buildingsCmd(),
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.updateCmd(),
		a.payCmd(),
		a.raiseRentCmd(),
		a.deleteCmd(),
		a.exportCmd(),
		a.importCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) init() error {
	a.cfg = config.Load()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = log.New(log.Config{Level: level, Component: log.ComponentCLI})
	log.SetDefault(a.logger)

	a.manager, err = storage.OpenBuildings(a.cfg.Buildings, a.cfg.DatabasePath)
	if err != nil {
		return err
	}

	if a.cfg.AMQPURL != "" {
		a.events, err = amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
		if err != nil {
			// The ledger works without the audit feed.
			a.logger.Warn("Event publication disabled", log.FieldError, err)
			a.events = nil
		}
	}

	return nil
}

func (a *app) close() {
	if a.events != nil {
		a.events.Close()
	}
	if a.manager != nil {
		a.manager.Close()
	}
}

// service returns the tenant repository for the selected building.
func (a *app) service() (*services.TenantService, error) {
	store, err := a.manager.Get(a.building)
	if err != nil {
		return nil, err
	}
	return services.NewTenantService(store, a.events, a.logger), nil
}

func (a *app) buildingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buildings",
		Short: "List the configured buildings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range a.manager.Buildings() {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var opts services.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the building's tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			tenants, err := svc.ListTenants(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printTenants(cmd.OutOrStdout(), tenants)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Search, "search", "", "filter by name or apartment substring")
	cmd.Flags().BoolVar(&opts.ByBalance, "by-balance", false, "order by balance, highest owed first")
	return cmd
}

// formFlags binds the tenant form fields to a command's flag set.
func formFlags(cmd *cobra.Command, form *services.TenantForm) {
	cmd.Flags().StringVar(&form.Name, "name", "", "tenant name")
	cmd.Flags().StringVar(&form.AptNumber, "apt", "", "apartment number")
	cmd.Flags().StringVar(&form.LeaseStart, "lease-start", "", "lease start date (MM-DD-YYYY)")
	cmd.Flags().StringVar(&form.LeaseExpired, "lease-expired", "", "lease expiry date (MM-DD-YYYY)")
	cmd.Flags().StringVar(&form.Security, "security", "0", "security deposit")
	cmd.Flags().StringVar(&form.Rent, "rent", "", "monthly rent")
}

func (a *app) addCmd() *cobra.Command {
	var form services.TenantForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tenant, seeding the balance from the lease start date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			created, err := svc.AddTenant(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created)
			return nil
		},
	}
	formFlags(cmd, &form)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <field> <value>",
		Short: "Update one tenant field (name, apt, lease_start, lease_expired, security, rent)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			field, err := core.ParseField(args[1])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			updated, err := svc.EditTenant(cmd.Context(), id, field, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), updated)
			return nil
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var form services.TenantForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rewrite all editable fields of a tenant record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			updated, err := svc.UpdateTenant(cmd.Context(), id, form)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	formFlags(cmd, &form)
	return cmd
}

func (a *app) payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id> <month> <amount>",
		Short: "Record a payment against one month",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			updated, err := svc.RecordPayment(cmd.Context(), id, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "balance: %s\n", updated.Balance)
			return nil
		},
	}
}

func (a *app) raiseRentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raise-rent <id> <percent>",
		Short: "Change a tenant's rent by a percentage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			percent, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid percent %q: %w", args[1], err)
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			updated, err := svc.IncreaseRent(cmd.Context(), id, percent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rent: %s\n", updated.Rent)
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			return svc.DeleteTenant(cmd.Context(), id)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the building's tenants as CSV (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return svc.ExportCSV(cmd.Context(), out)
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tenants from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			report, err := svc.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tenants\n", report.Imported)
			for _, failed := range report.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", failed)
			}
			if !report.Ok() {
				return fmt.Errorf("%d rows skipped", len(report.Failed))
			}
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tenant id %q: %w", s, err)
	}
	return id, nil
}

func printTenants(w io.Writer, tenants []core.Tenant) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAPT\tLEASE START\tLEASE EXPIRED\tSECURITY\tRENT\tBALANCE")
	for _, t := range tenants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Name, t.AptNumber,
			t.LeaseStart.Display(), t.LeaseExpired.Display(),
			t.Security, t.Rent, t.Balance)
	}
	tw.Flush()
}
