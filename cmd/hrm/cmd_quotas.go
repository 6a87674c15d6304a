package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/workspace"
	"github.com/spf13/cobra"
)

func newQuotasCmd(opts *globalOptions) *cobra.Command {
	quotas := &cobra.Command{
		Use:   "quotas",
		Short: "List and edit employee leave quotas",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List employee quotas and remaining balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEmployeeQuotas(cmd, opts, func(ctx context.Context, table *workspace.EmployeeQuotaTable) error {
				printEmployeeQuotas(cmd.OutOrStdout(), table.Filter(search))
				return nil
			})
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "Filter by tier or employee name")

	quotas.AddCommand(list, newQuotaSetCmd(opts))
	return quotas
}

func newQuotaSetCmd(opts *globalOptions) *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "set EMPLOYEE_ID",
		Short: "Move an employee to a tier or adjust their quotas",
		Long: `--tier fills in that tier's defaults first, quota flags then override
single categories. Balances are reconciled against the previous quotas.`,
		Example: `  hrm quotas set 42 --tier Gold
  hrm quotas set 42 --annual 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid employee id %q", args[0])
			}

			return withEmployeeQuotas(cmd, opts, func(ctx context.Context, table *workspace.EmployeeQuotaTable) error {
				if _, err := table.BeginEdit(uint(id)); err != nil {
					return err
				}

				if tier != "" {
					if _, err := table.SelectTier(tier); err != nil {
						return err
					}
				}

				changed := tier != ""
				for _, c := range leave.Categories() {
					if !cmd.Flags().Changed(c.String()) {
						continue
					}
					days, err := cmd.Flags().GetInt(c.String())
					if err != nil {
						return err
					}
					if _, err := table.SetQuota(c, days); err != nil {
						return err
					}
					changed = true
				}
				if !changed {
					table.Cancel()
					return fmt.Errorf("nothing to change: pass --tier or a quota flag")
				}

				err := table.Save(ctx)
				printNotice(cmd.OutOrStdout(), table.Notice())
				if err != nil {
					return err
				}

				for _, r := range table.Records() {
					if r.EmployeeID == uint(id) {
						printEmployeeQuotas(cmd.OutOrStdout(), []models.EmployeeLeaveQuota{r})
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "", "Move the employee to this tier")
	addQuotaFlags(cmd)
	return cmd
}

func withEmployeeQuotas(cmd *cobra.Command, opts *globalOptions, fn func(context.Context, *workspace.EmployeeQuotaTable) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	backend, session, err := openSession(ctx, opts)
	if err != nil {
		return err
	}

	table := workspace.NewEmployeeQuotaTable(backend, session, opts.logger)
	if err := table.Load(ctx); err != nil {
		return fmt.Errorf("failed to load employee quotas: %w", err)
	}

	return fn(ctx, table)
}

// Quotas are printed as balance/quota
func printEmployeeQuotas(w io.Writer, records []models.EmployeeLeaveQuota) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tTIER\tANNUAL\tCHILDCARE\tCOMPASSIONATE\tPARENTAL\tSICK\tUNPAID")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%d/%d\t%d/%d\t%d/%d\t%d/%d\t%d/%d\n",
			r.EmployeeID, r.Employee.FullName(), r.Tier(),
			r.AnnualBalance, r.AnnualQuota,
			r.ChildcareBalance, r.ChildcareQuota,
			r.CompassionateBalance, r.CompassionateQuota,
			r.ParentalBalance, r.ParentalQuota,
			r.SickBalance, r.SickQuota,
			r.UnpaidBalance, r.UnpaidQuota,
		)
	}
	_ = tw.Flush()
}
