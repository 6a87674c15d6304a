package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/workspace"
	"github.com/spf13/cobra"
)

func newTiersCmd(opts *globalOptions) *cobra.Command {
	tiers := &cobra.Command{
		Use:   "tiers",
		Short: "List and edit leave tiers",
	}

	tiers.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List leave tiers and their default quotas",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTiers(cmd, opts, func(ctx context.Context, table *workspace.TierTable) error {
					printTiers(cmd.OutOrStdout(), table.Rows())
					return nil
				})
			},
		},
		newTierAddCmd(opts),
		newTierEditCmd(opts),
		newTierDeleteCmd(opts),
	)

	return tiers
}

func newTierAddCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a leave tier",
		Example: `  hrm tiers add Gold --annual 25 --sick 10 --unpaid 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTiers(cmd, opts, func(ctx context.Context, table *workspace.TierTable) error {
				row := table.BeginAdd()
				q := row.Quotas()
				if _, err := applyQuotaFlags(cmd, &q); err != nil {
					return err
				}

				row.Tier = args[0]
				row.SetQuotas(q)

				err := table.Save(ctx, models.NewTierRequest(row))
				printNotice(cmd.OutOrStdout(), table.Notice())
				return err
			})
		},
	}
	addQuotaFlags(cmd)
	return cmd
}

func newTierEditCmd(opts *globalOptions) *cobra.Command {
	var rename string

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Change a tier's name or default quotas",
		Long: `Only the given flags change. Employees still on a tier default follow
the new default, balances are reconciled by the server.`,
		Example: `  hrm tiers edit Gold --annual 28
  hrm tiers edit Gold --rename Platinum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTiers(cmd, opts, func(ctx context.Context, table *workspace.TierTable) error {
				existing, ok := table.Find(args[0])
				if !ok {
					return fmt.Errorf("tier %q: %w", args[0], leave.ErrNotFound)
				}

				row, err := table.BeginEdit(existing.ID)
				if err != nil {
					return err
				}

				q := row.Quotas()
				changed, err := applyQuotaFlags(cmd, &q)
				if err != nil {
					return err
				}
				if !changed && rename == "" {
					table.Cancel()
					return fmt.Errorf("nothing to change: pass --rename or a quota flag")
				}

				row.SetQuotas(q)
				if rename != "" {
					row.Tier = rename
				}

				err = table.Save(ctx, models.NewTierRequest(row))
				printNotice(cmd.OutOrStdout(), table.Notice())
				return err
			})
		},
	}

	cmd.Flags().StringVar(&rename, "rename", "", "New tier name")
	addQuotaFlags(cmd)
	return cmd
}

func newTierDeleteCmd(opts *globalOptions) *cobra.Command {
	var replacement string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a tier, moving its employees to a replacement",
		Long: `A tier nobody holds is deleted outright. A tier with employees needs
--replace; those employees move to the replacement tier's quotas in the same
operation.`,
		Example: `  hrm tiers delete Bronze
  hrm tiers delete Gold --replace Silver --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTiers(cmd, opts, func(ctx context.Context, table *workspace.TierTable) error {
				target, ok := table.Find(args[0])
				if !ok {
					return fmt.Errorf("tier %q: %w", args[0], leave.ErrNotFound)
				}

				deletion, err := table.RequestDelete(ctx, target.ID)
				if err != nil {
					printNotice(cmd.OutOrStdout(), table.Notice())
					return err
				}

				out := cmd.OutOrStdout()
				prompt := fmt.Sprintf("Delete tier %s?", target.Tier)

				if deletion.State() == workspace.DeletionConfirmReplace {
					if replacement == "" {
						deletion.Cancel()
						return fmt.Errorf("tier %s is held by %d employee(s): choose a replacement with --replace (one of: %s)",
							target.Tier, deletion.Assigned(), strings.Join(deletion.Candidates(), ", "))
					}
					if err := deletion.SelectReplacement(replacement); err != nil {
						deletion.Cancel()
						return fmt.Errorf("replacement %q: %w", replacement, err)
					}
					prompt = fmt.Sprintf("Delete tier %s and move %d employee(s) to %s?",
						target.Tier, deletion.Assigned(), replacement)
				}

				if !yes && !confirm(cmd.InOrStdin(), out, prompt) {
					deletion.Cancel()
					fmt.Fprintln(out, "Cancelled")
					return nil
				}

				err = deletion.Confirm(ctx)
				printNotice(out, table.Notice())
				return err
			})
		},
	}

	cmd.Flags().StringVar(&replacement, "replace", "", "Tier that takes over the deleted tier's employees")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// Opens a session and loads the tier table before running fn
func withTiers(cmd *cobra.Command, opts *globalOptions, fn func(context.Context, *workspace.TierTable) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	backend, session, err := openSession(ctx, opts)
	if err != nil {
		return err
	}

	table := workspace.NewTierTable(backend, session, opts.logger)
	if err := table.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tiers: %w", err)
	}

	return fn(ctx, table)
}

func printTiers(w io.Writer, rows []models.LeaveQuota) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTIER\tANNUAL\tCHILDCARE\tCOMPASSIONATE\tPARENTAL\tSICK\tUNPAID")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.ID, r.Tier, r.Annual, r.Childcare, r.Compassionate, r.Parental, r.Sick, r.Unpaid)
	}
	_ = tw.Flush()
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
