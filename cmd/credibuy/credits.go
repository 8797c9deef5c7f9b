package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/credits"
	apperrors "github.com/jrsteele09/credibuy-console/internal/errors"
)

var errNotLoggedIn = apperrors.New("not logged in, run `credibuy login` first")

func (c *cli) creditsCmd() *cobra.Command {
	var (
		search string
		status string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "credits [id]",
		Short: "List credits, or show one credit with its payments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			if !a.Provider.Authenticated() {
				return errNotLoggedIn
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid credit id %q", args[0])
				}
				credit, err := a.Credits.Detail(cmd.Context(), id)
				if err != nil {
					return notLoggedInOr(err)
				}
				printCredit(w, credit)
				return nil
			}

			q := api.Query{Search: search, Page: page, Ordering: credits.OrderByID}
			if status != "" {
				q.Filters = map[string]string{"status": status}
			}
			list, err := a.Credits.List(cmd.Context(), q)
			if err != nil {
				return notLoggedInOr(err)
			}
			fmt.Fprintln(w, "ID\tCLIENT\tPRODUCT\tSTATUS\tDEBT\tPAYMENTS")
			for _, cr := range list.Results {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", cr.ID, cr.ClientName, cr.ProductName, cr.Status.Label(), credits.FormatCOP(cr.Debt), cr.TotalPayments)
			}
			fmt.Fprintf(w, "\n%d credit(s)\n", list.Count)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search term")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active, completed)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func (c *cli) payCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "pay <payment-id>",
		Short: "Mark a payment as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			if !a.Provider.Authenticated() {
				return errNotLoggedIn
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid payment id %q", args[0])
			}
			p, err := a.Credits.MarkPayment(cmd.Context(), id, !undo)
			if err != nil {
				return notLoggedInOr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment %d is now %s\n", p.ID, p.Status.Label())
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the payment as unpaid instead")
	return cmd
}

func printCredit(w *tabwriter.Writer, c *credits.FullCredit) {
	s := credits.Summarize(*c)
	fmt.Fprintf(w, "Credit\t#%d\n", c.ID)
	fmt.Fprintf(w, "Client\t%s\n", c.ClientName)
	fmt.Fprintf(w, "Product\t%s\n", c.ProductName)
	fmt.Fprintf(w, "Status\t%s\n", c.Status.Label())
	fmt.Fprintf(w, "Debt\t%s\n", credits.FormatCOP(s.Remaining))
	fmt.Fprintf(w, "Paid\t%s of %s (%s)\n\n", credits.FormatCOP(s.TotalPaid), credits.FormatCOP(s.Total), credits.FormatPercent(s.Progress))

	fmt.Fprintln(w, "PAYMENT\tDUE\tVALUE\tPAYABLE\tSTATUS")
	for _, p := range c.Payments {
		payable := "-"
		if v, ok := credits.DisplayValue(p); ok {
			payable = credits.FormatCOP(v)
		}
		due := "-"
		if !p.DueDate.IsZero() {
			due = p.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, due, credits.FormatCOP(p.Value), payable, p.Status.Label())
	}
}

// notLoggedInOr turns an unrecovered 401 into a hint to log in again.
func notLoggedInOr(err error) error {
	if apperrors.Is(err, apperrors.ErrUnauthorized) {
		return fmt.Errorf("%w (%v)", errNotLoggedIn, err)
	}
	return err
}
