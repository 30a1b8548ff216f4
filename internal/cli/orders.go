package cli

import (
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"storefront/internal/admin"
	"storefront/internal/service"

	"github.com/spf13/cobra"
)

type ordersOptions struct {
	status string
	search string
	sort   string
	dir    string
}

func newOrdersCmd() *cobra.Command {
	opts := &ordersOptions{}

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List stored orders",
		Long: `List stored orders the way the admin viewer shows them: newest first
by default, optionally filtered by status, searched by order id,
customer or item name, and sorted by any column.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.query()
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := service.NewOrderService(store.orders, logger).ListOrders(cmd.Context(), q)
			if err != nil {
				return err
			}

			return renderOrders(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", admin.StatusAll, "Filter by status (all, pending, paid, failed)")
	cmd.Flags().StringVar(&opts.search, "search", "", "Search order id, customer and item names")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Sort column (id, createdAt, total, status, customer, items)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Sort direction (asc, desc)")

	return cmd
}

func (o *ordersOptions) query() (admin.Query, error) {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("status", o.status)
	set("q", o.search)
	set("sort", o.sort)
	set("dir", o.dir)

	return admin.ParseQuery(values)
}

func renderOrders(w io.Writer, list *service.OrderList) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tEMAIL\tITEMS\tTOTAL\tSTATUS\tREFERENCE")
	for _, o := range list.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			o.ID,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.Customer.Name,
			o.Customer.Email,
			o.ItemCount(),
			o.Total.StringFixed(2),
			o.Status,
			o.PaymentReference,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write orders: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nShowing %d of %d orders. Revenue %s from %d customers, %d items sold.\n",
		list.Showing,
		list.Total,
		list.Stats.Revenue.StringFixed(2),
		list.Stats.Customers,
		list.Stats.ItemsSold,
	)
	return err
}
