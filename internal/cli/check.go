package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"storefront/internal/handler"

	"github.com/spf13/cobra"
)

var checkTimeout time.Duration

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ping the configured order store and cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()

			store, err := openStorage(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			return runChecks(ctx, cmd.OutOrStdout(), store.pingers)
		},
	}

	cmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Overall time allowed for the checks")

	return cmd
}

// runChecks pings every dependency and reports the first failure.
func runChecks(ctx context.Context, w io.Writer, pingers map[string]handler.Pinger) error {
	names := make([]string, 0, len(pingers))
	for name := range pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, name := range names {
		if err := pingers[name].Ping(ctx); err != nil {
			fmt.Fprintf(w, "%-8s FAIL  %v\n", name, err)
			failed = append(failed, name)
			continue
		}
		fmt.Fprintf(w, "%-8s OK\n", name)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed: %v", len(failed), len(names), failed)
	}
	return nil
}
