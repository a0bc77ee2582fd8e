package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Amit9DeV/NexiCart-sub001/internal/admin"
)

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo products into an empty catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
			defer cancel()

			s, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer closeStore(s, a.stderr)

			n, err := admin.SeedProducts(ctx, s.Products)
			if err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
			if n == 0 {
				fmt.Fprintln(a.stdout, "Catalog already has products, nothing seeded")
				return nil
			}
			fmt.Fprintf(a.stdout, "Seeded %d products\n", n)
			return nil
		},
	}
}
