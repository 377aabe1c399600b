package main

import (
	"fmt"

	"github.com/divreminder/divreminder/domain"
	"github.com/spf13/cobra"
)

func newSectorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sector",
		Short: "Manage sectors and their products",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List sectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sectors, err := app.Repo.GetSectors()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(sectors))
			for _, s := range sectors {
				rows = append(rows, []string{formatID(s.ID), s.Name, s.ProviderName})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Provider"}, rows)
			return nil
		},
	}

	var name, provider string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.Repo.InsertSector(&domain.Sector{Name: name, ProviderName: provider})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added sector %d\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "sector name")
	add.Flags().StringVar(&provider, "provider", "", "market or data provider, e.g. NYSE")
	add.MarkFlagRequired("name")
	add.MarkFlagRequired("provider")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a sector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sector, err := app.Repo.GetSector(id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				sector.Name = name
			}
			if cmd.Flags().Changed("provider") {
				sector.ProviderName = provider
			}
			if err := app.Repo.UpdateSector(sector); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated sector %d\n", id)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "sector name")
	update.Flags().StringVar(&provider, "provider", "", "market or data provider")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sector, its products are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Repo.DeleteSector(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted sector %d\n", id)
			return nil
		},
	}

	link := &cobra.Command{
		Use:   "link <product-id> <sector-id>",
		Short: "Add a product to a sector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, sectorID, err := parseLink(args)
			if err != nil {
				return err
			}
			return app.Repo.AddSectorToProduct(productID, sectorID)
		},
	}

	unlink := &cobra.Command{
		Use:   "unlink <product-id> <sector-id>",
		Short: "Remove a product from a sector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, sectorID, err := parseLink(args)
			if err != nil {
				return err
			}
			return app.Repo.RemoveSectorFromProduct(productID, sectorID)
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default sectors into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.SeedSectors()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sectors\n", n)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del, link, unlink, seed)
	return cmd
}

func parseLink(args []string) (int64, int64, error) {
	productID, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	sectorID, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return productID, sectorID, nil
}
