package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients",
	}

	cmd.AddCommand(newClientsCreateCmd(a), newClientsListCmd(a), newClientsDeleteCmd(a))
	return cmd
}

func newClientsCreateCmd(a *app) *cobra.Command {
	var name, email, phone, address string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.engine.SaveClient(cmd.Context(), models.Client{
				Name:    name,
				Email:   ptrOrNil(email),
				Phone:   ptrOrNil(phone),
				Address: ptrOrNil(address),
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			fmt.Printf("Created client %s (%s)\n", cs.Clients[0].Name, cs.Clients[0].ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Client name (required)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Contact email")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "Contact phone")
	cmd.Flags().StringVar(&address, "address", "", "Postal address")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newClientsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := a.store.ListClients(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			if len(clients) == 0 {
				fmt.Println("No clients found.")
				return nil
			}
			for _, c := range clients {
				contact := ""
				if c.Email != nil {
					contact = " | " + *c.Email
				}
				fmt.Printf("%s | %s%s\n", c.ID, c.Name, contact)
			}
			return nil
		},
	}
}

func newClientsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Delete a client, unlinking its projects and invoices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.engine.DeleteClient(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete client: %w", err)
			}
			fmt.Printf("Deleted client %s (unlinked %d projects, %d invoices)\n",
				args[0], len(cs.Projects), len(cs.Invoices))
			return nil
		},
	}
}
