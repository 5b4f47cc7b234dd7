package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage drilling projects and their cost lines",
	}

	cmd.AddCommand(
		newProjectsCreateCmd(a),
		newProjectsListCmd(a),
		newProjectsShowCmd(a),
		newProjectsDeleteCmd(a),
		newProjectsMaterialCmd(a),
		newProjectsStaffCmd(a),
		newProjectsExpenseCmd(a),
	)
	return cmd
}

func newProjectsCreateCmd(a *app) *cobra.Command {
	var name, clientID, budget, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			totalBudget, err := parseAmount(budget)
			if err != nil {
				return err
			}
			cs, err := a.engine.SaveProject(cmd.Context(), models.Project{
				Name:        name,
				ClientID:    ptrOrNil(clientID),
				TotalBudget: totalBudget,
				Status:      models.ProjectStatus(status),
			})
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			p := cs.Projects[0]
			fmt.Printf("Created project %s (%s), budget %s\n", p.Name, p.ID, formatMoney(p.TotalBudget))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (required)")
	cmd.Flags().StringVarP(&clientID, "client", "c", "", "Client id")
	cmd.Flags().StringVarP(&budget, "budget", "b", "0", "Total budget")
	cmd.Flags().StringVarP(&status, "status", "s", "planned", "Status: planned, in_progress, completed or on_hold")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.store.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}
			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%s | %s | %s | budget %s | received %s\n",
					p.ID, p.Name, p.Status, formatMoney(p.TotalBudget), formatMoney(p.AmountReceived))
			}
			return nil
		},
	}
}

func newProjectsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's cost lines and receipts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}

			fmt.Printf("%s (%s)\n", p.Name, p.ID)
			if p.ClientName != "" {
				fmt.Printf("Client: %s\n", p.ClientName)
			}
			fmt.Printf("Status: %s\n", p.Status)
			fmt.Printf("Budget: %s  Received: %s\n", formatMoney(p.TotalBudget), formatMoney(p.AmountReceived))

			if len(p.Materials) > 0 {
				fmt.Println("\nMaterials:")
				for _, m := range p.Materials {
					fmt.Printf("  %s | %s x %s @ %s = %s\n",
						m.ID, m.Name, m.Quantity.String(), formatMoney(m.UnitCost), formatMoney(m.Cost()))
				}
			}
			if len(p.Staff) > 0 {
				fmt.Println("\nStaff:")
				for _, s := range p.Staff {
					fmt.Printf("  %s | %s | %s\n", s.EmployeeID, s.EmployeeName, formatMoney(s.Payment))
				}
			}
			if len(p.OtherExpenses) > 0 {
				fmt.Println("\nOther expenses:")
				for _, e := range p.OtherExpenses {
					fmt.Printf("  %s | %s | %s\n", e.ID, e.Description, formatMoney(e.Amount))
				}
			}

			fmt.Printf("\nTotal cost: %s\n", formatMoney(p.TotalCost()))
			return nil
		},
	}
}

func newProjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project, its mirrored expenses, and unlink its invoices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.engine.DeleteProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
			fmt.Printf("Deleted project %s (removed %d mirrored transactions, unlinked %d invoices)\n",
				args[0], len(cs.DeletedTransactionIDs), len(cs.Invoices))
			return nil
		},
	}
}

func newProjectsMaterialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Manage a project's material lines",
	}

	var name, quantity, unitCost string
	addCmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Add a material line to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseAmount(quantity)
			if err != nil {
				return err
			}
			cost, err := parseAmount(unitCost)
			if err != nil {
				return err
			}
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
			p.Materials = append(p.Materials, models.Material{Name: name, Quantity: qty, UnitCost: cost})
			if _, err := a.engine.SaveProjectDetails(cmd.Context(), *p); err != nil {
				return fmt.Errorf("failed to add material: %w", err)
			}
			fmt.Printf("Added material %s to project %s\n", name, args[0])
			return nil
		},
	}
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Material name (required)")
	addCmd.Flags().StringVarP(&quantity, "quantity", "q", "1", "Quantity")
	addCmd.Flags().StringVarP(&unitCost, "unit-cost", "u", "0", "Unit cost")
	addCmd.MarkFlagRequired("name")

	removeCmd := &cobra.Command{
		Use:   "remove <project-id> <material-id>",
		Short: "Remove a material line and its mirrored expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
			kept := p.Materials[:0]
			for _, m := range p.Materials {
				if m.ID != args[1] {
					kept = append(kept, m)
				}
			}
			if len(kept) == len(p.Materials) {
				return fmt.Errorf("material %s not found on project %s", args[1], args[0])
			}
			p.Materials = kept
			if _, err := a.engine.SaveProjectDetails(cmd.Context(), *p); err != nil {
				return fmt.Errorf("failed to remove material: %w", err)
			}
			fmt.Printf("Removed material %s from project %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}

func newProjectsStaffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage a project's staff assignments",
	}

	var employeeID, payment string
	addCmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Assign an employee to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pay, err := parseAmount(payment)
			if err != nil {
				return err
			}
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
			p.Staff = append(p.Staff, models.StaffAssignment{EmployeeID: employeeID, Payment: pay})
			if _, err := a.engine.SaveProjectDetails(cmd.Context(), *p); err != nil {
				return fmt.Errorf("failed to assign staff: %w", err)
			}
			fmt.Printf("Assigned employee %s to project %s\n", employeeID, args[0])
			return nil
		},
	}
	addCmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee id (required)")
	addCmd.Flags().StringVarP(&payment, "payment", "p", "0", "Agreed payment")
	addCmd.MarkFlagRequired("employee")

	removeCmd := &cobra.Command{
		Use:   "remove <project-id> <employee-id>",
		Short: "Remove a staff assignment and its mirrored expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
			kept := p.Staff[:0]
			for _, s := range p.Staff {
				if s.EmployeeID != args[1] {
					kept = append(kept, s)
				}
			}
			if len(kept) == len(p.Staff) {
				return fmt.Errorf("employee %s is not assigned to project %s", args[1], args[0])
			}
			p.Staff = kept
			if _, err := a.engine.SaveProjectDetails(cmd.Context(), *p); err != nil {
				return fmt.Errorf("failed to remove staff assignment: %w", err)
			}
			fmt.Printf("Removed employee %s from project %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}

func newProjectsExpenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage a project's other expense lines",
	}

	var description, amount string
	addCmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Add an expense line to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
			p.OtherExpenses = append(p.OtherExpenses, models.Expense{Description: description, Amount: amt})
			if _, err := a.engine.SaveProjectDetails(cmd.Context(), *p); err != nil {
				return fmt.Errorf("failed to add expense: %w", err)
			}
			fmt.Printf("Added expense %q to project %s\n", description, args[0])
			return nil
		},
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Expense description (required)")
	addCmd.Flags().StringVarP(&amount, "amount", "a", "0", "Amount")
	addCmd.MarkFlagRequired("description")

	removeCmd := &cobra.Command{
		Use:   "remove <project-id> <expense-id>",
		Short: "Remove an expense line and its mirrored transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
			kept := p.OtherExpenses[:0]
			for _, e := range p.OtherExpenses {
				if e.ID != args[1] {
					kept = append(kept, e)
				}
			}
			if len(kept) == len(p.OtherExpenses) {
				return fmt.Errorf("expense %s not found on project %s", args[1], args[0])
			}
			p.OtherExpenses = kept
			if _, err := a.engine.SaveProjectDetails(cmd.Context(), *p); err != nil {
				return fmt.Errorf("failed to remove expense: %w", err)
			}
			fmt.Printf("Removed expense %s from project %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}
