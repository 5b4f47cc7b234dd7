package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func newEmployeesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Manage employees",
	}

	cmd.AddCommand(newEmployeesCreateCmd(a), newEmployeesListCmd(a), newEmployeesDeleteCmd(a))
	return cmd
}

func newEmployeesCreateCmd(a *app) *cobra.Command {
	var name, role, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.engine.SaveEmployee(cmd.Context(), models.Employee{
				Name:   name,
				Role:   role,
				Status: models.EmployeeStatus(status),
			})
			if err != nil {
				return fmt.Errorf("failed to create employee: %w", err)
			}
			fmt.Printf("Created employee %s (%s)\n", cs.Employees[0].Name, cs.Employees[0].ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Employee name (required)")
	cmd.Flags().StringVarP(&role, "role", "r", "", "Role, e.g. driller, rig operator")
	cmd.Flags().StringVarP(&status, "status", "s", "active", "Status: active or inactive")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newEmployeesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := a.store.ListEmployees(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list employees: %w", err)
			}
			if len(employees) == 0 {
				fmt.Println("No employees found.")
				return nil
			}
			for _, e := range employees {
				fmt.Printf("%s | %s | %s | %s\n", e.ID, e.Name, e.Role, e.Status)
			}
			return nil
		},
	}
}

func newEmployeesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <employee-id>",
		Short: "Delete an employee and remove their project assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.engine.DeleteEmployee(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete employee: %w", err)
			}
			fmt.Printf("Deleted employee %s (removed assignments from %d projects)\n",
				args[0], len(cs.Projects))
			return nil
		},
	}
}
