package ledger

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// The enum and conditional-requirement checks run through validator/v10 on
// small shape structs; amount checks are done by hand because the money
// fields are decimals.

type clientShape struct {
	Name string `validate:"required"`
}

type employeeShape struct {
	Name   string `validate:"required"`
	Status string `validate:"required,oneof=active inactive"`
}

type projectShape struct {
	Name   string `validate:"required"`
	Status string `validate:"required,oneof=planned in_progress completed on_hold"`
}

type invoiceShape struct {
	Type string `validate:"required,oneof=invoice proforma"`
	// overdue is absent on purpose: it is derived at read time and must
	// never be persisted.
	Status string `validate:"required,oneof=draft sent partially_paid awaiting_final_payment paid"`
}

type paymentShape struct {
	Method      string `validate:"required,oneof=cash bank_transfer check"`
	CheckNumber string `validate:"required_if=Method check"`
}

type transactionShape struct {
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Type        string `validate:"required,oneof=income expense"`
}

func validationErr(err error) error {
	if _, ok := err.(validator.ValidationErrors); ok {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

func validateClient(c *models.Client) error {
	return validationErr(validate.Struct(clientShape{Name: c.Name}))
}

func validateEmployee(e *models.Employee) error {
	return validationErr(validate.Struct(employeeShape{Name: e.Name, Status: string(e.Status)}))
}

func validateProject(p *models.Project) error {
	if err := validationErr(validate.Struct(projectShape{Name: p.Name, Status: string(p.Status)})); err != nil {
		return err
	}
	if p.TotalBudget.IsNegative() {
		return fmt.Errorf("%w: total budget must not be negative", ErrValidation)
	}
	for _, m := range p.Materials {
		if m.Name == "" {
			return fmt.Errorf("%w: material name is required", ErrValidation)
		}
		if m.Quantity.IsNegative() || m.UnitCost.IsNegative() {
			return fmt.Errorf("%w: material quantity and unit cost must not be negative", ErrValidation)
		}
	}
	for _, sa := range p.Staff {
		if sa.EmployeeID == "" {
			return fmt.Errorf("%w: staff assignment requires an employee reference", ErrValidation)
		}
		if sa.Payment.IsNegative() {
			return fmt.Errorf("%w: staff payment must not be negative", ErrValidation)
		}
	}
	for _, e := range p.OtherExpenses {
		if e.Description == "" {
			return fmt.Errorf("%w: expense description is required", ErrValidation)
		}
		if e.Amount.IsNegative() {
			return fmt.Errorf("%w: expense amount must not be negative", ErrValidation)
		}
	}
	return nil
}

func validateInvoice(inv *models.Invoice) error {
	if err := validationErr(validate.Struct(invoiceShape{Type: string(inv.Type), Status: string(inv.Status)})); err != nil {
		return err
	}
	if inv.Date.IsZero() {
		return fmt.Errorf("%w: invoice date is required", ErrValidation)
	}
	if inv.TaxRate.IsNegative() {
		return fmt.Errorf("%w: tax rate must not be negative", ErrValidation)
	}
	if inv.DiscountAmount.IsNegative() {
		return fmt.Errorf("%w: discount amount must not be negative", ErrValidation)
	}
	for _, item := range inv.LineItems {
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: line item quantity must be greater than zero", ErrValidation)
		}
		if item.Rate.IsNegative() {
			return fmt.Errorf("%w: line item rate must not be negative", ErrValidation)
		}
	}
	for i := range inv.Payments {
		if err := validatePayment(&inv.Payments[i]); err != nil {
			return err
		}
	}
	return nil
}

func validatePayment(p *models.Payment) error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be greater than zero", ErrValidation)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: payment date is required", ErrValidation)
	}
	shape := paymentShape{Method: string(p.Method)}
	if p.CheckNumber != nil {
		shape.CheckNumber = *p.CheckNumber
	}
	return validationErr(validate.Struct(shape))
}

func validateTransaction(t *models.Transaction) error {
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be greater than zero", ErrValidation)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction date is required", ErrValidation)
	}
	return validationErr(validate.Struct(transactionShape{
		Description: t.Description,
		Category:    t.Category,
		Type:        string(t.Type),
	}))
}
