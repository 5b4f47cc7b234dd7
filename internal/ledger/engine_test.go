package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barlow-drilling/drillbooks/internal/database"
	"github.com/barlow-drilling/drillbooks/internal/models"
)

var (
	testDate = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	testDue  = time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
)

func newTestEngine(t *testing.T) (*Engine, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	return NewEngine(store, "INV"), store
}

func testInvoice(amount string) models.Invoice {
	return models.Invoice{
		Type:    models.InvoiceTypeStandard,
		Status:  models.InvoiceStatusSent,
		Date:    testDate,
		DueDate: testDue,
		LineItems: []models.LineItem{
			{Description: "Drilling services", Quantity: d("1"), Rate: d(amount)},
		},
	}
}

func testPayment(amount string) models.Payment {
	return models.Payment{
		Date:   testDate,
		Amount: d(amount),
		Method: models.PaymentMethodBankTransfer,
	}
}

func mirrorsFor(t *testing.T, store *database.MemoryStore, sourceID string) []*models.Transaction {
	t.Helper()
	all, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	var out []*models.Transaction
	for _, tx := range all {
		if tx.SourceID != nil && *tx.SourceID == sourceID {
			out = append(out, tx)
		}
	}
	return out
}

func TestSaveInvoiceAssignsNumbers(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	yearPrefix := fmt.Sprintf("INV-%d-", time.Now().Year())

	cs, err := e.SaveInvoice(ctx, testInvoice("100"))
	require.NoError(t, err)
	require.Equal(t, yearPrefix+"001", cs.Invoices[0].InvoiceNumber)

	cs, err = e.SaveInvoice(ctx, testInvoice("200"))
	require.NoError(t, err)
	require.Equal(t, yearPrefix+"002", cs.Invoices[0].InvoiceNumber)
}

func TestSaveInvoiceMirrorsPayments(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	inv := testInvoice("300")
	inv.Payments = []models.Payment{testPayment("120")}
	cs, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)
	saved := cs.Invoices[0]

	mirrors := mirrorsFor(t, store, saved.ID)
	require.Len(t, mirrors, 1)
	assert.Equal(t, models.TransactionTypeIncome, mirrors[0].Type)
	assert.Equal(t, "Client Payment", mirrors[0].Category)
	assert.True(t, mirrors[0].ReadOnly)
	assert.True(t, mirrors[0].Amount.Equal(d("120")), "got %s", mirrors[0].Amount)

	// Saving again regenerates the mirror rather than stacking a second one.
	_, err = e.SaveInvoice(ctx, *saved)
	require.NoError(t, err)
	require.Len(t, mirrorsFor(t, store, saved.ID), 1)

	// Dropping the payments removes the mirror entirely.
	saved.Payments = nil
	_, err = e.SaveInvoice(ctx, *saved)
	require.NoError(t, err)
	require.Empty(t, mirrorsFor(t, store, saved.ID))
}

func TestSaveInvoicePaidNormalizesAmount(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	inv := models.Invoice{
		Type:    models.InvoiceTypeStandard,
		Status:  models.InvoiceStatusPaid,
		Date:    testDate,
		DueDate: testDue,
		LineItems: []models.LineItem{
			{Description: "Drilling", Quantity: d("2"), Rate: d("100")},
			{Description: "Pump", Quantity: d("1"), Rate: d("150")},
		},
		TaxRate:  d("10"),
		Payments: []models.Payment{testPayment("300")},
	}

	cs, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)
	saved := cs.Invoices[0]
	assert.True(t, saved.AmountPaid.Equal(d("385")), "got %s", saved.AmountPaid)

	mirrors := mirrorsFor(t, store, saved.ID)
	require.Len(t, mirrors, 1)
	assert.True(t, mirrors[0].Amount.Equal(d("385")), "got %s", mirrors[0].Amount)
}

func TestSaveInvoiceRejectsPersistedOverdue(t *testing.T) {
	e, _ := newTestEngine(t)

	inv := testInvoice("100")
	inv.Status = models.InvoiceStatusOverdue
	_, err := e.SaveInvoice(context.Background(), inv)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSaveInvoiceRollsBackOnMissingClient(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	badID := "no-such-client"
	inv := testInvoice("100")
	inv.ClientID = &badID

	_, err := e.SaveInvoice(ctx, inv)
	require.ErrorIs(t, err, ErrNotFound)

	invoices, err := store.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestReceivePayment(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	cs, err := e.SaveInvoice(ctx, testInvoice("300"))
	require.NoError(t, err)
	invoiceID := cs.Invoices[0].ID

	t.Run("partial payment is recorded", func(t *testing.T) {
		cs, err := e.ReceivePayment(ctx, invoiceID, testPayment("100"), false)
		require.NoError(t, err)
		assert.True(t, cs.Invoices[0].AmountPaid.Equal(d("100")))
	})

	t.Run("overpayment requires confirmation", func(t *testing.T) {
		_, err := e.ReceivePayment(ctx, invoiceID, testPayment("500"), false)
		require.ErrorIs(t, err, ErrOverpayment)
	})

	t.Run("confirmed overpayment is recorded as given", func(t *testing.T) {
		cs, err := e.ReceivePayment(ctx, invoiceID, testPayment("500"), true)
		require.NoError(t, err)
		assert.True(t, cs.Invoices[0].AmountPaid.Equal(d("600")), "got %s", cs.Invoices[0].AmountPaid)
	})

	t.Run("missing invoice", func(t *testing.T) {
		_, err := e.ReceivePayment(ctx, "nope", testPayment("10"), false)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("check payments need a check number", func(t *testing.T) {
		p := testPayment("10")
		p.Method = models.PaymentMethodCheck
		_, err := e.ReceivePayment(ctx, invoiceID, p, true)
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestProformaThresholdViaPayments(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	inv := testInvoice("1000")
	inv.Type = models.InvoiceTypeProforma
	cs, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)

	cs, err = e.ReceivePayment(ctx, cs.Invoices[0].ID, testPayment("750"), false)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusAwaitingFinalPayment, cs.Invoices[0].Status)
}

func TestProjectReceiptsRollUp(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	cs, err := e.SaveProject(ctx, models.Project{
		Name:        "Well #14",
		TotalBudget: d("1000"),
		Status:      models.ProjectStatusPlanned,
	})
	require.NoError(t, err)
	projectID := cs.Projects[0].ID

	inv1 := testInvoice("300")
	inv1.ProjectID = &projectID
	inv1.Payments = []models.Payment{testPayment("300")}
	_, err = e.SaveInvoice(ctx, inv1)
	require.NoError(t, err)

	p, err := store.GetProject(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, p.AmountReceived.Equal(d("300")), "got %s", p.AmountReceived)
	assert.Equal(t, models.ProjectStatusInProgress, p.Status)

	inv2 := testInvoice("700")
	inv2.ProjectID = &projectID
	inv2.Payments = []models.Payment{testPayment("700")}
	cs2, err := e.SaveInvoice(ctx, inv2)
	require.NoError(t, err)

	p, err = store.GetProject(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, p.AmountReceived.Equal(d("1000")), "got %s", p.AmountReceived)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)
	assert.Equal(t, "Well #14", cs2.Invoices[0].ProjectName)

	// Deleting an invoice drops the receipts but never reverts the status.
	_, err = e.DeleteInvoice(ctx, cs2.Invoices[0].ID)
	require.NoError(t, err)

	p, err = store.GetProject(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, p.AmountReceived.Equal(d("300")), "got %s", p.AmountReceived)
	assert.Equal(t, models.ProjectStatusCompleted, p.Status)
}

func TestRelinkInvoiceRecomputesBothProjects(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	csA, err := e.SaveProject(ctx, models.Project{
		Name:        "Well A",
		TotalBudget: d("1000"),
		Status:      models.ProjectStatusPlanned,
	})
	require.NoError(t, err)
	projectA := csA.Projects[0].ID

	csB, err := e.SaveProject(ctx, models.Project{
		Name:        "Well B",
		TotalBudget: d("1000"),
		Status:      models.ProjectStatusPlanned,
	})
	require.NoError(t, err)
	projectB := csB.Projects[0].ID

	inv := testInvoice("300")
	inv.ProjectID = &projectA
	inv.Payments = []models.Payment{testPayment("300")}
	cs, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)
	saved := cs.Invoices[0]

	p, err := store.GetProject(ctx, projectA)
	require.NoError(t, err)
	require.True(t, p.AmountReceived.Equal(d("300")))

	t.Run("moving the invoice shifts the receipts", func(t *testing.T) {
		saved.ProjectID = &projectB
		cs, err := e.SaveInvoice(ctx, *saved)
		require.NoError(t, err)
		assert.Equal(t, "Well B", cs.Invoices[0].ProjectName)

		a, err := store.GetProject(ctx, projectA)
		require.NoError(t, err)
		assert.True(t, a.AmountReceived.IsZero(), "got %s", a.AmountReceived)

		b, err := store.GetProject(ctx, projectB)
		require.NoError(t, err)
		assert.True(t, b.AmountReceived.Equal(d("300")), "got %s", b.AmountReceived)
	})

	t.Run("clearing the link drops the receipts", func(t *testing.T) {
		saved.ProjectID = nil
		saved.ProjectName = ""
		_, err := e.SaveInvoice(ctx, *saved)
		require.NoError(t, err)

		b, err := store.GetProject(ctx, projectB)
		require.NoError(t, err)
		assert.True(t, b.AmountReceived.IsZero(), "got %s", b.AmountReceived)
	})
}

func TestSaveProjectDetailsMirrors(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	empCS, err := e.SaveEmployee(ctx, models.Employee{Name: "Ray", Role: "driller", Status: models.EmployeeStatusActive})
	require.NoError(t, err)
	emp := empCS.Employees[0]

	cs, err := e.SaveProjectDetails(ctx, models.Project{
		Name:        "Well #9",
		TotalBudget: d("5000"),
		Status:      models.ProjectStatusPlanned,
		Materials:   []models.Material{{Name: "Casing pipe", Quantity: d("2"), UnitCost: d("50")}},
		Staff:       []models.StaffAssignment{{EmployeeID: emp.ID, Payment: d("200")}},
		OtherExpenses: []models.Expense{
			{Description: "Rig transport", Amount: d("75")},
		},
	})
	require.NoError(t, err)
	project := cs.Projects[0]
	require.Len(t, cs.Transactions, 3)

	assert.Equal(t, "Ray", project.Staff[0].EmployeeName)

	materialMirrors := mirrorsFor(t, store, project.Materials[0].ID)
	require.Len(t, materialMirrors, 1)
	assert.Equal(t, "Materials", materialMirrors[0].Category)
	assert.True(t, materialMirrors[0].Amount.Equal(d("100")), "got %s", materialMirrors[0].Amount)

	staffMirrors := mirrorsFor(t, store, models.StaffSourceID(project.ID, emp.ID))
	require.Len(t, staffMirrors, 1)
	assert.Equal(t, "Staff Wages", staffMirrors[0].Category)
	assert.True(t, staffMirrors[0].Amount.Equal(d("200")))

	expenseMirrors := mirrorsFor(t, store, project.OtherExpenses[0].ID)
	require.Len(t, expenseMirrors, 1)
	assert.Equal(t, "Project Expense", expenseMirrors[0].Category)

	t.Run("resaving the same payload is idempotent", func(t *testing.T) {
		_, err := e.SaveProjectDetails(ctx, *project)
		require.NoError(t, err)

		all, err := store.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		again := mirrorsFor(t, store, project.Materials[0].ID)
		require.Len(t, again, 1)
		assert.Equal(t, materialMirrors[0].ID, again[0].ID)
	})

	t.Run("removed lines lose their mirrors", func(t *testing.T) {
		materialID := project.Materials[0].ID
		project.Materials = nil
		_, err := e.SaveProjectDetails(ctx, *project)
		require.NoError(t, err)

		assert.Empty(t, mirrorsFor(t, store, materialID))
		all, err := store.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("updated amounts flow into the mirror", func(t *testing.T) {
		project.Staff[0].Payment = d("250")
		_, err := e.SaveProjectDetails(ctx, *project)
		require.NoError(t, err)

		staffMirrors := mirrorsFor(t, store, models.StaffSourceID(project.ID, emp.ID))
		require.Len(t, staffMirrors, 1)
		assert.True(t, staffMirrors[0].Amount.Equal(d("250")), "got %s", staffMirrors[0].Amount)
	})
}

func TestDeleteProjectCascades(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	cs, err := e.SaveProjectDetails(ctx, models.Project{
		Name:        "Well #2",
		TotalBudget: d("1000"),
		Status:      models.ProjectStatusPlanned,
		Materials:   []models.Material{{Name: "Drill bits", Quantity: d("4"), UnitCost: d("25")}},
	})
	require.NoError(t, err)
	project := cs.Projects[0]

	inv := testInvoice("500")
	inv.ProjectID = &project.ID
	invCS, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)

	delCS, err := e.DeleteProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, delCS.DeletedTransactionIDs, 1)

	_, err = store.GetProject(ctx, project.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	unlinked, err := store.GetInvoice(ctx, invCS.Invoices[0].ID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.ProjectID)
	assert.Empty(t, unlinked.ProjectName)
}

func TestDeleteEmployeeCascades(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	empCS, err := e.SaveEmployee(ctx, models.Employee{Name: "Sam", Role: "rig operator", Status: models.EmployeeStatusActive})
	require.NoError(t, err)
	emp := empCS.Employees[0]

	cs1, err := e.SaveProjectDetails(ctx, models.Project{
		Name:        "Well #5",
		TotalBudget: d("1000"),
		Status:      models.ProjectStatusPlanned,
		Staff:       []models.StaffAssignment{{EmployeeID: emp.ID, Payment: d("400")}},
	})
	require.NoError(t, err)
	project1 := cs1.Projects[0]

	cs2, err := e.SaveProjectDetails(ctx, models.Project{
		Name:        "Well #6",
		TotalBudget: d("2000"),
		Status:      models.ProjectStatusPlanned,
		Staff:       []models.StaffAssignment{{EmployeeID: emp.ID, Payment: d("600")}},
	})
	require.NoError(t, err)
	project2 := cs2.Projects[0]

	delCS, err := e.DeleteEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, delCS.Projects, 2)
	require.Len(t, delCS.DeletedTransactionIDs, 2)

	_, err = store.GetEmployee(ctx, emp.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	for _, projectID := range []string{project1.ID, project2.ID} {
		p, err := store.GetProject(ctx, projectID)
		require.NoError(t, err)
		assert.Empty(t, p.Staff)
		assert.Empty(t, mirrorsFor(t, store, models.StaffSourceID(projectID, emp.ID)))
	}
}

func TestManualTransactionGuards(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("source id cannot be set directly", func(t *testing.T) {
		src := "some-invoice"
		_, err := e.SaveTransaction(ctx, models.Transaction{
			Date:        testDate,
			Description: "sneaky",
			Category:    "Misc",
			Type:        models.TransactionTypeIncome,
			Amount:      d("10"),
			SourceID:    &src,
		})
		require.ErrorIs(t, err, ErrReadOnly)
	})

	inv := testInvoice("100")
	inv.Payments = []models.Payment{testPayment("100")}
	cs, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)
	require.Len(t, cs.Transactions, 1)
	mirror := cs.Transactions[0]

	t.Run("mirrors cannot be edited", func(t *testing.T) {
		_, err := e.SaveTransaction(ctx, models.Transaction{
			ID:          mirror.ID,
			Date:        testDate,
			Description: "tampered",
			Category:    "Misc",
			Type:        models.TransactionTypeExpense,
			Amount:      d("1"),
		})
		require.ErrorIs(t, err, ErrReadOnly)
	})

	t.Run("mirrors cannot be deleted", func(t *testing.T) {
		_, err := e.DeleteTransaction(ctx, mirror.ID)
		require.ErrorIs(t, err, ErrReadOnly)
	})

	t.Run("manual entries round-trip", func(t *testing.T) {
		cs, err := e.SaveTransaction(ctx, models.Transaction{
			Date:        testDate,
			Description: "Diesel for rig",
			Category:    "Fuel",
			Type:        models.TransactionTypeExpense,
			Amount:      d("80"),
		})
		require.NoError(t, err)

		_, err = e.DeleteTransaction(ctx, cs.Transactions[0].ID)
		require.NoError(t, err)
	})
}

func TestDeleteClientUnlinksButKeepsNames(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	clientCS, err := e.SaveClient(ctx, models.Client{Name: "Acme Farms"})
	require.NoError(t, err)
	client := clientCS.Clients[0]

	projCS, err := e.SaveProject(ctx, models.Project{
		Name:        "Irrigation bore",
		ClientID:    &client.ID,
		TotalBudget: d("2000"),
		Status:      models.ProjectStatusPlanned,
	})
	require.NoError(t, err)

	inv := testInvoice("400")
	inv.ClientID = &client.ID
	invCS, err := e.SaveInvoice(ctx, inv)
	require.NoError(t, err)
	require.Equal(t, "Acme Farms", invCS.Invoices[0].ClientName)

	_, err = e.DeleteClient(ctx, client.ID)
	require.NoError(t, err)

	p, err := store.GetProject(ctx, projCS.Projects[0].ID)
	require.NoError(t, err)
	assert.Nil(t, p.ClientID)
	assert.Equal(t, "Acme Farms", p.ClientName)

	i, err := store.GetInvoice(ctx, invCS.Invoices[0].ID)
	require.NoError(t, err)
	assert.Nil(t, i.ClientID)
	assert.Equal(t, "Acme Farms", i.ClientName)
}

func TestNotFoundErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.DeleteInvoice(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.DeleteProject(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.DeleteEmployee(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.DeleteClient(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.DeleteTransaction(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, errors.Is(err, ErrReadOnly))
}
