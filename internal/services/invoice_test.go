package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func draftFor(issue time.Time) Draft {
	return Draft{
		IssueDate:      issue,
		PaymentTerms:   "Paiement à 30 jours",
		GlobalDiscount: d("10"),
		Lines: []DraftLine{
			{Designation: "PLT-001 - Plateau Mezze", LineItem: line("1", "100", "20", "0")},
			{Designation: "Livraison", LineItem: line("1", "50", "10", "0")},
		},
	}
}

func TestInvoiceService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()

	issue := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(ctx, draftFor(issue))
	require.NoError(t, err)

	assert.Equal(t, "FAC-2025-00001", inv.Number)
	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
	assertDecimal(t, "135", inv.TotalHT, "TotalHT")
	assertDecimal(t, "22.5", inv.TotalVAT, "TotalVAT")
	assertDecimal(t, "157.5", inv.TotalTTC, "TotalTTC")

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "PLT-001 - Plateau Mezze", got.Items[0].Designation)
	assert.Equal(t, 0, got.Items[0].Position)
	assert.Equal(t, "Livraison", got.Items[1].Designation)
	assertDecimal(t, "50", got.Items[1].TotalHT, "item TotalHT")
	assertDecimal(t, "157.5", got.TotalTTC, "stored TotalTTC")
}

func TestInvoiceService_NumbersPerYear(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, draftFor(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	second, err := svc.Create(ctx, draftFor(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	other, err := svc.Create(ctx, draftFor(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Equal(t, "FAC-2025-00001", first.Number)
	assert.Equal(t, "FAC-2025-00002", second.Number)
	assert.Equal(t, "FAC-2026-00001", other.Number)

	var seq models.InvoiceSequence
	require.NoError(t, db.First(&seq, "year = ?", 2025).Error)
	assert.Equal(t, 2, seq.Last)
}

func TestInvoiceService_NumbersContinueFromStoredInvoices(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()
	issue := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	for _, number := range []string{"FAC-2025-00007", "FAC-2025-99999", "FAC-2025-00012"} {
		require.NoError(t, db.Create(&models.Invoice{Number: number, IssueDate: issue}).Error)
	}

	inv, err := svc.Create(ctx, draftFor(issue))
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025-100000", inv.Number)

	next, err := svc.Create(ctx, draftFor(issue))
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025-100001", next.Number)
}

func TestInvoiceService_DeletedNumbersAreNotReused(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()
	issue := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, draftFor(issue))
	require.NoError(t, err)
	require.NoError(t, db.Delete(first).Error)

	second, err := svc.Create(ctx, draftFor(issue))
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025-00002", second.Number)
}

func TestInvoiceService_CreateDefaultsIssueDate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	svc.now = func() time.Time { return time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC) }

	draft := draftFor(time.Time{})
	inv, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "FAC-2024-00001", inv.Number)
}

func TestInvoiceService_GetNotFound(t *testing.T) {
	svc := NewInvoiceService(setupTestDB(t))
	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()

	inv, err := svc.Create(ctx, draftFor(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	edit := draftFor(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))
	edit.GlobalDiscount = d("0")
	edit.Lines = edit.Lines[1:]
	edit.Notes = "livraison le matin"
	updated, err := svc.Update(ctx, inv.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, updated.Number)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Livraison", got.Items[0].Designation)
	assert.Equal(t, "livraison le matin", got.Notes)
	assertDecimal(t, "50", got.TotalHT, "TotalHT")
	assertDecimal(t, "55", got.TotalTTC, "TotalTTC")

	var items int64
	db.Model(&models.InvoiceItem{}).Count(&items)
	assert.EqualValues(t, 1, items)
}

func TestInvoiceService_UpdateRejectsSentInvoice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()

	inv, err := svc.Create(ctx, draftFor(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.NoError(t, db.Model(inv).Update("status", models.InvoiceStatusSent).Error)

	_, err = svc.Update(ctx, inv.ID, draftFor(time.Time{}))
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = svc.Update(ctx, 999, draftFor(time.Time{}))
	assert.ErrorIs(t, err, ErrNotFound)
}
