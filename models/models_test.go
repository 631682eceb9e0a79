package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwoolworth/bizdesk"
)

func TestDate(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, Date("2024-03-09"), d)

	got, err := d.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)

	got, err = Date("2024-03-09T10:00:00-03:00").Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 13, 0, 0, 0, time.UTC), got)

	_, err = Date("09/03/2024").Time()
	assert.Error(t, err)

	assert.True(t, Date("").IsZero())
	assert.False(t, d.IsZero())
}

func TestRegistrations(t *testing.T) {
	want := map[string]string{
		CollProducts:         ModuleCompras,
		CollSuppliers:        ModuleCompras,
		CollPurchaseOrders:   ModuleCompras,
		CollProductionOrders: ModulePCP,
		CollRDProjects:       ModulePD,
		CollWarrantyClaims:   ModuleGarantia,
		CollRegulatoryDocs:   ModuleRegulatorios,
		CollCustomers:        ModuleComercial,
		CollOpportunities:    ModuleComercial,
		CollSalesOrders:      ModuleComercial,
		CollErrorLogs:        ModuleAdmin,
	}
	for coll, module := range want {
		schema, ok := bizdesk.Get(coll)
		require.True(t, ok, "%s not registered", coll)
		assert.Equal(t, module, schema.Module, coll)
		assert.True(t, schema.HasField("id"), coll)
		assert.True(t, schema.HasField("createdAt"), coll)
	}
}

func TestAppendOnlyLists(t *testing.T) {
	cases := []struct{ coll, field, stamp string }{
		{CollWarrantyClaims, "history", "date"},
		{CollRDProjects, "updates", "date"},
		{CollRDProjects, "documents", "uploadedAt"},
		{CollSuppliers, "documents", "uploadedAt"},
		{CollProductionOrders, "attachments", "uploadedAt"},
		{CollCustomers, "documents", "uploadedAt"},
		{CollSalesOrders, "documents", "uploadedAt"},
	}
	for _, tc := range cases {
		schema, _ := bizdesk.Get(tc.coll)
		fs := schema.GetField(tc.field)
		require.NotNil(t, fs, "%s.%s", tc.coll, tc.field)
		assert.True(t, fs.AppendOnly, "%s.%s", tc.coll, tc.field)
		assert.Equal(t, tc.stamp, fs.Stamp, "%s.%s", tc.coll, tc.field)
	}
}

func TestClampHooks(t *testing.T) {
	ctx := context.Background()

	p := &RDProject{Progress: 140}
	require.NoError(t, p.BeforeCreate(ctx))
	assert.Equal(t, 100, p.Progress)
	p.Progress = -5
	require.NoError(t, p.BeforeSave(ctx))
	assert.Equal(t, 0, p.Progress)

	o := &SalesOpportunity{CloseProbability: 101}
	require.NoError(t, o.BeforeCreate(ctx))
	assert.Equal(t, 100, o.CloseProbability)
	o.CloseProbability = 55
	require.NoError(t, o.BeforeSave(ctx))
	assert.Equal(t, 55, o.CloseProbability)
}

func add[T any](t *testing.T, db *bizdesk.DB, rec *T) {
	t.Helper()
	c, err := bizdesk.NewCollection[T](db)
	require.NoError(t, err)
	_, err = c.Add(context.Background(), rec)
	require.NoError(t, err)
}

func TestDefaultsApplyOnAdd(t *testing.T) {
	day := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	today := Date("2024-05-10")
	db, err := bizdesk.Open(bizdesk.NewMemoryBackend(), bizdesk.WithClock(func() time.Time { return day }))
	require.NoError(t, err)

	claim := &WarrantyClaim{ProductID: "p1", Customer: "Loja"}
	add(t, db, claim)
	assert.Equal(t, WarrantyOpen, claim.Status)
	assert.Equal(t, today, claim.ClaimDate)
	assert.NotNil(t, claim.History)
	assert.Empty(t, claim.History)

	// dates given on the form are kept
	po := &PurchaseOrder{OrderDate: "2024-01-02"}
	add(t, db, po)
	assert.Equal(t, PurchaseRequested, po.Status)
	assert.Equal(t, Date("2024-01-02"), po.OrderDate)

	project := &RDProject{Name: "Lid"}
	add(t, db, project)
	assert.Equal(t, ProjectResearch, project.Status)
	assert.Equal(t, today, project.StartDate)
	assert.Empty(t, project.ActualEndDate)
	assert.NotNil(t, project.Responsibles)
	assert.NotNil(t, project.Updates)

	prod := &ProductionOrder{}
	add(t, db, prod)
	assert.Equal(t, ProductionPlanned, prod.Status)
	assert.Equal(t, today, prod.StartDate)

	doc := &RegulatoryDocument{}
	add(t, db, doc)
	assert.Equal(t, RegulatoryPending, doc.Status)
	assert.Equal(t, today, doc.IssueDate)
	assert.Empty(t, doc.ValidityDate)

	cust := &Customer{}
	add(t, db, cust)
	assert.Equal(t, CustomerPotential, cust.Status)

	opp := &SalesOpportunity{}
	add(t, db, opp)
	assert.Equal(t, OpportunityNegotiation, opp.Status)
	assert.Equal(t, today, opp.StartDate)

	so := &SalesOrder{}
	add(t, db, so)
	assert.Equal(t, SalesPending, so.Status)
	assert.Equal(t, today, so.OrderDate)
}
