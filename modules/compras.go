package modules

import (
	"context"
	"math"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// Compras is the purchasing module: products, suppliers and purchase orders.
type Compras struct {
	Products  *Resource[models.Product]
	Suppliers *Resource[models.Supplier]
	Orders    *Resource[models.PurchaseOrder]
}

func newCompras(db *bizdesk.DB, gate Authorizer) (*Compras, error) {
	c := &Compras{}
	var err error
	if c.Products, err = newResource[models.Product](db, gate, models.ModuleCompras); err != nil {
		return nil, err
	}
	if c.Suppliers, err = newResource[models.Supplier](db, gate, models.ModuleCompras); err != nil {
		return nil, err
	}
	if c.Orders, err = newResource[models.PurchaseOrder](db, gate, models.ModuleCompras); err != nil {
		return nil, err
	}
	return c, nil
}

// AttachDocument appends a document to a supplier and returns it with the id
// and upload time the store gave it.
func (c *Compras) AttachDocument(ctx context.Context, supplierID string, doc models.Document) (models.Document, error) {
	saved, err := c.Suppliers.mutate(ctx, supplierID, func(s *models.Supplier) error {
		s.Documents = append(s.Documents, doc)
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	return saved.Documents[len(saved.Documents)-1], nil
}

// ComprasStats are the dashboard figures of the purchasing page.
type ComprasStats struct {
	Products struct {
		Total           int `json:"total"`
		UniqueSuppliers int `json:"uniqueSuppliers"`
		WithoutSupplier int `json:"withoutSupplier"`
		Qualified       int `json:"qualified"`
	} `json:"products"`
	Suppliers struct {
		Total           int `json:"total"`
		Active          int `json:"active"`
		WithDocuments   int `json:"withDocuments"`
		AvgDeliveryDays int `json:"avgDeliveryDays"`
	} `json:"suppliers"`
	Orders struct {
		Total         int `json:"total"`
		Pending       int `json:"pending"`
		Delivered     int `json:"delivered"`
		TotalQuantity int `json:"totalQuantity"`
	} `json:"orders"`
}

// Stats computes the purchasing dashboard. A supplier is active when at least
// one purchase order references it.
func (c *Compras) Stats(ctx context.Context) (ComprasStats, error) {
	var st ComprasStats
	products, err := c.Products.List(ctx)
	if err != nil {
		return st, err
	}
	suppliers, err := c.Suppliers.List(ctx)
	if err != nil {
		return st, err
	}
	orders, err := c.Orders.List(ctx)
	if err != nil {
		return st, err
	}

	names := map[string]bool{}
	st.Products.Total = len(products)
	for _, p := range products {
		names[p.Supplier] = true
		if p.Supplier == "" {
			st.Products.WithoutSupplier++
		}
		if p.Qualification != "" {
			st.Products.Qualified++
		}
	}
	st.Products.UniqueSuppliers = len(names)

	ordered := map[string]bool{}
	var leadDays float64
	var dated int
	st.Orders.Total = len(orders)
	for _, o := range orders {
		ordered[o.SupplierID] = true
		switch o.Status {
		case models.PurchaseRequested, models.PurchaseApproved:
			st.Orders.Pending++
		case models.PurchaseDelivered:
			st.Orders.Delivered++
		}
		st.Orders.TotalQuantity += o.Quantity

		from, err1 := o.OrderDate.Time()
		to, err2 := o.ExpectedDeliveryDate.Time()
		if err1 == nil && err2 == nil {
			leadDays += to.Sub(from).Hours() / 24
			dated++
		}
	}
	if dated > 0 {
		st.Suppliers.AvgDeliveryDays = int(math.Round(leadDays / float64(dated)))
	}

	st.Suppliers.Total = len(suppliers)
	for _, s := range suppliers {
		if ordered[s.ID] {
			st.Suppliers.Active++
		}
		if len(s.Documents) > 0 {
			st.Suppliers.WithDocuments++
		}
	}
	return st, nil
}
