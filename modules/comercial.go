package modules

import (
	"context"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// Comercial is the sales module: customers, opportunities and orders.
type Comercial struct {
	Customers     *Resource[models.Customer]
	Opportunities *Resource[models.SalesOpportunity]
	Orders        *Resource[models.SalesOrder]
}

func newComercial(db *bizdesk.DB, gate Authorizer) (*Comercial, error) {
	c := &Comercial{}
	var err error
	if c.Customers, err = newResource[models.Customer](db, gate, models.ModuleComercial); err != nil {
		return nil, err
	}
	if c.Opportunities, err = newResource[models.SalesOpportunity](db, gate, models.ModuleComercial); err != nil {
		return nil, err
	}
	if c.Orders, err = newResource[models.SalesOrder](db, gate, models.ModuleComercial); err != nil {
		return nil, err
	}
	return c, nil
}

// ComercialStats are the sales dashboard figures.
type ComercialStats struct {
	Customers struct {
		Total     int `json:"total"`
		Active    int `json:"active"`
		Potential int `json:"potential"`
	} `json:"customers"`
	Opportunities struct {
		Total int `json:"total"`
		Open  int `json:"open"`
		Won   int `json:"won"`
		// probability-weighted value of open opportunities
		Pipeline float64 `json:"pipeline"`
	} `json:"opportunities"`
	Orders struct {
		Total     int     `json:"total"`
		Pending   int     `json:"pending"`
		Delivered int     `json:"delivered"`
		Revenue   float64 `json:"revenue"`
	} `json:"orders"`
}

// Stats computes the sales dashboard. Cancelled orders do not count as revenue.
func (c *Comercial) Stats(ctx context.Context) (ComercialStats, error) {
	var st ComercialStats
	customers, err := c.Customers.List(ctx)
	if err != nil {
		return st, err
	}
	opps, err := c.Opportunities.List(ctx)
	if err != nil {
		return st, err
	}
	orders, err := c.Orders.List(ctx)
	if err != nil {
		return st, err
	}

	st.Customers.Total = len(customers)
	for _, cu := range customers {
		switch cu.Status {
		case models.CustomerActive:
			st.Customers.Active++
		case models.CustomerPotential:
			st.Customers.Potential++
		}
	}

	st.Opportunities.Total = len(opps)
	for _, o := range opps {
		switch o.Status {
		case models.OpportunityClosed:
			st.Opportunities.Won++
		case models.OpportunityLost:
		default:
			st.Opportunities.Open++
			st.Opportunities.Pipeline += o.EstimatedValue * float64(o.CloseProbability) / 100
		}
	}

	st.Orders.Total = len(orders)
	for _, o := range orders {
		switch o.Status {
		case models.SalesPending:
			st.Orders.Pending++
		case models.SalesDelivered:
			st.Orders.Delivered++
		}
		if o.Status != models.SalesCancelled {
			st.Orders.Revenue += o.FinalValue
		}
	}
	return st, nil
}
