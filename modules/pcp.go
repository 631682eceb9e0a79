package modules

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// PCP is the production planning module.
type PCP struct {
	Orders *Resource[models.ProductionOrder]

	logger *zap.Logger
}

func newPCP(db *bizdesk.DB, gate Authorizer) (*PCP, error) {
	orders, err := newResource[models.ProductionOrder](db, gate, models.ModulePCP)
	if err != nil {
		return nil, err
	}
	return &PCP{Orders: orders, logger: db.Logger()}, nil
}

// MarkDelayed sets status delayed on every order that is not completed and
// whose expected end date is before now. It returns the number of orders changed.
func (p *PCP) MarkDelayed(ctx context.Context, now time.Time) (int, error) {
	orders, err := p.Orders.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, o := range orders {
		if o.Status == models.ProductionCompleted || o.Status == models.ProductionDelayed {
			continue
		}
		end, err := o.ExpectedEndDate.Time()
		if err != nil {
			p.logger.Warn("skipping production order with bad end date",
				zap.String("id", o.ID), zap.Error(err))
			continue
		}
		if !end.Before(now) {
			continue
		}
		if _, err := p.Orders.mutate(ctx, o.ID, func(rec *models.ProductionOrder) error {
			rec.Status = models.ProductionDelayed
			return nil
		}); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// Complete marks an order completed with the given end date.
func (p *PCP) Complete(ctx context.Context, id string, end time.Time) (models.ProductionOrder, error) {
	return p.Orders.mutate(ctx, id, func(rec *models.ProductionOrder) error {
		rec.Status = models.ProductionCompleted
		rec.ActualEndDate = models.NewDate(end)
		return nil
	})
}

// PCPStats are the production dashboard figures.
type PCPStats struct {
	Total      int `json:"total"`
	InProgress int `json:"inProgress"`
	Delayed    int `json:"delayed"`
	Completed  int `json:"completed"`
}

// Stats counts production orders by status.
func (p *PCP) Stats(ctx context.Context) (PCPStats, error) {
	var st PCPStats
	orders, err := p.Orders.List(ctx)
	if err != nil {
		return st, err
	}
	st.Total = len(orders)
	for _, o := range orders {
		switch o.Status {
		case models.ProductionInProgress:
			st.InProgress++
		case models.ProductionDelayed:
			st.Delayed++
		case models.ProductionCompleted:
			st.Completed++
		}
	}
	return st, nil
}
