package modules

import (
	"context"
	"math"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// Garantia is the warranty module.
type Garantia struct {
	Claims *Resource[models.WarrantyClaim]
}

func newGarantia(db *bizdesk.DB, gate Authorizer) (*Garantia, error) {
	claims, err := newResource[models.WarrantyClaim](db, gate, models.ModuleGarantia)
	if err != nil {
		return nil, err
	}
	return &Garantia{Claims: claims}, nil
}

// AddHistory appends an action to a claim and marks the claim resolved.
// The store gives the entry its own id and date.
func (g *Garantia) AddHistory(ctx context.Context, id string, entry models.WarrantyHistory) (models.WarrantyClaim, error) {
	if entry.Action == "" {
		return models.WarrantyClaim{}, bizdesk.ValidationErrors{{Field: "action", Message: "field is required"}}
	}
	return g.Claims.mutate(ctx, id, func(rec *models.WarrantyClaim) error {
		rec.History = append(rec.History, entry)
		rec.Status = models.WarrantyResolved
		return nil
	})
}

// GarantiaStats are the warranty dashboard figures.
type GarantiaStats struct {
	Total             int     `json:"total"`
	Resolved          int     `json:"resolved"`
	AvgResolutionDays int     `json:"avgResolutionDays"`
	ResolutionRate    float64 `json:"resolutionRate"`
}

// Stats counts resolved or closed claims. Resolution time is the span from
// createdAt to the last update of each resolved claim; the rate is a
// percentage with one decimal.
func (g *Garantia) Stats(ctx context.Context) (GarantiaStats, error) {
	var st GarantiaStats
	claims, err := g.Claims.List(ctx)
	if err != nil {
		return st, err
	}
	st.Total = len(claims)

	var days float64
	for _, c := range claims {
		if c.Status != models.WarrantyResolved && c.Status != models.WarrantyClosed {
			continue
		}
		st.Resolved++
		days += c.UpdatedAt.Sub(c.CreatedAt).Hours() / 24
	}
	if st.Resolved > 0 {
		st.AvgResolutionDays = int(math.Round(days / float64(st.Resolved)))
	}
	if st.Total > 0 {
		st.ResolutionRate = math.Round(float64(st.Resolved)/float64(st.Total)*1000) / 10
	}
	return st, nil
}
