package modules

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// ExpiryWindow is how far ahead a document counts as expiring soon.
const ExpiryWindow = 30 * 24 * time.Hour

// Regulatorios is the regulatory documents module.
type Regulatorios struct {
	Documents *Resource[models.RegulatoryDocument]

	logger *zap.Logger
}

func newRegulatorios(db *bizdesk.DB, gate Authorizer) (*Regulatorios, error) {
	docs, err := newResource[models.RegulatoryDocument](db, gate, models.ModuleRegulatorios)
	if err != nil {
		return nil, err
	}
	return &Regulatorios{Documents: docs, logger: db.Logger()}, nil
}

// MarkExpired sets status expired on documents whose validity date is before
// now. It returns the number of documents changed.
func (r *Regulatorios) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	docs, err := r.Documents.List(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, d := range docs {
		if d.Status == models.RegulatoryExpired {
			continue
		}
		valid, err := d.ValidityDate.Time()
		if err != nil {
			r.logger.Warn("skipping regulatory document with bad validity date",
				zap.String("id", d.ID), zap.Error(err))
			continue
		}
		if !valid.Before(now) {
			continue
		}
		if _, err := r.Documents.mutate(ctx, d.ID, func(rec *models.RegulatoryDocument) error {
			rec.Status = models.RegulatoryExpired
			return nil
		}); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// RegulatoriosStats are the regulatory dashboard figures.
type RegulatoriosStats struct {
	Total        int `json:"total"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiringSoon"`
	Updated      int `json:"updated"`
}

// Stats counts documents by status. ExpiringSoon counts every document not
// marked expired whose validity date is no later than now plus ExpiryWindow,
// so overdue documents count until MarkExpired runs.
func (r *Regulatorios) Stats(ctx context.Context, now time.Time) (RegulatoriosStats, error) {
	var st RegulatoriosStats
	docs, err := r.Documents.List(ctx)
	if err != nil {
		return st, err
	}
	st.Total = len(docs)
	horizon := now.Add(ExpiryWindow)
	for _, d := range docs {
		switch d.Status {
		case models.RegulatoryExpired:
			st.Expired++
			continue
		case models.RegulatoryUpdated:
			st.Updated++
		}
		valid, err := d.ValidityDate.Time()
		if err == nil && !valid.After(horizon) {
			st.ExpiringSoon++
		}
	}
	return st, nil
}
