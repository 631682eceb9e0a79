package modules

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// Errors keeps the persistent error log. Any caller may record an error;
// reading the log is reserved to admin.
type Errors struct {
	Logs *Resource[models.ErrorLog]

	gate   Authorizer
	logger *zap.Logger
}

func newErrors(db *bizdesk.DB, gate Authorizer) (*Errors, error) {
	logs, err := newResource[models.ErrorLog](db, gate, models.ModuleAdmin)
	if err != nil {
		return nil, err
	}
	return &Errors{Logs: logs, gate: gate, logger: db.Logger()}, nil
}

// Record appends err to the log, tagged with the module and the current user.
func (e *Errors) Record(ctx context.Context, err error, module string, details map[string]any) (string, error) {
	if err == nil {
		return "", errors.New("modules: Record needs an error")
	}
	entry := &models.ErrorLog{Error: err.Error(), Module: module, Details: details}
	if u, ok := e.gate.Current(); ok {
		entry.UserID = u.ID
	}
	if module == "" {
		entry.Module = "unknown"
	}

	e.logger.Error("module error", zap.String("module", entry.Module), zap.Error(err))
	return e.Logs.Collection().Add(ctx, entry)
}

// ErrorStats are the totals of the error log.
type ErrorStats struct {
	Total    int            `json:"total"`
	ByModule map[string]int `json:"byModule"`
}

// Stats counts logged errors by module.
func (e *Errors) Stats(ctx context.Context) (ErrorStats, error) {
	st := ErrorStats{ByModule: map[string]int{}}
	logs, err := e.Logs.List(ctx)
	if err != nil {
		return st, err
	}
	st.Total = len(logs)
	for _, l := range logs {
		st.ByModule[l.Module]++
	}
	return st, nil
}
