package models

import "github.com/dwoolworth/bizdesk"

// ErrorLog records a failure reported by a module. CreatedAt is the time of
// the failure.
type ErrorLog struct {
	bizdesk.Model
	Error   string         `json:"error"   bizdesk:"required"`
	Module  string         `json:"module"  bizdesk:"required"`
	UserID  string         `json:"userId,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func init() {
	register[ErrorLog](CollErrorLogs, ModuleAdmin)
}
