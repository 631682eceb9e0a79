package models

import "github.com/dwoolworth/bizdesk"

// RegulatoryStatus tracks whether a registration is current.
type RegulatoryStatus string

const (
	RegulatoryPending RegulatoryStatus = "pending"
	RegulatoryUpdated RegulatoryStatus = "updated"
	RegulatoryExpired RegulatoryStatus = "expired"
)

// RegulatoryDocument is a registration or certificate with a validity date.
type RegulatoryDocument struct {
	bizdesk.Model
	Name         string           `json:"name"         bizdesk:"required"`
	Number       string           `json:"number"`
	IssueDate    Date             `json:"issueDate"    bizdesk:"default=today"`
	ValidityDate Date             `json:"validityDate" bizdesk:"required"`
	ProductID    string           `json:"productId"    bizdesk:"ref=products"`
	Status       RegulatoryStatus `json:"status"       bizdesk:"enum=pending|updated|expired,default=pending"`
	DocumentURL  string           `json:"documentUrl,omitempty"`
	DocumentType string           `json:"documentType,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

func init() {
	register[RegulatoryDocument](CollRegulatoryDocs, ModuleRegulatorios)
}
