// Package models declares the record types of every business module and
// registers them with their collections.
package models

import (
	"fmt"
	"time"

	"github.com/dwoolworth/bizdesk"
)

// Module tags. A user whose role equals the tag (or who is admin) may use
// the collections owned by that module.
const (
	ModuleAdmin        = "admin"
	ModuleCompras      = "compras"
	ModulePCP          = "pcp"
	ModulePD           = "pd"
	ModuleGarantia     = "garantia"
	ModuleRegulatorios = "regulatorios"
	ModuleComercial    = "comercial"
)

// Modules lists the business module tags in menu order.
var Modules = []string{
	ModuleCompras, ModulePCP, ModulePD, ModuleGarantia, ModuleRegulatorios, ModuleComercial,
}

// Collection names.
const (
	CollProducts         = "products"
	CollSuppliers        = "suppliers"
	CollPurchaseOrders   = "purchase-orders"
	CollProductionOrders = "production-orders"
	CollRDProjects       = "rd-projects"
	CollWarrantyClaims   = "warranty-claims"
	CollRegulatoryDocs   = "regulatory-docs"
	CollCustomers        = "customers"
	CollOpportunities    = "opportunities"
	CollSalesOrders      = "orders"
	CollErrorLogs        = "error-logs"
)

// Date is a calendar date as entered on forms ("2006-01-02"). Full RFC 3339
// timestamps are accepted too.
type Date string

// NewDate formats t as a Date.
func NewDate(t time.Time) Date {
	return Date(t.Format(time.DateOnly))
}

// Time parses the date. Dates without a time are midnight UTC.
func (d Date) Time() (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, string(d)); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("models: invalid date %q", string(d))
	}
	return t.UTC(), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Document is a file attached to a supplier, order, project or customer.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func register[T any](collection, module string) {
	if err := bizdesk.Register[T](collection, module); err != nil {
		panic(err)
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
