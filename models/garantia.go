package models

import (
	"time"

	"github.com/dwoolworth/bizdesk"
)

// WarrantyStatus is the lifecycle of a warranty claim.
type WarrantyStatus string

const (
	WarrantyOpen      WarrantyStatus = "open"
	WarrantyAnalyzing WarrantyStatus = "analyzing"
	WarrantyResolved  WarrantyStatus = "resolved"
	WarrantyClosed    WarrantyStatus = "closed"
)

// WarrantyHistory is one action taken on a claim.
type WarrantyHistory struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	Replacement string    `json:"replacement,omitempty"`
	Repair      string    `json:"repair,omitempty"`
	Responsible string    `json:"responsible"`
	Date        time.Time `json:"date"`
}

// WarrantyClaim is a customer complaint about a product.
type WarrantyClaim struct {
	bizdesk.Model
	ProductID   string            `json:"productId"   bizdesk:"required,ref=products"`
	Customer    string            `json:"customer"    bizdesk:"required"`
	ClaimDate   Date              `json:"claimDate"   bizdesk:"default=today"`
	Description string            `json:"description"`
	Status      WarrantyStatus    `json:"status"      bizdesk:"enum=open|analyzing|resolved|closed,default=open"`
	History     []WarrantyHistory `json:"history"     bizdesk:"appendonly,stamp=date,default=[]"`
}

func init() {
	register[WarrantyClaim](CollWarrantyClaims, ModuleGarantia)
}
