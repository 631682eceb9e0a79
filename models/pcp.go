package models

import "github.com/dwoolworth/bizdesk"

// ProductionStatus is the lifecycle of a production order.
type ProductionStatus string

const (
	ProductionPlanned    ProductionStatus = "planned"
	ProductionInProgress ProductionStatus = "inProgress"
	ProductionDelayed    ProductionStatus = "delayed"
	ProductionCompleted  ProductionStatus = "completed"
)

// ProductionOrder schedules the manufacture of a product.
type ProductionOrder struct {
	bizdesk.Model
	OrderID         string           `json:"orderId"`
	ProductID       string           `json:"productId"       bizdesk:"required,ref=products"`
	Quantity        int              `json:"quantity"        bizdesk:"min=1"`
	StartDate       Date             `json:"startDate"       bizdesk:"default=today"`
	ExpectedEndDate Date             `json:"expectedEndDate" bizdesk:"required"`
	ActualEndDate   Date             `json:"actualEndDate,omitempty"`
	Status          ProductionStatus `json:"status"          bizdesk:"enum=planned|inProgress|delayed|completed,default=planned"`
	Instructions    string           `json:"instructions"`
	Attachments     []Document       `json:"attachments"     bizdesk:"appendonly,stamp=uploadedAt,default=[]"`
}

func init() {
	register[ProductionOrder](CollProductionOrders, ModulePCP)
}
