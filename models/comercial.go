package models

import (
	"context"

	"github.com/dwoolworth/bizdesk"
)

// CustomerStatus is the relationship stage of a customer.
type CustomerStatus string

const (
	CustomerPotential CustomerStatus = "potential"
	CustomerActive    CustomerStatus = "active"
	CustomerInactive  CustomerStatus = "inactive"
)

// Customer is a buyer account.
type Customer struct {
	bizdesk.Model
	Name      string         `json:"name"      bizdesk:"required"`
	Company   string         `json:"company"`
	Contact   string         `json:"contact"`
	Email     string         `json:"email"`
	Address   string         `json:"address"`
	Status    CustomerStatus `json:"status"    bizdesk:"enum=potential|active|inactive,default=potential"`
	Documents []Document     `json:"documents" bizdesk:"appendonly,stamp=uploadedAt,default=[]"`
}

// OpportunityStatus is the stage of a sales opportunity.
type OpportunityStatus string

const (
	OpportunityNegotiation  OpportunityStatus = "negotiation"
	OpportunityProposalSent OpportunityStatus = "proposalSent"
	OpportunityAnalysis     OpportunityStatus = "analysis"
	OpportunityClosed       OpportunityStatus = "closed"
	OpportunityLost         OpportunityStatus = "lost"
)

// SalesOpportunity is a potential sale to a customer.
type SalesOpportunity struct {
	bizdesk.Model
	CustomerID        string            `json:"customerId"        bizdesk:"required,ref=customers"`
	ProductID         string            `json:"productId"         bizdesk:"ref=products"`
	EstimatedValue    float64           `json:"estimatedValue"    bizdesk:"min=0"`
	CloseProbability  int               `json:"closeProbability"  bizdesk:"min=0,max=100"`
	StartDate         Date              `json:"startDate"         bizdesk:"default=today"`
	ExpectedCloseDate Date              `json:"expectedCloseDate"`
	Status            OpportunityStatus `json:"status"            bizdesk:"enum=negotiation|proposalSent|analysis|closed|lost,default=negotiation"`
	Notes             string            `json:"notes,omitempty"`
}

// BeforeCreate keeps the close probability within 0..100.
func (o *SalesOpportunity) BeforeCreate(ctx context.Context) error {
	o.CloseProbability = clamp(o.CloseProbability, 0, 100)
	return nil
}

// BeforeSave keeps the close probability within 0..100.
func (o *SalesOpportunity) BeforeSave(ctx context.Context) error {
	o.CloseProbability = clamp(o.CloseProbability, 0, 100)
	return nil
}

// SalesOrderStatus is the lifecycle of a sales order.
type SalesOrderStatus string

const (
	SalesPending    SalesOrderStatus = "pending"
	SalesProcessing SalesOrderStatus = "processing"
	SalesDelivered  SalesOrderStatus = "delivered"
	SalesCancelled  SalesOrderStatus = "cancelled"
)

// SalesOrder is a confirmed sale.
type SalesOrder struct {
	bizdesk.Model
	CustomerID string           `json:"customerId" bizdesk:"required,ref=customers"`
	ProductID  string           `json:"productId"  bizdesk:"required,ref=products"`
	Quantity   int              `json:"quantity"   bizdesk:"min=1"`
	FinalValue float64          `json:"finalValue" bizdesk:"min=0"`
	OrderDate  Date             `json:"orderDate"  bizdesk:"default=today"`
	Status     SalesOrderStatus `json:"status"     bizdesk:"enum=pending|processing|delivered|cancelled,default=pending"`
	Documents  []Document       `json:"documents"  bizdesk:"appendonly,stamp=uploadedAt,default=[]"`
}

func init() {
	register[Customer](CollCustomers, ModuleComercial)
	register[SalesOpportunity](CollOpportunities, ModuleComercial)
	register[SalesOrder](CollSalesOrders, ModuleComercial)
}
