package models

import "github.com/dwoolworth/bizdesk"

// Product is a catalogue item. Supplier is the free-text supplier name shown
// on the product sheet.
type Product struct {
	bizdesk.Model
	Code           string `json:"code"           bizdesk:"required"`
	Name           string `json:"name"           bizdesk:"required"`
	Classification string `json:"classification"`
	PI             string `json:"pi"`
	PA             string `json:"pa"`
	Structure      string `json:"structure"`
	Specification  string `json:"specification"`
	Packaging      string `json:"packaging"`
	Lid            string `json:"lid"`
	Pot            string `json:"pot"`
	Label          string `json:"label"`
	Supplier       string `json:"supplier"`
	Qualification  string `json:"qualification"`
	Observations   string `json:"observations"`
	Others         string `json:"others"`
}

// Supplier is a vendor with its commercial terms.
type Supplier struct {
	bizdesk.Model
	Name          string     `json:"name"          bizdesk:"required"`
	Contact       string     `json:"contact"`
	Products      string     `json:"products"`
	PaymentTerms  string     `json:"paymentTerms"`
	DeliveryTerms string     `json:"deliveryTerms"`
	Documents     []Document `json:"documents"     bizdesk:"appendonly,stamp=uploadedAt,default=[]"`
}

// PurchaseOrderStatus is the lifecycle of a purchase order.
type PurchaseOrderStatus string

const (
	PurchaseRequested  PurchaseOrderStatus = "requested"
	PurchaseApproved   PurchaseOrderStatus = "approved"
	PurchaseProcessing PurchaseOrderStatus = "processing"
	PurchaseDelivered  PurchaseOrderStatus = "delivered"
	PurchaseCancelled  PurchaseOrderStatus = "cancelled"
)

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	bizdesk.Model
	SupplierID           string              `json:"supplierId"           bizdesk:"required,ref=suppliers"`
	ProductID            string              `json:"productId"            bizdesk:"required,ref=products"`
	Quantity             int                 `json:"quantity"             bizdesk:"min=1"`
	OrderDate            Date                `json:"orderDate"            bizdesk:"default=today"`
	ExpectedDeliveryDate Date                `json:"expectedDeliveryDate"`
	Status               PurchaseOrderStatus `json:"status"               bizdesk:"enum=requested|approved|processing|delivered|cancelled,default=requested"`
}

func init() {
	register[Product](CollProducts, ModuleCompras)
	register[Supplier](CollSuppliers, ModuleCompras)
	register[PurchaseOrder](CollPurchaseOrders, ModuleCompras)
}
