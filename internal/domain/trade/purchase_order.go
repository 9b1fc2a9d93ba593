package trade

import (
	"time"

	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft    PurchaseOrderStatus = "Draft"
	PurchaseOrderStatusReceived PurchaseOrderStatus = "Received"
)

// CanModify reports whether lines may still be replaced.
func (s PurchaseOrderStatus) CanModify() bool {
	return s == PurchaseOrderStatusDraft
}

var hundred = decimal.NewFromInt(100)

// PurchaseOrderLineInput is what a caller may supply for a line. Monetary
// results are always derived from these inputs, never accepted from callers.
type PurchaseOrderLineInput struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	MRP             decimal.Decimal
	SchemeAmount    decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
}

// PurchaseOrderLine is a priced purchase order line.
type PurchaseOrderLine struct {
	ID              uuid.UUID
	LineNo          int
	ProductID       uuid.UUID
	ProductName     string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	MRP             decimal.Decimal
	SchemeAmount    decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	GrossAmount     decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxableAmount   decimal.Decimal
	TaxAmount       decimal.Decimal
	Amount          decimal.Decimal
}

// PurchaseOrderTotals are header totals, always the sum of the priced lines.
type PurchaseOrderTotals struct {
	TotalQuantity decimal.Decimal
	Gross         decimal.Decimal
	Scheme        decimal.Decimal
	Discount      decimal.Decimal
	Taxable       decimal.Decimal
	Tax           decimal.Decimal
	GrandTotal    decimal.Decimal
}

// PurchaseOrder is a vendor order for products.
type PurchaseOrder struct {
	shared.BaseEntity
	PONumber string
	PODate   time.Time
	VendorID uuid.UUID
	Remarks  string
	Status   PurchaseOrderStatus
	Totals   PurchaseOrderTotals
	Lines    []PurchaseOrderLine
}

// PriceLine computes a line from its inputs:
//
//	gross    = qty * price
//	discount = round2((gross - scheme) * disc% / 100)
//	taxable  = gross - scheme - discount
//	tax      = round2(taxable * tax% / 100)
//	amount   = round2(taxable + tax)
func PriceLine(in PurchaseOrderLineInput) (PurchaseOrderLine, error) {
	if in.ProductID == uuid.Nil {
		return PurchaseOrderLine{}, shared.NewValidationError("product is required on every line")
	}
	if !in.Quantity.IsPositive() {
		return PurchaseOrderLine{}, shared.NewValidationError("quantity must be positive")
	}
	if in.Price.IsNegative() || in.MRP.IsNegative() || in.SchemeAmount.IsNegative() || in.TaxPercent.IsNegative() {
		return PurchaseOrderLine{}, shared.NewValidationError("price, mrp, scheme and tax must not be negative")
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return PurchaseOrderLine{}, shared.NewValidationError("discount percent must be between 0 and 100")
	}

	gross := in.Quantity.Mul(in.Price)
	if in.SchemeAmount.GreaterThan(gross) {
		return PurchaseOrderLine{}, shared.NewValidationError("scheme amount exceeds line value")
	}
	discount := shared.RoundMoney(gross.Sub(in.SchemeAmount).Mul(in.DiscountPercent).Div(hundred))
	taxable := gross.Sub(in.SchemeAmount).Sub(discount)
	tax := shared.RoundMoney(taxable.Mul(in.TaxPercent).Div(hundred))

	return PurchaseOrderLine{
		ID:              uuid.New(),
		ProductID:       in.ProductID,
		ProductName:     in.ProductName,
		Quantity:        in.Quantity,
		Price:           in.Price,
		MRP:             in.MRP,
		SchemeAmount:    in.SchemeAmount,
		DiscountPercent: in.DiscountPercent,
		TaxPercent:      in.TaxPercent,
		GrossAmount:     gross,
		DiscountAmount:  discount,
		TaxableAmount:   taxable,
		TaxAmount:       tax,
		Amount:          shared.RoundMoney(taxable.Add(tax)),
	}, nil
}

// PriceLines prices every input, numbering lines from 1.
func PriceLines(inputs []PurchaseOrderLineInput) ([]PurchaseOrderLine, error) {
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("at least one line item is required")
	}
	lines := make([]PurchaseOrderLine, 0, len(inputs))
	for i, in := range inputs {
		line, err := PriceLine(in)
		if err != nil {
			return nil, err
		}
		line.LineNo = i + 1
		lines = append(lines, line)
	}
	return lines, nil
}

// SumLines derives header totals. GrandTotal equals the sum of line amounts exactly.
func SumLines(lines []PurchaseOrderLine) PurchaseOrderTotals {
	t := PurchaseOrderTotals{
		TotalQuantity: decimal.Zero,
		Gross:         decimal.Zero,
		Scheme:        decimal.Zero,
		Discount:      decimal.Zero,
		Taxable:       decimal.Zero,
		Tax:           decimal.Zero,
		GrandTotal:    decimal.Zero,
	}
	for _, l := range lines {
		t.TotalQuantity = t.TotalQuantity.Add(l.Quantity)
		t.Gross = t.Gross.Add(l.GrossAmount)
		t.Scheme = t.Scheme.Add(l.SchemeAmount)
		t.Discount = t.Discount.Add(l.DiscountAmount)
		t.Taxable = t.Taxable.Add(l.TaxableAmount)
		t.Tax = t.Tax.Add(l.TaxAmount)
		t.GrandTotal = t.GrandTotal.Add(l.Amount)
	}
	t.Gross = shared.RoundMoney(t.Gross)
	t.Taxable = shared.RoundMoney(t.Taxable)
	return t
}

// NewPurchaseOrder creates a draft order with server-computed totals.
func NewPurchaseOrder(poNumber string, vendorID uuid.UUID, remarks string, inputs []PurchaseOrderLineInput) (*PurchaseOrder, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor is required")
	}
	lines, err := PriceLines(inputs)
	if err != nil {
		return nil, err
	}
	po := &PurchaseOrder{
		BaseEntity: shared.NewBaseEntity(),
		PONumber:   poNumber,
		VendorID:   vendorID,
		Remarks:    remarks,
		Status:     PurchaseOrderStatusDraft,
		Lines:      lines,
		Totals:     SumLines(lines),
	}
	po.PODate = po.CreatedAt
	return po, nil
}

// ReplaceLines reprices the order from new inputs, discarding previous lines.
func (o *PurchaseOrder) ReplaceLines(vendorID uuid.UUID, remarks string, inputs []PurchaseOrderLineInput) error {
	if !o.Status.CanModify() {
		return shared.NewInvalidStateError("purchase order %s is %s and can no longer be edited", o.PONumber, o.Status)
	}
	if vendorID == uuid.Nil {
		return shared.NewValidationError("vendor is required")
	}
	lines, err := PriceLines(inputs)
	if err != nil {
		return err
	}
	o.VendorID = vendorID
	o.Remarks = remarks
	o.Lines = lines
	o.Totals = SumLines(lines)
	o.Touch()
	return nil
}

// MarkReceived records that goods were received against the order.
func (o *PurchaseOrder) MarkReceived() {
	o.Status = PurchaseOrderStatusReceived
	o.Touch()
}
