package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// orderDocument is the persisted shape of an order:
// {id, customer{name,email,phone,address}, items[{id,name,price,quantity,color}],
// total, status, createdAt, paystackRef?}.
type orderDocument struct {
	ID          string           `bson:"_id" json:"id"`
	Customer    customerDocument `bson:"customer" json:"customer"`
	Items       []itemDocument   `bson:"items" json:"items"`
	Total       amount           `bson:"total" json:"total"`
	Status      string           `bson:"status" json:"status"`
	CreatedAt   *time.Time       `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	PaystackRef string           `bson:"paystackRef,omitempty" json:"paystackRef,omitempty"`
}

type customerDocument struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
}

type itemDocument struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Price    amount `bson:"price" json:"price"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Color    string `bson:"color" json:"color"`
}

// amount stores a decimal as a JSON number and a BSON Decimal128.
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

func (a amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(a.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode amount %s: %w", a.Decimal, err)
	}
	return bson.MarshalValue(d)
}

func (a *amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(rv.Decimal128().String())
		if err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
		a.Decimal = d
	case bsontype.Double:
		a.Decimal = decimal.NewFromFloat(rv.Double())
	case bsontype.Int32:
		a.Decimal = decimal.NewFromInt32(rv.Int32())
	case bsontype.Int64:
		a.Decimal = decimal.NewFromInt(rv.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(rv.StringValue())
		if err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
		a.Decimal = d
	default:
		return fmt.Errorf("cannot decode amount from BSON %s", t)
	}
	return nil
}

func toDocument(o *model.OrderRecord) orderDocument {
	items := make([]itemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemDocument{
			ID:       it.ProductID,
			Name:     it.Name,
			Price:    amount{it.Price},
			Quantity: it.Quantity,
			Color:    it.ColorName,
		})
	}

	doc := orderDocument{
		ID: o.ID,
		Customer: customerDocument{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Items:       items,
		Total:       amount{o.Total},
		Status:      string(o.Status),
		PaystackRef: o.PaymentReference,
	}
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		doc.CreatedAt = &t
	}
	return doc
}

func (d orderDocument) toRecord() model.OrderRecord {
	items := make([]model.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, model.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price.Decimal,
			Quantity:  it.Quantity,
			ColorName: it.Color,
		})
	}

	rec := model.OrderRecord{
		ID: d.ID,
		Customer: model.OrderCustomer{
			Name:    d.Customer.Name,
			Email:   d.Customer.Email,
			Phone:   d.Customer.Phone,
			Address: d.Customer.Address,
		},
		Items:            items,
		Total:            d.Total.Decimal,
		Status:           model.OrderStatus(d.Status),
		PaymentReference: d.PaystackRef,
	}
	if d.CreatedAt != nil {
		rec.CreatedAt = d.CreatedAt.UTC()
	}
	return rec
}

// jsonDocument encodes the document for the JSONB column, leaving out the
// fields held in their own columns.
func jsonDocument(o *model.OrderRecord) ([]byte, error) {
	doc := toDocument(o)
	doc.CreatedAt = nil
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order %s: %w", o.ID, err)
	}
	return data, nil
}
