// Package admin filters, searches, sorts and summarises fetched orders for
// the admin order viewer.
package admin

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// SortKey names an order column.
type SortKey string

const (
	SortByID        SortKey = "id"
	SortByCreatedAt SortKey = "createdAt"
	SortByTotal     SortKey = "total"
	SortByStatus    SortKey = "status"
	SortByCustomer  SortKey = "customer"
	SortByItems     SortKey = "items"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Query is the viewer's filter, search and sort selection.
type Query struct {
	Status    string    `json:"status"`
	Search    string    `json:"search"`
	SortKey   SortKey   `json:"sort"`
	Direction Direction `json:"dir"`
}

// DefaultQuery shows every order, newest first.
func DefaultQuery() Query {
	return Query{
		Status:    StatusAll,
		SortKey:   SortByCreatedAt,
		Direction: Desc,
	}
}

// Stats summarises a set of orders.
type Stats struct {
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	Customers int             `json:"customers"`
	ItemsSold int             `json:"itemsSold"`
}

var comparators = map[SortKey]func(a, b *model.OrderRecord) int{
	SortByID: func(a, b *model.OrderRecord) int {
		return strings.Compare(a.ID, b.ID)
	},
	SortByCreatedAt: func(a, b *model.OrderRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	SortByTotal: func(a, b *model.OrderRecord) int {
		return a.Total.Cmp(b.Total)
	},
	SortByStatus: func(a, b *model.OrderRecord) int {
		return strings.Compare(string(a.Status), string(b.Status))
	},
	SortByCustomer: func(a, b *model.OrderRecord) int {
		return strings.Compare(strings.ToLower(a.Customer.Name), strings.ToLower(b.Customer.Name))
	},
	SortByItems: func(a, b *model.OrderRecord) int {
		return a.ItemCount() - b.ItemCount()
	},
}

// ParseQuery reads status, q, sort and dir. Missing values take the defaults.
func ParseQuery(values url.Values) (Query, error) {
	q := DefaultQuery()

	if s := strings.TrimSpace(values.Get("status")); s != "" {
		if s != StatusAll && !model.OrderStatus(s).Valid() {
			return Query{}, model.ErrInvalidQuery.Wrap(fmt.Errorf("unknown status %q", s))
		}
		q.Status = s
	}

	q.Search = strings.TrimSpace(values.Get("q"))

	if k := values.Get("sort"); k != "" {
		if _, ok := comparators[SortKey(k)]; !ok {
			return Query{}, model.ErrInvalidQuery.Wrap(fmt.Errorf("unknown sort key %q", k))
		}
		q.SortKey = SortKey(k)
		q.Direction = Asc
	}

	if d := values.Get("dir"); d != "" {
		switch Direction(d) {
		case Asc, Desc:
			q.Direction = Direction(d)
		default:
			return Query{}, model.ErrInvalidQuery.Wrap(fmt.Errorf("unknown direction %q", d))
		}
	}

	return q, nil
}

// Apply returns the orders matching q in q's order. orders is not modified and
// ties keep their relative order from orders.
func Apply(orders []model.OrderRecord, q Query) []model.OrderRecord {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.OrderRecord, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		if q.Status != "" && q.Status != StatusAll && string(o.Status) != q.Status {
			continue
		}
		if term != "" && !matches(o, term) {
			continue
		}
		out = append(out, *o)
	}

	cmp, ok := comparators[q.SortKey]
	if !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(&out[i], &out[j])
		if q.Direction == Desc {
			return c > 0
		}
		return c < 0
	})

	return out
}

// Toggle returns the query after clicking the column header for key:
// the active ascending column flips to descending, anything else sorts ascending.
func Toggle(current Query, key SortKey) Query {
	next := current
	next.SortKey = key
	if current.SortKey == key && current.Direction == Asc {
		next.Direction = Desc
	} else {
		next.Direction = Asc
	}
	return next
}

// Summarize computes the dashboard figures over orders.
func Summarize(orders []model.OrderRecord) Stats {
	stats := Stats{
		Orders:  len(orders),
		Revenue: decimal.Zero,
	}

	emails := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		stats.Revenue = stats.Revenue.Add(o.Total)
		stats.ItemsSold += o.ItemCount()
		emails[o.Customer.Email] = struct{}{}
	}
	stats.Customers = len(emails)

	return stats
}

func matches(o *model.OrderRecord, term string) bool {
	if strings.Contains(strings.ToLower(o.ID), term) ||
		strings.Contains(strings.ToLower(o.Customer.Name), term) ||
		strings.Contains(strings.ToLower(o.Customer.Email), term) ||
		strings.Contains(o.Customer.Phone, term) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), term) {
			return true
		}
	}
	return false
}
