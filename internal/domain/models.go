package domain

import "time"

// Enumerations
const (
	RoleCEO  Role = "CEO"
	RoleShop Role = "SHOP"
)

type Role string

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleCEO || r == RoleShop
}

// Date is a calendar day in sortable YYYY-MM-DD form.
type Date string

// Principal is the authenticated caller of a request. It is derived per request and never stored.
type Principal struct {
	ID     string
	ShopID string
	Role   Role
	Name   string
	Email  string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.ID != "" && p.Role.Valid()
}

func (p Principal) IsCEO() bool { return p.Role == RoleCEO }

type Shop struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	TimerOfDay   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the principal a shop acts as once logged in.
func (s Shop) Principal() Principal {
	return Principal{
		ID:     s.ID,
		ShopID: s.ID,
		Role:   s.Role,
		Name:   s.Name,
		Email:  s.Email,
	}
}

// DailyRecord is one calendar day's snapshot for one shop. Amounts are in cents.
type DailyRecord struct {
	ID                        string
	ShopID                    string
	RecordDate                Date
	RevenueMainWithMargin     int64
	RevenueMainWithoutMargin  int64
	RevenueOrderWithMargin    int64
	RevenueOrderWithoutMargin int64
	MainStockValue            int64
	OrderStockValue           int64
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// RevenueWithMargin is the main plus order revenue including margin.
func (r DailyRecord) RevenueWithMargin() int64 {
	return r.RevenueMainWithMargin + r.RevenueOrderWithMargin
}

func (r DailyRecord) RevenueWithoutMargin() int64 {
	return r.RevenueMainWithoutMargin + r.RevenueOrderWithoutMargin
}

func (r DailyRecord) StockValue() int64 {
	return r.MainStockValue + r.OrderStockValue
}

// RecordOrder selects the ordering of a record listing.
type RecordOrder int

const (
	OrderByDate RecordOrder = iota
	OrderByCreated
)

// RecordFilter narrows a record listing. Zero values mean "no constraint".
type RecordFilter struct {
	ShopID string
	From   Date
	To     Date
	Order  RecordOrder
}
