package domain

import "time"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// PriceSyncedEvent is emitted when a sync writes a new interval.
type PriceSyncedEvent struct {
	ProductID      string            `json:"product_id"`
	OrganizationID *string           `json:"organization_id,omitempty"`
	PriceID        string            `json:"price_id"`
	Fields         map[string]string `json:"fields"`
	ExchangeRate   *string           `json:"exchange_rate,omitempty"`
	EffectiveFrom  time.Time         `json:"effective_from"`
	EffectiveTo    *time.Time        `json:"effective_to,omitempty"`
	Superseded     []string          `json:"superseded,omitempty"`
	ChangedBy      string            `json:"changed_by"`
	SyncedAt       time.Time         `json:"synced_at"`
}

func (e *PriceSyncedEvent) EventType() string {
	return "price.synced"
}

func (e *PriceSyncedEvent) AggregateID() string {
	return e.ProductID
}

// NewPriceSyncedEvent describes a committed sync plan.
func NewPriceSyncedEvent(plan *SyncPlan) *PriceSyncedEvent {
	iv := plan.Interval
	e := &PriceSyncedEvent{
		ProductID:      iv.Scope.ProductID(),
		OrganizationID: iv.Scope.OrganizationIDPtr(),
		PriceID:        iv.ID,
		Fields:         iv.Fields.Names(),
		EffectiveFrom:  iv.EffectiveFrom,
		EffectiveTo:    copyTime(iv.EffectiveTo),
		ChangedBy:      iv.ChangedBy,
		SyncedAt:       iv.CreatedAt,
	}
	if iv.ExchangeRate != nil {
		rate := iv.ExchangeRate.String()
		e.ExchangeRate = &rate
	}
	for _, d := range plan.Deletions {
		e.Superseded = append(e.Superseded, d.ID)
	}
	return e
}

// PriceFutureCancelledEvent is emitted when a pending future price is withdrawn.
type PriceFutureCancelledEvent struct {
	ProductID      string    `json:"product_id"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	CancelledIDs   []string  `json:"cancelled_ids"`
	CancelledBy    string    `json:"cancelled_by"`
	Reason         string    `json:"reason,omitempty"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

func (e *PriceFutureCancelledEvent) EventType() string {
	return "price.future_cancelled"
}

func (e *PriceFutureCancelledEvent) AggregateID() string {
	return e.ProductID
}
