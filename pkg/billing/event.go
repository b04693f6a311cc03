package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Handled Stripe event types.
const (
	TypeSubscriptionCreated = "customer.subscription.created"
	TypeSubscriptionUpdated = "customer.subscription.updated"
	TypeSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a verified provider notification.
// It is either a SubscriptionEvent or an UnhandledEvent.
type Event interface {
	EventID() string
	EventType() string
	event()
}

// SubscriptionEvent carries a subscription lifecycle change.
type SubscriptionEvent struct {
	ID           string
	Type         string
	Subscription Subscription
}

func (e SubscriptionEvent) EventID() string   { return e.ID }
func (e SubscriptionEvent) EventType() string { return e.Type }
func (SubscriptionEvent) event()              {}

// UnhandledEvent is any event type the router acknowledges without action.
type UnhandledEvent struct {
	ID   string
	Type string
}

func (e UnhandledEvent) EventID() string   { return e.ID }
func (e UnhandledEvent) EventType() string { return e.Type }
func (UnhandledEvent) event()              {}

// Subscription is the subset of the Stripe subscription object the reconciler reads.
type Subscription struct {
	ID               string
	CustomerID       string
	Status           string
	CurrentPeriodEnd int64
	Items            []SubscriptionItem
}

// SubscriptionItem is one price line of a subscription. LookupKey becomes the
// profile's subscription tier.
type SubscriptionItem struct {
	PriceID          string
	LookupKey        string
	CurrentPeriodEnd int64
}

// PeriodEnd returns the subscription period end in epoch seconds. Newer API
// versions moved it onto the items, so the first item is used as a fallback.
func (s Subscription) PeriodEnd() int64 {
	if s.CurrentPeriodEnd > 0 {
		return s.CurrentPeriodEnd
	}
	if len(s.Items) > 0 {
		return s.Items[0].CurrentPeriodEnd
	}
	return 0
}

func isSubscriptionType(t string) bool {
	switch t {
	case TypeSubscriptionCreated, TypeSubscriptionUpdated, TypeSubscriptionDeleted:
		return true
	}
	return false
}

// customerRef accepts the customer as an id string or an expanded object.
type customerRef string

func (c *customerRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*c = customerRef(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*c = customerRef(obj.ID)
	return nil
}

type subscriptionObject struct {
	ID               string      `json:"id"`
	Customer         customerRef `json:"customer"`
	Status           string      `json:"status"`
	CurrentPeriodEnd int64       `json:"current_period_end"`
	Items            *struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            *struct {
				ID        string `json:"id"`
				LookupKey string `json:"lookup_key"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func decodeSubscription(raw json.RawMessage) (Subscription, error) {
	var obj subscriptionObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Subscription{}, fmt.Errorf("decode subscription object: %w", err)
	}
	sub := Subscription{
		ID:               obj.ID,
		CustomerID:       string(obj.Customer),
		Status:           obj.Status,
		CurrentPeriodEnd: obj.CurrentPeriodEnd,
	}
	if obj.Items != nil {
		for _, it := range obj.Items.Data {
			item := SubscriptionItem{CurrentPeriodEnd: it.CurrentPeriodEnd}
			if it.Price != nil {
				item.PriceID = it.Price.ID
				item.LookupKey = it.Price.LookupKey
			}
			sub.Items = append(sub.Items, item)
		}
	}
	return sub, nil
}
