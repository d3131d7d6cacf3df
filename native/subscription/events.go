package subscription

import (
	"strconv"

	"stackstream/core/events"
	"stackstream/core/types"
)

const (
	// EventTypeTierCreated is emitted when a creator defines a tier.
	EventTypeTierCreated = "subscription.tier.created"
	// EventTypeTierDeactivated is emitted when a tier is switched off.
	EventTypeTierDeactivated = "subscription.tier.deactivated"
	// EventTypeSubscribed is emitted when a subscription settles.
	EventTypeSubscribed = "subscription.subscribed"
	// EventTypeCancelled is emitted when a subscriber cancels.
	EventTypeCancelled = "subscription.cancelled"
	// EventTypeUpgraded is emitted when a subscriber moves to a higher tier.
	EventTypeUpgraded = "subscription.upgraded"
	// EventTypeAutoRenewToggled is emitted when the renewal flag flips.
	EventTypeAutoRenewToggled = "subscription.autorenew.toggled"
	// EventTypeReferralPaid is emitted when a referrer cut settles.
	EventTypeReferralPaid = "subscription.referral.paid"
)

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

// TierCreatedEvent returns the payload for a newly defined tier.
func TierCreatedEvent(creator, name string, level uint8, monthlyPrice string) *types.Event {
	return &types.Event{
		Type: EventTypeTierCreated,
		Attributes: map[string]string{
			"creator":      creator,
			"tier":         name,
			"level":        formatUint(uint64(level)),
			"monthlyPrice": monthlyPrice,
		},
	}
}

// SubscribedEvent returns the payload for a settled subscription.
func SubscribedEvent(subscriber, creator, tier string, price string) *types.Event {
	return &types.Event{
		Type: EventTypeSubscribed,
		Attributes: map[string]string{
			"subscriber": subscriber,
			"creator":    creator,
			"tier":       tier,
			"price":      price,
		},
	}
}

// CancelledEvent returns the payload for a cancelled subscription.
func CancelledEvent(subscriber, creator, tier string) *types.Event {
	return &types.Event{
		Type: EventTypeCancelled,
		Attributes: map[string]string{
			"subscriber": subscriber,
			"creator":    creator,
			"tier":       tier,
		},
	}
}

// UpgradedEvent returns the payload for a tier upgrade.
func UpgradedEvent(subscriber, creator, fromTier, toTier string) *types.Event {
	return &types.Event{
		Type: EventTypeUpgraded,
		Attributes: map[string]string{
			"subscriber": subscriber,
			"creator":    creator,
			"from":       fromTier,
			"to":         toTier,
		},
	}
}

// ReferralPaidEvent returns the payload for a settled referral cut.
func ReferralPaidEvent(referrer, subscriber string, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeReferralPaid,
		Attributes: map[string]string{
			"referrer":   referrer,
			"subscriber": subscriber,
			"amount":     amount,
		},
	}
}
