package gateway

import (
	"strconv"

	"stackstream/core/events"
	"stackstream/core/types"
)

const (
	// EventTypeContentPurchased is emitted when a single purchase settles.
	EventTypeContentPurchased = "gateway.content.purchased"
	// EventTypeBatchPurchased is emitted when a batch purchase settles.
	EventTypeBatchPurchased = "gateway.batch.purchased"
	// EventTypeBundleCreated is emitted when a creator defines a bundle.
	EventTypeBundleCreated = "gateway.bundle.created"
	// EventTypeBundlePurchased is emitted when a bundle purchase settles.
	EventTypeBundlePurchased = "gateway.bundle.purchased"
	// EventTypeBundleDeactivated is emitted when a bundle is switched off.
	EventTypeBundleDeactivated = "gateway.bundle.deactivated"
	// EventTypeGiftSent is emitted when a gift is escrowed.
	EventTypeGiftSent = "gateway.gift.sent"
	// EventTypeGiftClaimed is emitted when a gift settles to its recipient.
	EventTypeGiftClaimed = "gateway.gift.claimed"
	// EventTypeAccessRevoked is emitted when an access token is deactivated.
	EventTypeAccessRevoked = "gateway.access.revoked"
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

// ContentPurchasedEvent returns the payload for a settled purchase.
func ContentPurchasedEvent(buyer, creator string, contentID, tokenID, price string) *types.Event {
	return &types.Event{
		Type: EventTypeContentPurchased,
		Attributes: map[string]string{
			"buyer":     buyer,
			"creator":   creator,
			"contentId": contentID,
			"tokenId":   tokenID,
			"price":     price,
		},
	}
}

// GiftSentEvent returns the payload for an escrowed gift.
func GiftSentEvent(sender, recipient, creator string, giftID, price string) *types.Event {
	return &types.Event{
		Type: EventTypeGiftSent,
		Attributes: map[string]string{
			"sender":    sender,
			"recipient": recipient,
			"creator":   creator,
			"giftId":    giftID,
			"price":     price,
		},
	}
}

// GiftClaimedEvent returns the payload for a claimed gift.
func GiftClaimedEvent(sender, recipient string, giftID, tokenID string) *types.Event {
	return &types.Event{
		Type: EventTypeGiftClaimed,
		Attributes: map[string]string{
			"sender":    sender,
			"recipient": recipient,
			"giftId":    giftID,
			"tokenId":   tokenID,
		},
	}
}

// AccessRevokedEvent returns the payload for a revoked token.
func AccessRevokedEvent(revoker string, tokenID string) *types.Event {
	return &types.Event{
		Type: EventTypeAccessRevoked,
		Attributes: map[string]string{
			"revoker": revoker,
			"tokenId": tokenID,
		},
	}
}
