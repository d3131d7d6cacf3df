package registry

import (
	"strconv"

	"stackstream/core/events"
	"stackstream/core/types"
)

func formatUint(v uint64) string { return strconv.FormatUint(v, 10) }

const (
	// EventTypeCreatorRegistered is emitted when a new profile is created.
	EventTypeCreatorRegistered = "registry.creator.registered"
	// EventTypeProfileUpdated is emitted when a creator edits their profile.
	EventTypeProfileUpdated = "registry.profile.updated"
	// EventTypeIdentityVerified is emitted when a creator stakes for verification.
	EventTypeIdentityVerified = "registry.identity.verified"
	// EventTypeStakeRefunded is emitted when a verification stake is returned.
	EventTypeStakeRefunded = "registry.identity.stakeRefunded"
	// EventTypeContentAdded is emitted when a creator publishes a catalog entry.
	EventTypeContentAdded = "registry.content.added"
	// EventTypeContentToggled is emitted when content is activated or deactivated.
	EventTypeContentToggled = "registry.content.toggled"
	// EventTypeContentAccessed is emitted when an access settlement is recorded.
	EventTypeContentAccessed = "registry.content.accessed"
)

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

// CreatorRegisteredEvent returns the payload announcing a new profile.
func CreatorRegisteredEvent(creator, username string) *types.Event {
	return &types.Event{
		Type: EventTypeCreatorRegistered,
		Attributes: map[string]string{
			"creator":  creator,
			"username": username,
		},
	}
}

// IdentityVerifiedEvent returns the payload announcing a verification badge mint.
func IdentityVerifiedEvent(creator string, badgeID, stake string) *types.Event {
	return &types.Event{
		Type: EventTypeIdentityVerified,
		Attributes: map[string]string{
			"creator": creator,
			"badgeId": badgeID,
			"stake":   stake,
		},
	}
}

// StakeRefundedEvent returns the payload announcing a stake refund.
func StakeRefundedEvent(creator, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeStakeRefunded,
		Attributes: map[string]string{
			"creator": creator,
			"amount":  amount,
		},
	}
}

// ContentAddedEvent returns the payload announcing new catalog content.
func ContentAddedEvent(creator string, contentID, price string) *types.Event {
	return &types.Event{
		Type: EventTypeContentAdded,
		Attributes: map[string]string{
			"creator":   creator,
			"contentId": contentID,
			"price":     price,
		},
	}
}

// ContentAccessedEvent returns the payload for a recorded access settlement.
func ContentAccessedEvent(creator string, contentID, share string) *types.Event {
	return &types.Event{
		Type: EventTypeContentAccessed,
		Attributes: map[string]string{
			"creator":   creator,
			"contentId": contentID,
			"share":     share,
		},
	}
}
