package domain

import (
	interfaces "relaychat/internal/domain/interfaces"
	types "relaychat/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username       = types.Username
	Fingerprint    = types.Fingerprint
	MessageID      = types.MessageID
	Handle         = types.Handle
	Client         = types.Client
	Message        = types.Message
	Event          = types.Event
	PushFrame      = types.PushFrame
	Outcome        = types.Outcome
	Receipt        = types.Receipt
	Registration   = types.Registration
	AccountProfile = types.AccountProfile
)

// Outcome values.
const (
	OutcomeDelivered       = types.OutcomeDelivered
	OutcomeQueuedFallback  = types.OutcomeQueuedFallback
	OutcomeDroppedInactive = types.OutcomeDroppedInactive
	OutcomeDropped         = types.OutcomeDropped
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	ClientDirectory = interfaces.ClientDirectory
	DeliveryQueue   = interfaces.DeliveryQueue
	Pusher          = interfaces.Pusher
	ClientService   = interfaces.ClientService
	MessageRouter   = interfaces.MessageRouter
	StreamService   = interfaces.StreamService
	MessageStream   = interfaces.MessageStream
	RelayClient     = interfaces.RelayClient
	ProfileStore    = interfaces.ProfileStore
)
