package models

import (
	"time"

	"github.com/pkg/errors"
)

// Actor identifies a party in a stored network exchange.
type Actor string

const (
	ActorRequestor Actor = "requestor"
	ActorProvider  Actor = "provider"
)

// NetworkMessage is a protocol message retained for dispute resolution,
// recorded by the transport layer as messages are exchanged with a peer.
// Whether the peer was the sender or the receiver is determined by the
// local and remote roles together with the message class.
type NetworkMessage struct {
	ID         int64
	LocalRole  Actor
	RemoteRole Actor

	// Node is the peer the message was exchanged with.
	Node    string
	Task    string
	Subtask string

	MsgDate  time.Time
	MsgClass string
	MsgData  []byte

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (m NetworkMessage) Validate() error {
	if m.Node == "" {
		return errors.New("network message is missing a node")
	}
	if m.MsgClass == "" {
		return errors.New("network message is missing a message class")
	}
	return nil
}
