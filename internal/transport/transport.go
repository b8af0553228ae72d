// Package transport defines the chat transport contract the standup core
// talks through, plus a console implementation for local runs.
package transport

import (
	"context"
	"errors"
)

var (
	// ErrIdentityNotFound is returned when a username has no matching identity.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrChannelNotFound is returned when a channel name cannot be resolved.
	ErrChannelNotFound = errors.New("channel not found")
)

// Identity is an opaque chat-platform user.
type Identity struct {
	ID       string
	Username string
}

// Attachment is a coloured block rendered under a channel message.
type Attachment struct {
	Title string
	Text  string
	Color string
}

// InboundMessage is a direct message received by the bot.
type InboundMessage struct {
	From   Identity
	Text   string
	Edited bool
}

// Handler processes one inbound message. Implementations of Transport call it
// sequentially for messages from the same sender.
type Handler func(ctx context.Context, msg InboundMessage)

// Transport is the chat platform boundary.
type Transport interface {
	// Self returns the bot's own identity.
	Self() Identity
	ResolveIdentity(ctx context.Context, username string) (Identity, error)
	ResolveChannel(ctx context.Context, name string) (string, error)
	SendDirect(ctx context.Context, to Identity, text string) error
	SendToChannel(ctx context.Context, channelID, text string, attachments []Attachment) error
	// Subscribe delivers inbound direct messages to handler until ctx is done.
	Subscribe(ctx context.Context, handler Handler) error
}
