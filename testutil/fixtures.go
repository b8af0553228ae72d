package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/iksnae/standup-bot/internal/transport"
)

// ErrSendFailed is returned by RecordingTransport when sends are set to fail.
var ErrSendFailed = errors.New("send failed")

// DirectMessage is a DM captured by RecordingTransport.
type DirectMessage struct {
	To   string
	Text string
}

// ChannelPost is a channel message captured by RecordingTransport.
type ChannelPost struct {
	ChannelID   string
	Text        string
	Attachments []transport.Attachment
}

// RecordingTransport is an in-memory transport.Transport that records every
// outbound message. Usernames listed in Unknown fail to resolve.
type RecordingTransport struct {
	mu       sync.Mutex
	self     transport.Identity
	unknown  map[string]bool
	failDM   map[string]bool
	failPost bool
	dms      []DirectMessage
	posts    []ChannelPost
	inbound  []transport.InboundMessage
}

// NewRecordingTransport creates a transport whose bot identity is botUsername.
func NewRecordingTransport(botUsername string) *RecordingTransport {
	return &RecordingTransport{
		self:    transport.Identity{ID: "U-" + botUsername, Username: botUsername},
		unknown: map[string]bool{},
		failDM:  map[string]bool{},
	}
}

// Unknown makes the usernames unresolvable.
func (r *RecordingTransport) Unknown(usernames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range usernames {
		r.unknown[u] = true
	}
}

// FailDirect makes every DM to username fail.
func (r *RecordingTransport) FailDirect(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failDM[username] = true
}

// FailChannel makes every channel post fail.
func (r *RecordingTransport) FailChannel(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failPost = fail
}

// Feed queues inbound messages delivered by the next Subscribe call.
func (r *RecordingTransport) Feed(msgs ...transport.InboundMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inbound = append(r.inbound, msgs...)
}

func (r *RecordingTransport) Self() transport.Identity { return r.self }

func (r *RecordingTransport) ResolveIdentity(ctx context.Context, username string) (transport.Identity, error) {
	username = strings.TrimPrefix(username, "@")
	r.mu.Lock()
	defer r.mu.Unlock()
	if username == "" || r.unknown[username] {
		return transport.Identity{}, transport.ErrIdentityNotFound
	}
	if username == r.self.Username {
		return r.self, nil
	}
	return transport.Identity{ID: "U-" + username, Username: username}, nil
}

func (r *RecordingTransport) ResolveChannel(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(name, "#")
	if name == "" {
		return "", transport.ErrChannelNotFound
	}
	return "C-" + name, nil
}

func (r *RecordingTransport) SendDirect(ctx context.Context, to transport.Identity, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDM[to.Username] {
		return ErrSendFailed
	}
	r.dms = append(r.dms, DirectMessage{To: to.Username, Text: text})
	return nil
}

func (r *RecordingTransport) SendToChannel(ctx context.Context, channelID, text string, attachments []transport.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPost {
		return ErrSendFailed
	}
	atts := make([]transport.Attachment, len(attachments))
	copy(atts, attachments)
	r.posts = append(r.posts, ChannelPost{ChannelID: channelID, Text: text, Attachments: atts})
	return nil
}

// Subscribe delivers the fed messages in order and returns.
func (r *RecordingTransport) Subscribe(ctx context.Context, handler transport.Handler) error {
	r.mu.Lock()
	msgs := r.inbound
	r.inbound = nil
	r.mu.Unlock()
	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		handler(ctx, msg)
	}
	return nil
}

// DirectMessages returns the DMs sent to username, or all DMs if username is empty.
func (r *RecordingTransport) DirectMessages(username string) []DirectMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []DirectMessage
	for _, dm := range r.dms {
		if username == "" || dm.To == username {
			out = append(out, dm)
		}
	}
	return out
}

// ChannelPosts returns every channel post in send order.
func (r *RecordingTransport) ChannelPosts() []ChannelPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChannelPost, len(r.posts))
	copy(out, r.posts)
	return out
}

// PostsContaining returns channel posts whose text or attachments contain s.
func (r *RecordingTransport) PostsContaining(s string) []ChannelPost {
	var out []ChannelPost
	for _, p := range r.ChannelPosts() {
		if strings.Contains(p.Text, s) {
			out = append(out, p)
			continue
		}
		for _, a := range p.Attachments {
			if strings.Contains(a.Title, s) || strings.Contains(a.Text, s) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

var _ transport.Transport = (*RecordingTransport)(nil)
