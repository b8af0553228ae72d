package standup

import (
	"context"
	"strings"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/transport"
)

// IdentityResolver maps configured usernames to chat identities.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, username string) (transport.Identity, error)
}

// Directory is the resolved participant list. It is built once at startup and
// never changes afterwards.
type Directory struct {
	participants []internal.Participant
	byID         map[string]internal.Participant
}

// NewDirectory resolves names in order. The bot itself and names that fail to
// resolve are logged and left out. The only error is ctx cancellation.
func NewDirectory(ctx context.Context, resolver IdentityResolver, names []string, self transport.Identity) (*Directory, error) {
	log := internal.NewLogger("directory")
	d := &Directory{byID: make(map[string]internal.Participant, len(names))}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if name == "" {
			continue
		}
		if strings.EqualFold(name, self.Username) {
			log.Infof("skipping %q: that is the bot itself", name)
			continue
		}

		id, err := resolver.ResolveIdentity(ctx, name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warnf("skipping participant: %v", &internal.ResolutionError{Name: name, Err: err})
			continue
		}
		if id.ID == self.ID {
			log.Infof("skipping %q: resolves to the bot itself", name)
			continue
		}
		if _, dup := d.byID[id.ID]; dup {
			continue
		}

		p := internal.Participant{ID: id.ID, DisplayName: id.Username}
		if p.DisplayName == "" {
			p.DisplayName = name
		}
		d.participants = append(d.participants, p)
		d.byID[p.ID] = p
	}

	if len(d.participants) == 0 {
		log.Warnf("no participants resolved")
	} else {
		log.Debugf("resolved %d participants", len(d.participants))
	}
	return d, nil
}

// Participants returns the participants in configuration order.
func (d *Directory) Participants() []internal.Participant {
	out := make([]internal.Participant, len(d.participants))
	copy(out, d.participants)
	return out
}

func (d *Directory) Lookup(id string) (internal.Participant, bool) {
	p, ok := d.byID[id]
	return p, ok
}

func (d *Directory) Len() int { return len(d.participants) }
