package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console is a Transport over a line-oriented reader and writer. Inbound lines
// have the form "username: text"; a literal `\n` in text becomes a newline.
// Every username resolves unless a roster is set with WithRoster.
type Console struct {
	self Identity
	in   io.Reader
	out  io.Writer

	mu     sync.Mutex
	roster map[string]bool

	dmStyle      lipgloss.Style
	channelStyle lipgloss.Style
	titleStyle   lipgloss.Style
	renderer     *lipgloss.Renderer
}

// NewConsole creates a console transport for the bot named botUsername.
func NewConsole(botUsername string, in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		self:         Identity{ID: botUsername, Username: botUsername},
		in:           in,
		out:          out,
		renderer:     r,
		dmStyle:      r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		channelStyle: r.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		titleStyle:   r.NewStyle().Bold(true),
	}
}

// WithRoster restricts identity resolution to the given usernames.
func (c *Console) WithRoster(usernames ...string) *Console {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster = make(map[string]bool, len(usernames))
	for _, u := range usernames {
		c.roster[u] = true
	}
	return c
}

func (c *Console) Self() Identity { return c.self }

func (c *Console) ResolveIdentity(ctx context.Context, username string) (Identity, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" || strings.ContainsAny(username, " \t:") {
		return Identity{}, fmt.Errorf("%w: %q", ErrIdentityNotFound, username)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roster != nil && !c.roster[username] {
		return Identity{}, fmt.Errorf("%w: %q", ErrIdentityNotFound, username)
	}
	return Identity{ID: username, Username: username}, nil
}

func (c *Console) ResolveChannel(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	if name == "" {
		return "", ErrChannelNotFound
	}
	return "#" + name, nil
}

func (c *Console) SendDirect(ctx context.Context, to Identity, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s %s\n", c.dmStyle.Render("→ @"+to.Username), text)
	return err
}

func (c *Console) SendToChannel(ctx context.Context, channelID, text string, attachments []Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "%s %s\n", c.channelStyle.Render(channelID), text); err != nil {
		return err
	}
	for _, att := range attachments {
		block := c.renderer.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(att.Color)).
			PaddingLeft(1).
			Render(c.titleStyle.Render(att.Title) + "\n" + att.Text)
		if _, err := fmt.Fprintln(c.out, block); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe reads lines until ctx is cancelled or the reader is exhausted.
// Messages are handled one at a time in arrival order.
func (c *Console) Subscribe(ctx context.Context, handler Handler) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			username, text, ok := ParseLine(line)
			if !ok {
				continue
			}
			handler(ctx, InboundMessage{From: Identity{ID: username, Username: username}, Text: text})
		}
	}
}

// ParseLine splits "username: text" into its parts.
func ParseLine(line string) (string, string, bool) {
	name, text, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	text = strings.TrimPrefix(text, " ")
	return name, strings.ReplaceAll(text, `\n`, "\n"), true
}
