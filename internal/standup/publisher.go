package standup

import (
	"context"
	"fmt"
	"strings"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/transport"
)

// Attachment colours: the first three answer blocks each get their own colour,
// later blocks share defaultAttachmentColor.
var attachmentColors = []string{"#2eb886", "#3aa3e3", "#daa038"}

const defaultAttachmentColor = "#a0a0a0"

// AttachmentColor returns the colour for the i-th answer block.
func AttachmentColor(i int) string {
	if i >= 0 && i < len(attachmentColors) {
		return attachmentColors[i]
	}
	return defaultAttachmentColor
}

// Publisher posts standup results to the shared channel.
type Publisher struct {
	store     *internal.Store
	transport transport.Transport
	channelID string
	clock     internal.Clock
	log       *internal.Logger
}

// NewPublisher creates a publisher posting to channelID.
func NewPublisher(store *internal.Store, tr transport.Transport, channelID string, clock internal.Clock) *Publisher {
	if clock == nil {
		clock = internal.SystemClock{}
	}
	return &Publisher{
		store:     store,
		transport: tr,
		channelID: channelID,
		clock:     clock,
		log:       internal.NewLogger("publisher"),
	}
}

// IndividualHeadline is the channel text introducing a completed standup.
func IndividualHeadline(displayName string) string {
	return fmt.Sprintf("@%s has completed the standup", displayName)
}

// PublishIndividual posts one message with an attachment per answered question.
func (p *Publisher) PublishIndividual(ctx context.Context, rec *internal.ResponseRecord) error {
	pairs := rec.Pairs()
	attachments := make([]transport.Attachment, 0, len(pairs))
	for i, qa := range pairs {
		attachments = append(attachments, transport.Attachment{
			Title: qa.Question,
			Text:  qa.Answer,
			Color: AttachmentColor(i),
		})
	}
	if err := p.transport.SendToChannel(ctx, p.channelID, IndividualHeadline(rec.DisplayName), attachments); err != nil {
		return &internal.TransportError{Op: "channel", Target: p.channelID, Err: err}
	}
	p.log.Infof("published individual report for @%s", rec.DisplayName)
	return nil
}

// RollupLine renders one participant's entry in the rollup.
func RollupLine(rec internal.ResponseRecord) string {
	if rec.Status == internal.StatusSkipped {
		return fmt.Sprintf("@%s: Skipped the standup.", rec.DisplayName)
	}
	return fmt.Sprintf("@%s: Did not respond.", rec.DisplayName)
}

// PublishRollup claims the session's rollup and, if this call won the claim,
// posts the participants that are still pending or skipped. It reports whether
// a message was posted. A session whose rollup was already claimed is left
// alone.
func (p *Publisher) PublishRollup(ctx context.Context, sessionID string) (bool, error) {
	claimed, err := p.store.ClaimRollup(ctx, sessionID, p.clock.Now())
	if err != nil {
		return false, err
	}
	if !claimed {
		p.log.Debugf("rollup for session %s already claimed", sessionID)
		return false, nil
	}

	records, err := p.store.ListNonTerminal(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		p.log.Infof("rollup for session %s: everyone answered", sessionID)
		return false, nil
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, RollupLine(rec))
	}
	if err := p.transport.SendToChannel(ctx, p.channelID, strings.Join(lines, "\n"), nil); err != nil {
		return false, &internal.TransportError{Op: "channel", Target: p.channelID, Err: err}
	}
	p.log.Infof("published rollup for session %s (%d entries)", sessionID, len(records))
	return true, nil
}
