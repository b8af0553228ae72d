package standup

import (
	"context"
	"errors"
	"testing"

	"github.com/iksnae/standup-bot/internal"
)

func TestAttachmentColor(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		c := AttachmentColor(i)
		if seen[c] || c == defaultAttachmentColor {
			t.Errorf("AttachmentColor(%d) = %s, want a distinct colour", i, c)
		}
		seen[c] = true
	}
	for _, i := range []int{3, 4, 10} {
		if got := AttachmentColor(i); got != defaultAttachmentColor {
			t.Errorf("AttachmentColor(%d) = %s, want default", i, got)
		}
	}
}

func TestRollupLine(t *testing.T) {
	tests := []struct {
		status internal.Status
		want   string
	}{
		{internal.StatusSkipped, "@bob: Skipped the standup."},
		{internal.StatusPending, "@bob: Did not respond."},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			rec := internal.ResponseRecord{DisplayName: "bob", Status: tt.status}
			if got := RollupLine(rec); got != tt.want {
				t.Errorf("RollupLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublisher_PublishIndividual(t *testing.T) {
	h := newHarness(t, nil)
	rec := internal.CreateTestRecord("U-alice", []string{"Q1", "Q2", "Q3", "Q4"})
	rec.DisplayName = "alice"
	rec.Answers = []string{"A1", "A2", "A3", "A4"}

	if err := h.publisher.PublishIndividual(context.Background(), rec); err != nil {
		t.Fatalf("PublishIndividual() error = %v", err)
	}

	posts := h.transport.ChannelPosts()
	if len(posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(posts))
	}
	if posts[0].Text != "@alice has completed the standup" || posts[0].ChannelID != "C-standup" {
		t.Errorf("post = %+v", posts[0])
	}
	for i, att := range posts[0].Attachments {
		if att.Title != rec.Questions[i] || att.Text != rec.Answers[i] || att.Color != AttachmentColor(i) {
			t.Errorf("attachment %d = %+v", i, att)
		}
	}
}

func TestPublisher_PublishIndividualSendFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.transport.FailChannel(true)
	rec := internal.CreateTestRecord("U-alice", []string{"Q1"})

	err := h.publisher.PublishIndividual(context.Background(), rec)
	var te *internal.TransportError
	if !errors.As(err, &te) || te.Op != "channel" {
		t.Errorf("PublishIndividual() error = %v, want channel TransportError", err)
	}
}

func TestPublisher_PublishRollup(t *testing.T) {
	ctx := context.Background()

	t.Run("lists skipped and silent once", func(t *testing.T) {
		h := newHarness(t, []string{"alice", "bob", "carol"}, "Q1")
		sess := h.start(t)
		h.reply(t, "alice", "A1")
		h.reply(t, "bob", "skip")

		posted, err := h.publisher.PublishRollup(ctx, sess.ID)
		if err != nil || !posted {
			t.Fatalf("PublishRollup() = %v, %v", posted, err)
		}
		rollups := h.transport.PostsContaining("Did not respond.")
		if len(rollups) != 1 {
			t.Fatalf("rollups = %d, want 1", len(rollups))
		}
		want := "@bob: Skipped the standup.\n@carol: Did not respond."
		if rollups[0].Text != want {
			t.Errorf("rollup text = %q, want %q", rollups[0].Text, want)
		}

		posted, err = h.publisher.PublishRollup(ctx, sess.ID)
		if err != nil || posted {
			t.Errorf("second PublishRollup() = %v, %v; want false, nil", posted, err)
		}
		if n := len(h.transport.PostsContaining("Did not respond.")); n != 1 {
			t.Errorf("rollups after second call = %d, want 1", n)
		}
	})

	t.Run("nothing posted when everyone answered", func(t *testing.T) {
		h := newHarness(t, []string{"alice"}, "Q1")
		sess := h.start(t)
		h.reply(t, "alice", "A1")
		before := len(h.transport.ChannelPosts())

		posted, err := h.publisher.PublishRollup(ctx, sess.ID)
		if err != nil || posted {
			t.Errorf("PublishRollup() = %v, %v; want false, nil", posted, err)
		}
		if after := len(h.transport.ChannelPosts()); after != before {
			t.Errorf("channel posts grew from %d to %d", before, after)
		}
	})
}
