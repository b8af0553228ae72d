package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		fn      func() error
		wantErr bool
	}{
		{name: "successful function", fn: func() error { return nil }},
		{name: "function with error", fn: func() error { return errors.New("test error") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, "Testing", tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowProgressWithSteps(t *testing.T) {
	var ran []string
	steps := []ProgressStep{
		{Message: "one", Fn: func() error { ran = append(ran, "one"); return nil }},
		{Message: "two", Fn: func() error { ran = append(ran, "two"); return errors.New("boom") }},
		{Message: "three", Fn: func() error { ran = append(ran, "three"); return nil }},
	}

	err := ShowProgressWithSteps(context.Background(), steps)
	if err == nil || !strings.Contains(err.Error(), "two") {
		t.Errorf("ShowProgressWithSteps() error = %v, want failure naming step two", err)
	}
	if strings.Join(ran, ",") != "one,two" {
		t.Errorf("ran = %v, want one,two", ran)
	}
}

func TestShowSpinner(t *testing.T) {
	var buf bytes.Buffer
	if err := showSpinner(context.Background(), &buf, "working", func() error { return nil }); err != nil {
		t.Fatalf("showSpinner() error = %v", err)
	}
	if !strings.Contains(buf.String(), "working") {
		t.Errorf("output = %q, want message", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := make(chan struct{})
	defer close(block)
	err := showSpinner(ctx, &bytes.Buffer{}, "stuck", func() error { <-block; return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("showSpinner() with cancelled ctx error = %v, want context.Canceled", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("isTerminal(buffer) = true, want false")
	}
}
