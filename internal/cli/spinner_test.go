package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func testSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, message)
	s.w = &buf
	return s, &buf
}

func TestSpinnerStages(t *testing.T) {
	s, buf := testSpinner(context.Background(), "Fetching projects...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Laying out 3 projects...")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	got := buf.String()
	for _, want := range []string{"Fetching projects...", "Laying out 3 projects..."} {
		if !strings.Contains(got, want) {
			t.Errorf("spinner output missing %q: %q", want, got)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("line not cleared after Stop: %q", got)
	}
	if s.Cancelled() {
		t.Error("Stop reported as cancellation")
	}
}

func TestSpinnerCancelled(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), spinnerInterval/2)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s, _ := testSpinner(ctx, "Rendering atlas...")
			s.Start()
			cancel()
			select {
			case <-s.stopped:
			case <-time.After(2 * time.Second):
				t.Fatal("spinner kept running after its context ended")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false after the context ended")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStop(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		s, buf := testSpinner(context.Background(), "Submitting...")
		s.Stop()
		if buf.Len() != 0 {
			t.Errorf("output = %q, want none", buf.String())
		}
	})
	t.Run("repeated", func(t *testing.T) {
		s, _ := testSpinner(context.Background(), "Submitting...")
		s.Start()
		s.Stop()
		s.Stop()
		s.Stop()
	})
}

func TestSpinnerStopWithResult(t *testing.T) {
	buf := captureOutput(t)

	s, _ := testSpinner(context.Background(), "Checking profile...")
	s.Start()
	s.StopWithSuccess("Profile is valid")

	s, _ = testSpinner(context.Background(), "Publishing...")
	s.Start()
	s.StopWithError("Publish failed")

	got := buf.String()
	if !strings.Contains(got, iconSuccess+" Profile is valid") {
		t.Errorf("missing success line: %q", got)
	}
	if !strings.Contains(got, iconError+" Publish failed") {
		t.Errorf("missing error line: %q", got)
	}
}
