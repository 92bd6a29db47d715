package event

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"crosspost/internal/platform/logger"
	kit "crosspost/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestEmit_BaseAndContext(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	kit.Serial(t)
	kit.Swap(t, &now, kit.Clock(at))

	base := &Recorder{}
	call := &Recorder{}
	ctx := WithObserver(context.Background(), call)

	Emit(ctx, base, Event{Kind: VerifyFailed, Adapter: "x"})
	Emit(context.Background(), base, Event{Kind: Published, Adapter: "y"})
	Emit(ctx, nil, Event{Kind: TaskDropped, Adapter: "x"})

	if base.Count(VerifyFailed) != 1 || base.Count(Published) != 1 || len(base.Events()) != 2 {
		t.Fatalf("base events = %+v", base.Events())
	}
	if len(call.Events()) != 2 || call.Count(TaskDropped) != 1 {
		t.Fatalf("ctx observer events = %+v", call.Events())
	}
	if !base.Events()[0].At.Equal(at) {
		t.Fatalf("At should be stamped, got %v", base.Events()[0].At)
	}
}

func TestMulti_SkipsNil(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi(a, nil, b).Observe(context.Background(), Event{Kind: DelayCapped})
	if a.Count(DelayCapped) != 1 || b.Count(DelayCapped) != 1 {
		t.Fatalf("multi did not fan out")
	}
	Nop.Observe(context.Background(), Event{})
}

func TestKindLevels(t *testing.T) {
	cases := map[Kind]zerolog.Level{
		AdapterUnknown: zerolog.WarnLevel,
		VerifyFailed:   zerolog.WarnLevel,
		TaskDropped:    zerolog.WarnLevel,
		DelayCapped:    zerolog.WarnLevel,
		PublishFailed:  zerolog.ErrorLevel,
		Published:      zerolog.InfoLevel,
	}
	for k, want := range cases {
		if got := k.Level(); got != want {
			t.Fatalf("%s.Level() = %v want %v", k, got, want)
		}
	}
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Options{Level: "debug", Format: "json", Writer: &buf})

	ctx := logger.WithRequest(context.Background(), "r-1", "b-1")
	LogObserver{Component: "dispatch"}.Observe(ctx, Event{
		Kind: VerifyFailed, Adapter: "mastodon", Rule: "r", Err: errors.New("401"),
	})

	// another test may have initialized the root logger first
	if buf.Len() == 0 {
		t.Skip("root logger already initialized elsewhere")
	}
	out := buf.String()
	kit.MustContain(t, out, `"event":"verify_failed"`)
	kit.MustContain(t, out, `"adapter":"mastodon"`)
	kit.MustContain(t, out, `"level":"warn"`)
	kit.MustContain(t, out, `"batch_id":"b-1"`)
}

func TestEventErrText(t *testing.T) {
	if (Event{}).ErrText() != "" {
		t.Fatalf("empty event should have no error text")
	}
	if (Event{Err: errors.New("x")}).ErrText() != "x" {
		t.Fatalf("error text mismatch")
	}
}
