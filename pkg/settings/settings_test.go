package settings

import (
	"context"
	"testing"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	want := Run{Width: 80, Height: 24}
	if *got != want {
		t.Errorf("NewCliParams() = %+v, want %+v", got, want)
	}
	if got.Headless() {
		t.Error("defaults should start the interactive program")
	}
}

func TestHeadless(t *testing.T) {
	tests := []struct {
		name string
		run  Run
		want bool
	}{
		{name: "interactive", run: Run{}, want: false},
		{name: "snapshot", run: Run{Snapshot: true}, want: true},
		{name: "output", run: Run{Output: "json"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.run.Headless(); got != tt.want {
				t.Errorf("Headless() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	s := &Run{NoColor: true, Dialect: "cel"}
	ctx := IntoContext(context.Background(), s)
	got, ok := FromContext(ctx)
	if !ok || got != s {
		t.Fatalf("FromContext() = %v, %v; want stored pointer", got, ok)
	}
	if OrDefault(ctx) != s {
		t.Error("OrDefault should return the stored settings")
	}
}

func TestFromContextMissing(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "empty", ctx: context.Background()},
		{name: "nil_settings", ctx: IntoContext(context.Background(), nil)},
		{name: "wrong_type", ctx: context.WithValue(context.Background(), contextKey{}, "x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := FromContext(tt.ctx); ok || got != nil {
				t.Errorf("FromContext() = %v, %v; want nil, false", got, ok)
			}
			if d := OrDefault(tt.ctx); d.Width != 80 {
				t.Errorf("OrDefault() width = %d; want 80", d.Width)
			}
		})
	}
}
