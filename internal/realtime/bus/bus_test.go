package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
)

func TestLocalBusDeliversToForwarders(t *testing.T) {
	b := NewLocalBus()
	got := make(chan realtime.Message, 2)
	if err := b.StartForwarder(context.Background(), func(m realtime.Message) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	msg := realtime.Message{Channel: "registry:e1", Event: realtime.EventRegistryProgress}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Channel != msg.Channel || m.Event != msg.Event {
			t.Fatalf("unexpected message: %+v", m)
		}
	default:
		t.Fatalf("message not delivered synchronously")
	}

	_ = b.Close()
	if err := b.Publish(context.Background(), msg); err == nil {
		t.Fatalf("expected publish on closed bus to fail")
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_CHANNEL", "")
	cfg, err := RedisConfigFromEnv()
	if err != nil {
		t.Fatalf("RedisConfigFromEnv: %v", err)
	}
	if cfg.Enabled() {
		t.Fatalf("empty REDIS_ADDR should disable redis")
	}
	if cfg.Channel != "vowbridge:realtime" {
		t.Fatalf("channel default: got %q", cfg.Channel)
	}
	b, err := New(logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := b.(*localBus); !ok {
		t.Fatalf("expected local bus without REDIS_ADDR, got %T", b)
	}
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: addr, Channel: "vowbridge:test"})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan realtime.Message, 1)
	if err := b.StartForwarder(ctx, func(m realtime.Message) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := b.Publish(ctx, realtime.Message{Channel: "registry:x", Event: realtime.EventRegistryProgress}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Channel != "registry:x" {
			t.Fatalf("unexpected channel %q", m.Channel)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for redis message")
	}
}
