package registry

import (
	"testing"

	"github.com/undercover-social/backend/internal/domain"
)

func TestRegisterAndDispatch(t *testing.T) {
	Register("test-topic", "TEST_EVENT", func(data []byte) *domain.DeliveryEvent {
		return &domain.DeliveryEvent{Input: domain.DeliveryInput{Title: "handled"}}
	})

	ev := Dispatch("test-topic", []byte(`{"eventType":"TEST_EVENT"}`))
	if ev == nil {
		t.Fatal("expected event, got nil")
	}
	if ev.Input.Title != "handled" {
		t.Fatalf("title = %q, want %q", ev.Input.Title, "handled")
	}
}

func TestDispatch_UnknownEvent_ReturnsNil(t *testing.T) {
	ev := Dispatch("test-topic", []byte(`{"eventType":"NO_SUCH_EVENT"}`))
	if ev != nil {
		t.Fatalf("expected nil for unknown event, got %+v", ev)
	}
}

func TestDispatch_InvalidJSON_ReturnsNil(t *testing.T) {
	ev := Dispatch("test-topic", []byte(`not json`))
	if ev != nil {
		t.Fatalf("expected nil for invalid payload, got %+v", ev)
	}
}

func TestDispatchDirect(t *testing.T) {
	Register("direct-topic", "", func(data []byte) *domain.DeliveryEvent {
		return &domain.DeliveryEvent{Input: domain.DeliveryInput{Title: "direct"}}
	})

	ev := DispatchDirect("direct-topic", []byte(`{}`))
	if ev == nil {
		t.Fatal("expected event, got nil")
	}
	if ev.Input.Title != "direct" {
		t.Fatalf("title = %q, want %q", ev.Input.Title, "direct")
	}

	if ev := DispatchDirect("unregistered-topic", []byte(`{}`)); ev != nil {
		t.Fatalf("expected nil for unregistered topic, got %+v", ev)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()

	Register("dup-topic", "DUP", func([]byte) *domain.DeliveryEvent { return nil })
	Register("dup-topic", "DUP", func([]byte) *domain.DeliveryEvent { return nil })
}
