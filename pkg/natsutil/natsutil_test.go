package natsutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
)

// batchMsg mirrors the worker's intake payload shape.
type batchMsg struct {
	BatchID  string `json:"batch_id"`
	Postings int    `json:"postings"`
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	carrier.Set("traceparent", "00-abc-def-01")
	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("expected traceparent, got %q", got)
	}

	keys := carrier.Keys()
	if len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestNatsHeaderCarrierNilHeader(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	if got := carrier.Get("missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if keys := carrier.Keys(); keys != nil {
		t.Fatalf("expected nil keys, got %v", keys)
	}
}

func TestPublishSerializesJSON(t *testing.T) {
	// We can't easily test Publish without a NATS connection,
	// but we can verify the JSON marshaling logic.
	msg := batchMsg{BatchID: "batch-7", Postings: 42}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var decoded batchMsg
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.BatchID != "batch-7" || decoded.Postings != 42 {
		t.Fatalf("unexpected: %+v", decoded)
	}
}

func TestSubscribeDropsMalformed(t *testing.T) {
	// Simulate the handler logic from Subscribe
	called := false
	handler := func(_ context.Context, v batchMsg) {
		called = true
	}

	// Simulate malformed message processing
	badData := []byte("{invalid json")
	var v batchMsg
	if err := json.Unmarshal(badData, &v); err != nil {
		// Malformed messages are dropped, so the handler never runs.
		if called {
			t.Fatal("handler should not have been called for malformed message")
		}
		return
	}
	handler(context.Background(), v)
}

func TestQueueSubscribeUnmarshalPath(t *testing.T) {
	// QueueSubscribe routes malformed payloads to onBad instead of dropping
	// them. The dispatch needs a live connection; the decode split does not.
	good, bad := 0, 0
	dispatch := func(data []byte) {
		var v batchMsg
		if err := json.Unmarshal(data, &v); err != nil {
			bad++
			return
		}
		good++
	}

	dispatch([]byte(`{"batch_id":"b-1","postings":3}`))
	dispatch([]byte("not json"))
	if good != 1 || bad != 1 {
		t.Fatalf("good=%d bad=%d", good, bad)
	}
}
