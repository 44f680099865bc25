package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jredh-dev/nexus-relay/internal/logging"
	"github.com/jredh-dev/nexus-relay/internal/metrics"
	"github.com/jredh-dev/nexus-relay/internal/sheets"
)

type fakeReplier struct {
	sent    []TextMessage
	failFor map[string]bool
	panics  bool
}

func (f *fakeReplier) SendText(_ context.Context, msg TextMessage) (json.RawMessage, error) {
	if f.panics {
		panic("replier exploded")
	}
	f.sent = append(f.sent, msg)
	if f.failFor[msg.To] {
		return nil, &APIError{Status: 400, Details: "outside 24h window"}
	}
	return json.RawMessage(`{}`), nil
}

type fakeLogger struct {
	logged []sheets.Message
	fail   bool
}

func (f *fakeLogger) LogMessage(_ context.Context, msg sheets.Message) sheets.Result {
	f.logged = append(f.logged, msg)
	if f.fail {
		return sheets.Result{Success: false, Error: "sheet down"}
	}
	return sheets.Result{Success: true}
}

var testCreds = Credentials{PhoneNumberID: "pnid", Token: "tok"}

func newTestDispatcher(r Replier, l MessageLogger) *Dispatcher {
	return NewDispatcher(r, testCreds, l, logging.Discard(), metrics.Registry("relay_test"))
}

const mixedPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA_ID",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550000000", "phone_number_id": "pnid"},
        "contacts": [{"profile": {"name": "Juan"}, "wa_id": "50671508835"}],
        "messages": [
          {"from": "50671508835", "id": "wamid.1", "timestamp": "1700000000", "type": "text", "text": {"body": "hola"}},
          {"from": "50600000001", "id": "wamid.2", "timestamp": "1700000001", "type": "button", "button": {"text": "Confirmar", "payload": "ok"}},
          {"from": "50600000002", "id": "wamid.3", "timestamp": "1700000002", "type": "interactive", "interactive": {"type": "button_reply", "button_reply": {"id": "b1", "title": "Ver menú"}}},
          {"from": "50600000003", "id": "wamid.4", "timestamp": "1700000003", "type": "image", "image": {"id": "media"}}
        ]
      }
    }]
  }]
}`

func TestDispatch_AutoReplies(t *testing.T) {
	r := &fakeReplier{}
	d := newTestDispatcher(r, nil)

	if err := d.Dispatch(context.Background(), []byte(mixedPayload)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	want := []struct{ to, text string }{
		{"50671508835", `Recibido: "hola". Gracias por escribir.`},
		{"50600000001", `Recibido: "Confirmar". Gracias por escribir.`},
		{"50600000002", `Recibido: "Ver menú". Gracias por escribir.`},
		{"50600000003", "Recibido. Gracias por escribir."},
	}
	if len(r.sent) != len(want) {
		t.Fatalf("expected %d replies, got %d", len(want), len(r.sent))
	}
	for i, w := range want {
		got := r.sent[i]
		if got.To != w.to || got.Text != w.text {
			t.Errorf("reply %d: got (%s, %q), want (%s, %q)", i, got.To, got.Text, w.to, w.text)
		}
		if got.Credentials != testCreds {
			t.Errorf("reply %d: expected configured credentials, got %+v", i, got.Credentials)
		}
	}
}

func TestDispatch_LogsInboundMessages(t *testing.T) {
	l := &fakeLogger{}
	d := newTestDispatcher(&fakeReplier{}, l)

	if err := d.Dispatch(context.Background(), []byte(mixedPayload)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(l.logged) != 4 {
		t.Fatalf("expected 4 logged messages, got %d", len(l.logged))
	}
	if l.logged[0] != (sheets.Message{From: "50671508835", Body: "hola", Type: "text"}) {
		t.Errorf("unexpected first log %+v", l.logged[0])
	}
	if l.logged[1].Type != "button" || l.logged[1].Body != "Confirmar" {
		t.Errorf("unexpected button log %+v", l.logged[1])
	}
	if l.logged[3].Body != "" || l.logged[3].Type != "image" {
		t.Errorf("unexpected image log %+v", l.logged[3])
	}
}

func TestDispatch_LoggingFailureDoesNotBlockReply(t *testing.T) {
	r := &fakeReplier{}
	d := newTestDispatcher(r, &fakeLogger{fail: true})

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"text","text":{"body":"x"}}]}}]}]}`
	if err := d.Dispatch(context.Background(), []byte(body)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(r.sent) != 1 {
		t.Errorf("expected reply despite logging failure, got %d", len(r.sent))
	}
}

func TestDispatch_MissingSenderSkipsReply(t *testing.T) {
	r := &fakeReplier{}
	d := newTestDispatcher(r, nil)

	body := `{"entry":[{"changes":[{"value":{"messages":[{"type":"text","text":{"body":"anon"}}]}}]}]}`
	if err := d.Dispatch(context.Background(), []byte(body)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(r.sent) != 0 {
		t.Errorf("expected no reply without sender, got %d", len(r.sent))
	}
}

func TestDispatch_StatusesOnlyHaveNoSideEffects(t *testing.T) {
	r := &fakeReplier{}
	l := &fakeLogger{}
	d := newTestDispatcher(r, l)

	body := `{"entry":[{"changes":[{"value":{"statuses":[
		{"id":"wamid.1","status":"sent","timestamp":"1","recipient_id":"506"},
		{"id":"wamid.1","status":"delivered","timestamp":"2","recipient_id":"506"},
		{"id":"wamid.1","status":"read","timestamp":"3","recipient_id":"506"}
	]}}]}]}`
	if err := d.Dispatch(context.Background(), []byte(body)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(r.sent) != 0 || len(l.logged) != 0 {
		t.Errorf("status updates must not reply or log, got %d replies %d logs", len(r.sent), len(l.logged))
	}
}

func TestDispatch_ReplyFailureContinues(t *testing.T) {
	r := &fakeReplier{failFor: map[string]bool{"50671508835": true}}
	d := newTestDispatcher(r, nil)

	err := d.Dispatch(context.Background(), []byte(mixedPayload))
	if err == nil {
		t.Fatal("expected joined error from failed reply")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("expected wrapped *APIError, got %v", err)
	}
	if !strings.Contains(err.Error(), "50671508835") {
		t.Errorf("expected failing recipient in error, got %v", err)
	}
	if len(r.sent) != 4 {
		t.Errorf("expected remaining messages still answered, got %d sends", len(r.sent))
	}
}

func TestDispatch_MalformedInput(t *testing.T) {
	cases := map[string]struct {
		body    string
		wantErr bool
	}{
		"empty object":     {`{}`, false},
		"empty entries":    {`{"entry":[]}`, false},
		"entry no changes": {`{"entry":[{"id":"x"}]}`, false},
		"change no value":  {`{"entry":[{"changes":[{"field":"messages"}]}]}`, false},
		"null":             {`null`, false},
		"not json":         {`not json`, true},
		"wrong shape":      {`{"entry":"oops"}`, true},
		"empty body":       {``, true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := &fakeReplier{}
			d := newTestDispatcher(r, nil)
			err := d.Dispatch(context.Background(), []byte(tc.body))
			if (err != nil) != tc.wantErr {
				t.Errorf("Dispatch() err = %v, wantErr %v", err, tc.wantErr)
			}
			if len(r.sent) != 0 {
				t.Errorf("expected no replies, got %d", len(r.sent))
			}
		})
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	d := newTestDispatcher(&fakeReplier{panics: true}, nil)

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"text","text":{"body":"x"}}]}}]}]}`
	err := d.Dispatch(context.Background(), []byte(body))
	if err == nil || !strings.Contains(err.Error(), "panic") {
		t.Errorf("expected recovered panic as error, got %v", err)
	}
}

func TestDispatch_MetricLabelsBounded(t *testing.T) {
	m := metrics.Registry("relay_test")
	d := NewDispatcher(&fakeReplier{}, testCreds, nil, logging.Discard(), m)

	var msgs, statuses []string
	for i := 0; i < 200; i++ {
		msgs = append(msgs, fmt.Sprintf(`{"from":"1","type":"t%d"}`, i))
		statuses = append(statuses, fmt.Sprintf(`{"id":"w","status":"s%d"}`, i))
	}
	body := `{"entry":[{"changes":[{"value":{"messages":[` + strings.Join(msgs, ",") +
		`],"statuses":[` + strings.Join(statuses, ",") + `]}}]}]}`
	if err := d.Dispatch(context.Background(), []byte(body)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if n := testutil.CollectAndCount(m.WebhookMessages); n > len(knownMessageTypes)+1 {
		t.Errorf("message type series unbounded: %d", n)
	}
	if n := testutil.CollectAndCount(m.WebhookStatuses); n > len(knownStatuses)+1 {
		t.Errorf("status series unbounded: %d", n)
	}
	if got := testutil.ToFloat64(m.WebhookMessages.WithLabelValues("other")); got < 200 {
		t.Errorf("expected unknown types counted as other, got %v", got)
	}
}

func TestLabels(t *testing.T) {
	cases := []struct{ in, msg, status string }{
		{"text", "text", "other"},
		{"reaction", "reaction", "other"},
		{"read", "other", "read"},
		{"failed", "other", "failed"},
		{"", "other", "other"},
		{"Text", "other", "other"},
	}
	for _, tc := range cases {
		if got := messageTypeLabel(tc.in); got != tc.msg {
			t.Errorf("messageTypeLabel(%q) = %q, want %q", tc.in, got, tc.msg)
		}
		if got := statusLabel(tc.in); got != tc.status {
			t.Errorf("statusLabel(%q) = %q, want %q", tc.in, got, tc.status)
		}
	}
}
