// Package classify turns raw subscription payloads into typed event kinds.
package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"solana-launch-monitor/internal/domain"
)

// ErrParse marks a payload that is not valid JSON. The caller logs and
// drops the message; parse failures never unwind past the classifier.
type ErrParse struct {
	cause error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("classify: malformed message: %v", e.cause)
}

func (e *ErrParse) Unwrap() error {
	return e.cause
}

// Marker is one substring rule. Markers are ordered data, not code: the
// first matching marker decides the event kind. Contains is the required
// substring; when Lowercase is set matching runs on the lowercased log
// text. AnyOf, when non-empty, requires at least one additional substring.
type Marker struct {
	Kind      domain.EventKind
	Contains  string
	Lowercase bool
	AnyOf     []string
}

// DefaultMarkers returns the built-in marker precedence: MintTo before
// InitializeMint before the combined initialize+pool-term rule. A log
// bundle containing both a MintTo and a liquidity marker is therefore a
// mint event, never a liquidity event.
func DefaultMarkers() []Marker {
	return []Marker{
		{Kind: domain.KindNewTokenMint, Contains: "MintTo"},
		{Kind: domain.KindNewTokenMint, Contains: "InitializeMint"},
		{
			Kind:      domain.KindNewPoolLiquidity,
			Contains:  "initialize",
			Lowercase: true,
			AnyOf:     []string{"liquidity", "pool", "swap"},
		},
	}
}

// Result is the outcome of classifying one payload. Kind is empty for
// ignored messages. Reply, when non-nil, is a payload the transport should
// write back (pong for an application-level ping).
type Result struct {
	Kind      domain.EventKind
	Signature string
	Slot      int64
	Logs      []string
	Reply     []byte
}

// Ignored reports whether the message produced no event.
func (r Result) Ignored() bool {
	return r.Kind == ""
}

// Classifier applies control-message recognition first, then ordered
// marker matching over the joined log lines.
type Classifier struct {
	markers []Marker
}

// New creates a Classifier. A nil or empty marker list falls back to
// DefaultMarkers.
func New(markers []Marker) *Classifier {
	if len(markers) == 0 {
		markers = DefaultMarkers()
	}
	return &Classifier{markers: markers}
}

// envelope covers every message shape the subscription can deliver.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id"`
	Method  string          `json:"method"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
	Params  *struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Context *struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string          `json:"signature"`
				Logs      []string        `json:"logs"`
				Err       json.RawMessage `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Classify inspects one raw payload. Control messages (subscription acks,
// pings) short-circuit as ignored; a ping additionally carries a pong
// reply. Log notifications from failed transactions are discarded before
// any marker matching. Malformed JSON returns *ErrParse.
func (c *Classifier) Classify(raw []byte) (Result, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Result{}, &ErrParse{cause: err}
	}

	// Application-level keep-alive: answer and move on.
	if env.Method == "ping" {
		return Result{Reply: pongReply(env.ID)}, nil
	}

	// A message with an id is a response: subscription ack or error reply.
	if env.ID != nil {
		return Result{}, nil
	}

	if env.Method != "logsNotification" || env.Params == nil {
		return Result{}, nil
	}

	value := env.Params.Result.Value

	// Failed transactions never produce candidate events.
	if !isNull(value.Err) {
		return Result{}, nil
	}

	kind, ok := MatchMarkers(value.Logs, c.markers)
	if !ok {
		return Result{}, nil
	}

	res := Result{
		Kind:      kind,
		Signature: value.Signature,
		Logs:      value.Logs,
	}
	if env.Params.Result.Context != nil {
		res.Slot = env.Params.Result.Context.Slot
	}
	return res, nil
}

// MatchMarkers runs the ordered marker list over the joined log lines.
// First match wins; at most one kind per bundle.
func MatchMarkers(logs []string, markers []Marker) (domain.EventKind, bool) {
	if len(logs) == 0 {
		return "", false
	}

	joined := strings.Join(logs, "\n")
	lowered := strings.ToLower(joined)

	for _, m := range markers {
		text := joined
		if m.Lowercase {
			text = lowered
		}
		if !strings.Contains(text, m.Contains) {
			continue
		}
		if len(m.AnyOf) > 0 && !containsAny(text, m.AnyOf) {
			continue
		}
		return m.Kind, true
	}
	return "", false
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// pongReply builds the keep-alive answer, echoing the ping id when present.
func pongReply(id *uint64) []byte {
	if id != nil {
		return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":null}`, *id))
	}
	return []byte(`{"jsonrpc":"2.0","method":"pong"}`)
}

// isNull reports whether a raw JSON field is absent or the null literal.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
