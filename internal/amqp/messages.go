package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"saldo/internal/core"
	"saldo/internal/ports"
)

// LedgerChangeMessage tells consumers that a user's ledger changed. It
// carries identifiers only; consumers reload the full snapshot.
type LedgerChangeMessage struct {
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	RecordID  string    `json:"recordId"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

var ErrInvalidMessage = errors.New("invalid ledger change message")

// NewLedgerChangeMessage builds a message from a change, stamping it now if
// the change has no time.
func NewLedgerChangeMessage(change ports.LedgerChange) *LedgerChangeMessage {
	ts := change.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerChangeMessage{
		UserID:    change.UserID,
		Kind:      change.Kind.String(),
		RecordID:  change.RecordID,
		Op:        change.Op,
		Timestamp: ts.UTC(),
	}
}

func (m *LedgerChangeMessage) Validate() error {
	if m.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrInvalidMessage)
	}
	if _, err := core.ParseKind(m.Kind); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	switch m.Op {
	case ports.OpCreate, ports.OpUpdate, ports.OpToggle, ports.OpDelete:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidMessage, m.Op)
	}
	return nil
}

// Change converts the message back into a ports.LedgerChange.
func (m *LedgerChangeMessage) Change() (ports.LedgerChange, error) {
	if err := m.Validate(); err != nil {
		return ports.LedgerChange{}, err
	}
	kind, _ := core.ParseKind(m.Kind)
	return ports.LedgerChange{
		UserID:   m.UserID,
		Kind:     kind,
		RecordID: m.RecordID,
		Op:       m.Op,
		At:       m.Timestamp,
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON decodes and validates a message.
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
