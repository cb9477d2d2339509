package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// AccountChangedMessage announces that an account was saved. It carries only
// identifiers; consumers load the account from the store.
type AccountChangedMessage struct {
	AccountID string    `json:"account_id"`
	Version   int64     `json:"version"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAccountChangedMessage creates a message stamped with the current time.
func NewAccountChangedMessage(accountID string, version int64, operation string) *AccountChangedMessage {
	return &AccountChangedMessage{
		AccountID: accountID,
		Version:   version,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AccountChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AccountChangedMessageFromJSON decodes and validates a message.
func AccountChangedMessageFromJSON(data []byte) (*AccountChangedMessage, error) {
	var msg AccountChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.AccountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}
	return &msg, nil
}
