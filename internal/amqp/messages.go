package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// PaymentRecordedMessage announces a new or changed payment. It carries only
// the identity; consumers load the payment from the repository.
type PaymentRecordedMessage struct {
	PaymentID string    `json:"payment_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPaymentRecordedMessage(paymentID, status string) *PaymentRecordedMessage {
	return &PaymentRecordedMessage{
		PaymentID: paymentID,
		Status:    status,
		Timestamp: time.Now(),
	}
}

func (m *PaymentRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentRecordedMessageFromJSON decodes a message and rejects ones without
// a payment ID.
func PaymentRecordedMessageFromJSON(data []byte) (*PaymentRecordedMessage, error) {
	var msg PaymentRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.PaymentID == "" {
		return nil, errors.New("message without payment_id")
	}
	return &msg, nil
}
