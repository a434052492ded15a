package models

// InboundMessage is one chat event delivered by the WhatsApp gateway.
type InboundMessage struct {
	ID   string `json:"message_id"`
	From string `json:"from"`
	Body string `json:"body"`
}
