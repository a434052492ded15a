package chat

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Client talks to the WhatsApp HTTP gateway that owns the paired device.
// Inbound messages arrive separately through the gateway's webhook; this
// client only sends.
type Client struct {
	client *resty.Client
}

// NewClient creates a gateway client. token authenticates the bot to
// the gateway, not to WhatsApp itself.
func NewClient(baseURL, token string) *Client {
	r := resty.New().SetBaseURL(baseURL)
	if token != "" {
		r.SetAuthToken(token)
	}
	return &Client{client: r}
}

// Send delivers text to the identity. Delivery acknowledgments from the
// gateway are not consumed; a 2xx response is enough.
func (c *Client) Send(to, text string) error {
	resp, err := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"to": to, "text": text}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("gateway send to %s failed: %w", to, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("gateway send to %s returned status %d", to, resp.StatusCode())
	}
	return nil
}
