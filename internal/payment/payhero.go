package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/httpclient"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

// PayHeroGateway implements Gateway for the PayHero M-PESA STK push API.
// Channel id and the basic-auth credential live in the settings store so
// the admin can rotate them at runtime.
type PayHeroGateway struct {
	apiURL      string
	callbackURL string
	settings    *store.SettingsStore
	client      *httpclient.Client
	logger      *zap.Logger
}

func NewPayHeroGateway(apiURL, callbackURL string, settings *store.SettingsStore, logger *zap.Logger) *PayHeroGateway {
	return &PayHeroGateway{
		apiURL:      apiURL,
		callbackURL: callbackURL,
		settings:    settings,
		// A push is never retried: a timed-out request may still have
		// reached PayHero, and a retry would prompt the customer twice.
		client:      httpclient.New().WithTimeout(30 * time.Second).WithNoRetry(),
		logger:      logger,
	}
}

func (g *PayHeroGateway) Push(ctx context.Context, amount float64, phoneNumber, externalRef, customerName string) PushResult {
	channelID, authToken := g.settings.PayHero()

	body := map[string]interface{}{
		"amount":             amount,
		"phone_number":       phoneNumber,
		"channel_id":         channelID,
		"provider":           "m-pesa",
		"external_reference": externalRef,
		"customer_name":      customerName,
		"callback_url":       g.callbackURL,
	}

	resp, err := g.client.Request().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Basic "+authToken).
		SetBody(body).
		Post(g.apiURL)
	if err != nil {
		g.logger.Error("STK push request failed", zap.String("order", externalRef), zap.Error(err))
		return PushResult{Success: false, Message: "⚠️ STK push request error. Please pay manually."}
	}
	if !resp.IsSuccess() {
		g.logger.Warn("STK push rejected",
			zap.String("order", externalRef),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return PushResult{Success: false, Message: "⚠️ STK push failed. Please pay manually."}
	}

	g.logger.Info("STK push sent", zap.String("order", externalRef), zap.Float64("amount", amount))
	return PushResult{Success: true, Message: "🔔 STK push sent! Check your phone for the M-PESA prompt."}
}
