package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mediremind-server/internal/config"
)

const (
	defaultSMSURL      = "https://apisms.beem.africa/v1/send"
	defaultWhatsAppURL = "https://api.beem.africa/v1/whatsapp/send-template"

	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// BeemClient sends SMS and WhatsApp messages through the Beem Africa API.
type BeemClient struct {
	cfg         config.BeemConfig
	client      *http.Client
	log         *zap.Logger
	smsURL      string
	whatsappURL string
}

// NewBeemClient creates a Beem client, or nil when credentials are not
// configured so callers can skip notification dispatch entirely.
func NewBeemClient(cfg config.BeemConfig, log *zap.Logger) *BeemClient {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil
	}
	return &BeemClient{
		cfg:         cfg,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
		smsURL:      defaultSMSURL,
		whatsappURL: defaultWhatsAppURL,
	}
}

// Send delivers message to phone over the preferred channel. Unknown
// channels fall back to SMS.
func (b *BeemClient) Send(ctx context.Context, channel, phone, message string) error {
	if channel == ChannelWhatsApp && b.cfg.WhatsAppNamespace != "" {
		return b.sendWhatsApp(ctx, phone, message)
	}
	return b.sendSMS(ctx, phone, message)
}

func (b *BeemClient) sendSMS(ctx context.Context, recipient, message string) error {
	payload := map[string]any{
		"source_addr":   b.cfg.SenderID,
		"schedule_time": "",
		"encoding":      "0",
		"message":       message,
		"recipients": []map[string]any{
			{"recipient_id": 1, "dest_addr": recipient},
		},
	}
	return b.post(ctx, b.smsURL, payload)
}

func (b *BeemClient) sendWhatsApp(ctx context.Context, recipient, message string) error {
	payload := map[string]any{
		"namespace":     b.cfg.WhatsAppNamespace,
		"template_name": "appointment_update",
		"language":      map[string]string{"code": "en"},
		"to":            recipient,
		"parameters":    []string{message},
	}
	return b.post(ctx, b.whatsappURL, payload)
}

func (b *BeemClient) post(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal beem payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build beem request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(b.cfg.APIKey, b.cfg.SecretKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("send beem request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		b.log.Warn("beem rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return fmt.Errorf("beem responded with status %d", resp.StatusCode)
	}
	return nil
}
