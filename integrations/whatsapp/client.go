package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AzielCF/az-devocional/core/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// SendResult es lo que devuelve el proveedor tras un envío
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Client envía mensajes de texto por la API HTTP del proveedor de WhatsApp
type Client struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg config.WhatsappConfig) *Client {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.SendRate > 0 {
		burst := int(cfg.SendRate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.SendRate), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		instanceID: cfg.InstanceID,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

type sendTextRequest struct {
	Phone        string `json:"phone"`
	Message      string `json:"message"`
	DelayMessage int    `json:"delayMessage,omitempty"`
}

type sendTextResponse struct {
	MessageID  string `json:"messageId"`
	InsertedID string `json:"insertedId"`
	Error      any    `json:"error"`
	Message    string `json:"message"`
}

// SendText delivers one text message. Transport and provider failures are
// reported in SendResult; the returned error is only set when ctx ends
// before the rate limiter lets the send through.
func (c *Client) SendText(ctx context.Context, phone, message string) (SendResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return SendResult{Error: err.Error()}, err
	}

	payload, err := json.Marshal(sendTextRequest{Phone: phone, Message: message, DelayMessage: 1})
	if err != nil {
		return SendResult{Error: err.Error()}, nil
	}

	endpoint := fmt.Sprintf("%s/message/send-text?instanceId=%s", c.baseURL, url.QueryEscape(c.instanceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return SendResult{Error: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("phone", phone).Warn("[WHATSAPP] Send failed")
		return SendResult{Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var parsed sendTextResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || isTruthyError(parsed.Error) {
		msg := strings.TrimSpace(parsed.Message)
		if msg == "" {
			msg = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		logrus.WithFields(logrus.Fields{
			"phone":  phone,
			"status": resp.StatusCode,
		}).Warnf("[WHATSAPP] Provider rejected message: %s", msg)
		return SendResult{Error: msg}, nil
	}

	id := parsed.MessageID
	if id == "" {
		id = parsed.InsertedID
	}
	return SendResult{Success: true, MessageID: id}, nil
}

// isTruthyError interpreta el campo "error" que algunos proveedores devuelven con HTTP 200
func isTruthyError(v any) bool {
	switch e := v.(type) {
	case nil:
		return false
	case bool:
		return e
	case string:
		return e != ""
	default:
		return true
	}
}
