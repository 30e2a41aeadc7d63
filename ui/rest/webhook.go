package rest

import (
	"context"
	"crypto/subtle"
	"runtime/debug"
	"time"

	inboundApp "github.com/AzielCF/az-devocional/inbound/application"
	"github.com/AzielCF/az-devocional/inbound/domain"
	pkgError "github.com/AzielCF/az-devocional/pkg/error"
	"github.com/AzielCF/az-devocional/pkg/metrics"
	"github.com/AzielCF/az-devocional/pkg/msgworker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WebhookPath is where the provider callbacks are mounted, below the base path.
const WebhookPath = "/webhook/whatsapp"

// MessageProcessor corre el pipeline completo para un mensaje normalizado
type MessageProcessor interface {
	Process(ctx context.Context, msg domain.InboundMessage) domain.Result
}

type JobDispatcher interface {
	TryDispatch(job msgworker.MessageJob) bool
}

type WebhookOptions struct {
	Token          string
	HasCredentials bool
	// RateLimit caps callbacks per minute and IP; 0 disables it.
	RateLimit int
}

type Webhook struct {
	Processor MessageProcessor
	Pool      JobDispatcher
	Options   WebhookOptions
}

func InitRestWebhook(app fiber.Router, processor MessageProcessor, pool JobDispatcher, opts WebhookOptions) Webhook {
	handler := Webhook{Processor: processor, Pool: pool, Options: opts}

	group := app.Group(WebhookPath, webhookRecovery())
	if opts.RateLimit > 0 {
		group.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			// Un 429 haría que el proveedor reintente en ráfaga
			LimitReached: func(c *fiber.Ctx) error {
				logrus.WithField("ip", c.IP()).Warn("[WEBHOOK] Callback rate limit reached")
				return respond(c, domain.Ignored(domain.ReasonRateLimited))
			},
		}))
	}
	group.Post("/", handler.Receive)
	group.Post("/async", handler.ReceiveAsync)

	return handler
}

// Receive processes the callback before answering. Every outcome except
// missing provider credentials is reported with HTTP 200 so the provider
// stops retrying.
func (h *Webhook) Receive(c *fiber.Ctx) error {
	msg, handled, err := h.admit(c)
	if handled {
		return err
	}

	res := h.Processor.Process(c.UserContext(), msg)
	return respond(c, res)
}

// ReceiveAsync valida en línea y difiere el resto al worker pool del teléfono
func (h *Webhook) ReceiveAsync(c *fiber.Ctx) error {
	msg, handled, err := h.admit(c)
	if handled {
		return err
	}

	if h.Pool == nil {
		return respond(c, h.Processor.Process(c.UserContext(), msg))
	}

	traceID := uuid.NewString()
	ok := h.Pool.TryDispatch(msgworker.MessageJob{
		Phone:   msg.Phone,
		TraceID: traceID,
		Handler: func(ctx context.Context) error {
			res := h.Processor.Process(ctx, msg)
			metrics.WebhookRequests.WithLabelValues(string(res.Status), res.Reason).Inc()
			logrus.WithFields(logrus.Fields{
				"trace_id": traceID,
				"status":   res.Status,
				"reason":   res.Reason,
			}).Debug("[WEBHOOK] Async job finished")
			return nil
		},
	})
	if !ok {
		logrus.WithField("phone", msg.Phone).Warn("[WEBHOOK] Worker pool refused job, processing inline")
		return respond(c, h.Processor.Process(c.UserContext(), msg))
	}

	return respond(c, domain.Result{
		Status:    domain.StatusSuccess,
		Reason:    domain.ReasonQueued,
		MessageID: msg.MessageID,
	})
}

// admit aplica token, credenciales y normalización. handled indica que la
// respuesta ya fue escrita.
func (h *Webhook) admit(c *fiber.Ctx) (msg domain.InboundMessage, handled bool, err error) {
	if h.Options.Token != "" && !h.tokenMatches(c) {
		logrus.WithField("ip", c.IP()).Warn("[WEBHOOK] Rejected callback with invalid token")
		return msg, true, respond(c, domain.Ignored(domain.ReasonUnauthorized))
	}

	if !h.Options.HasCredentials {
		cfgErr := pkgError.ConfigurationError("messaging provider credentials are not configured")
		logrus.WithField("code", cfgErr.ErrCode()).Error("[WEBHOOK] ", cfgErr.Error())
		res := domain.Result{Status: domain.StatusError, Reason: domain.ReasonMissingCredentials}
		metrics.WebhookRequests.WithLabelValues(string(res.Status), res.Reason).Inc()
		return msg, true, c.Status(cfgErr.StatusCode()).JSON(res)
	}

	norm := inboundApp.NormalizePayload(c.Body())
	if !norm.OK() {
		logrus.WithField("reason", norm.Reason).Debug("[WEBHOOK] Callback ignored")
		return msg, true, respond(c, domain.Ignored(norm.Reason))
	}
	return norm.Message, false, nil
}

func (h *Webhook) tokenMatches(c *fiber.Ctx) bool {
	got := c.Get("X-Webhook-Token")
	if got == "" {
		got = c.Query("token")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Options.Token)) == 1
}

func respond(c *fiber.Ctx, res domain.Result) error {
	metrics.WebhookRequests.WithLabelValues(string(res.Status), res.Reason).Inc()
	return c.Status(fiber.StatusOK).JSON(res)
}

// webhookRecovery keeps a panic in the pipeline inside the 200 contract.
func webhookRecovery() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Errorf("[WEBHOOK] Panic while processing callback\n%s", debug.Stack())
				err = respond(c, domain.Result{Status: domain.StatusError, Reason: domain.ReasonInternal})
			}
		}()
		return c.Next()
	}
}
