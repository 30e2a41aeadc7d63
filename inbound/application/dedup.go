package application

import (
	"context"
	"time"

	convDomain "github.com/AzielCF/az-devocional/conversations/domain"
	"github.com/AzielCF/az-devocional/inbound/domain"
	"github.com/AzielCF/az-devocional/pkg/textnorm"
	"github.com/sirupsen/logrus"
)

// FingerprintClaimer reserva una huella durante ttl. Retorna false si otro
// request ya la reservó.
type FingerprintClaimer interface {
	Claim(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)
}

// Deduplicator rejects re-deliveries before any side effect happens. The
// store's unique message id remains the authoritative guard; this check
// catches provider retries that arrive with a fresh id.
type Deduplicator struct {
	conversations convDomain.ConversationRepository
	claimer       FingerprintClaimer
	window        time.Duration
	now           func() time.Time
}

func NewDeduplicator(conversations convDomain.ConversationRepository, claimer FingerprintClaimer, window time.Duration) *Deduplicator {
	if window <= 0 {
		window = 60 * time.Second
	}
	return &Deduplicator{
		conversations: conversations,
		claimer:       claimer,
		window:        window,
		now:           time.Now,
	}
}

// Check returns a reason code when msg duplicates a recent message, or "".
// Lookup failures are logged and never block processing.
func (d *Deduplicator) Check(ctx context.Context, msg domain.InboundMessage) string {
	fingerprint := textnorm.Fingerprint(msg.Phone, msg.Text)

	recent, err := d.conversations.FindRecent(ctx, msg.Phone, d.now().Add(-d.window))
	if err != nil {
		logrus.WithError(err).WithField("phone", msg.Phone).Warn("[DEDUP] Recent lookup failed, continuing")
	}
	for _, conv := range recent {
		if textnorm.Fingerprint(conv.UserPhone, conv.MessageContent) != fingerprint {
			continue
		}
		if msg.MessageID != "" && conv.MessageID == msg.MessageID {
			return domain.ReasonDuplicateMessageID
		}
		logrus.WithFields(logrus.Fields{
			"phone":       msg.Phone,
			"previous_id": conv.ID,
		}).Info("[DEDUP] Same content inside window, ignoring")
		return domain.ReasonDuplicateMessage
	}

	// Sin message id no hay constraint único que nos proteja de la carrera
	if msg.MessageID == "" && d.claimer != nil {
		ok, err := d.claimer.Claim(ctx, fingerprint, d.window)
		if err != nil {
			logrus.WithError(err).Warn("[DEDUP] Fingerprint claim failed, continuing")
			return ""
		}
		if !ok {
			return domain.ReasonDuplicateMessage
		}
	}
	return ""
}
