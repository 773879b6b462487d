package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// ArchiveSignatureHeader carries the hex HMAC-SHA256 of the request body.
const ArchiveSignatureHeader = "X-Archive-Signature"

// EventClosureSealed is the only event delivered to the archive.
const EventClosureSealed = "CLOSURE_SEALED"

var archiveRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// ArchivePayload is the JSON document posted for a sealed closure.
type ArchivePayload struct {
	EventType string             `json:"event_type"`
	Data      ArchivePayloadData `json:"data"`
}

// ArchivePayloadData holds what an archive needs to confirm the seal independently.
type ArchivePayloadData struct {
	ClosureID      string `json:"closure_id"`
	TenantID       string `json:"tenant_id"`
	RegisterID     string `json:"register_id"`
	Date           string `json:"date"`
	TicketCount    int    `json:"ticket_count"`
	CancelledCount int    `json:"cancelled_count"`
	TotalHT        string `json:"total_ht"`
	TotalTVA       string `json:"total_tva"`
	TotalTTC       string `json:"total_ttc"`
	LastTicketHash string `json:"last_ticket_hash"`
	Hash           string `json:"hash"`
	Signature      string `json:"signature"`
	ClosedBy       string `json:"closed_by"`
	ClosedAt       string `json:"closed_at"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type archiveNotifier struct {
	url        string
	secret     []byte
	httpClient HTTPClient
	retries    []time.Duration
	log        zerolog.Logger
}

// NewArchiveNotifier creates the closure archive notifier. An empty url
// disables delivery.
func NewArchiveNotifier(url, secret string, httpClient HTTPClient, log zerolog.Logger) ports.ArchiveNotifier {
	return &archiveNotifier{
		url:        url,
		secret:     []byte(secret),
		httpClient: httpClient,
		retries:    archiveRetryIntervals,
		log:        log,
	}
}

// NotifyClosure posts the sealed closure asynchronously with retries.
func (n *archiveNotifier) NotifyClosure(_ context.Context, c *domain.Closure) error {
	if n.url == "" {
		n.log.Debug().Str("closure_id", c.ID.String()).Msg("archive: no url configured, skipping")
		return nil
	}

	body, err := json.Marshal(ArchivePayload{
		EventType: EventClosureSealed,
		Data: ArchivePayloadData{
			ClosureID:      c.ID.String(),
			TenantID:       c.TenantID.String(),
			RegisterID:     c.RegisterID.String(),
			Date:           c.BusinessDate.Format(hashchain.DateLayout),
			TicketCount:    c.TicketCount,
			CancelledCount: c.CancelledCount,
			TotalHT:        hashchain.Amount(c.Totals.HT),
			TotalTVA:       hashchain.Amount(c.Totals.TVA),
			TotalTTC:       hashchain.Amount(c.Totals.TTC),
			LastTicketHash: c.LastTicketHash,
			Hash:           c.Hash,
			Signature:      c.Signature.String(),
			ClosedBy:       c.ClosedBy,
			ClosedAt:       hashchain.Timestamp(c.ClosedAt),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal archive payload: %w", err)
	}

	go n.deliverWithRetries(body, n.sign(body), c.ID.String())
	return nil
}

func (n *archiveNotifier) sign(body []byte) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// deliverWithRetries attempts delivery on the fixed retry schedule.
func (n *archiveNotifier) deliverWithRetries(body []byte, signature, closureID string) {
	for attempt := 0; attempt <= len(n.retries); attempt++ {
		if attempt > 0 {
			time.Sleep(n.retries[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			n.log.Error().Err(err).Str("closure_id", closureID).Msg("archive: failed to create request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(ArchiveSignatureHeader, signature)

		resp, err := n.httpClient.Do(req)
		if err != nil {
			n.log.Warn().Err(err).Str("closure_id", closureID).Int("attempt", attempt+1).Msg("archive: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			n.log.Info().Str("closure_id", closureID).Int("attempt", attempt+1).Msg("archive: closure delivered")
			return
		}

		n.log.Warn().Str("closure_id", closureID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("archive: non-2xx response, retrying")
	}

	n.log.Error().Str("closure_id", closureID).Msg("archive: all retry attempts exhausted")
}
