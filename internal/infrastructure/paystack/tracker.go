package paystack

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coursepay/internal/shared/config"
	"coursepay/internal/shared/logger"
)

const trackerPluginName = "coursepay-enrol"

// Tracker reports successful charges to the Paystack integration tracker.
// This is a courtesy call: failures are logged and never affect the grant.
type Tracker struct {
	url        string
	publicKey  string
	httpClient *http.Client
	logger     logger.Interface
}

func NewTracker(cfg *config.PaystackConfig, log logger.Interface) *Tracker {
	return &Tracker{
		url:        cfg.TrackerURL,
		publicKey:  cfg.PublicKey(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
}

// LogChargeSuccess posts the transaction reference to the tracker.
func (t *Tracker) LogChargeSuccess(ctx context.Context, reference string) {
	if t.url == "" {
		return
	}

	form := url.Values{
		"plugin_name":           {trackerPluginName},
		"transaction_reference": {reference},
		"public_key":            {t.publicKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(form.Encode()))
	if err != nil {
		t.logger.Warnw("failed to build tracker request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warnw("failed to log charge to tracker", "reference", reference, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		t.logger.Warnw("tracker rejected charge log", "reference", reference, "status", resp.StatusCode)
	}
}
