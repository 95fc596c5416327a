// Package adapter holds the outbound HTTP client for the templated-email
// dispatch service. Accounts never receive mail directly from this process;
// every welcome and reset-password message goes through the external
// notifier, addressed by template name and account id.
package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avetrov/go-idm-core/internal/config"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/utils"
	"github.com/avetrov/go-idm-core/models"
)

type emailDispatcher struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewEmailDispatcher constructs the HTTP notification dispatcher. It
// normalises and validates the base URL from cfg.BaseURL and configures the
// underlying HTTP client with the resolved base URL and request timeout.
//
// An empty cfg.BaseURL disables outbound mail entirely: the returned
// dispatcher accepts every notification and drops it with a log line, so
// local and test deployments run without a notifier.
//
// Returns an error if cfg.BaseURL is non-empty but cannot be parsed as a
// valid URL.
func NewEmailDispatcher(cfg config.Notifier, log *logger.Logger) (Dispatcher, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		log.Warn().Str("func", "NewEmailDispatcher").Msg("notifier base URL is empty, outbound notifications are disabled")
		return &emailDispatcher{logger: log}, nil
	}

	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid notifier base URL: %w", err)
	}

	client := utils.NewHTTPClient(baseURL, cfg.Timeout)

	return &emailDispatcher{client: client, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Dispatch POSTs the notification to POST /api/notifications and awaits the
// response. A non-2xx status surfaces as a mapped error; callers decide
// whether the dispatch was fire-and-forget or load-bearing.
func (d *emailDispatcher) Dispatch(ctx context.Context, notification models.Notification) error {
	if d.client == nil {
		d.logger.Debug().Str("template", notification.Template).Int64("account_id", notification.AccountID).Msg("notifier disabled, dropping notification")
		return nil
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(notification).
		Post("/api/notifications")
	if err != nil {
		return fmt.Errorf("notification request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	return nil
}
