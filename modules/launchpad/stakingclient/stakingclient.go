// Package stakingclient reads staked balances from a remote staking service.
package stakingclient

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/httpclient"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/uint128"
)

type Config struct {
	BaseURL string
	Debug   bool
	Headers map[string]string
}

type Client struct {
	httpClient *httpclient.Client
}

var _ sale.StakingLedger = (*Client)(nil)

func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "staking base url is required")
	}
	httpClient, err := httpclient.New(config.BaseURL, httpclient.Config{
		Debug:   config.Debug,
		Headers: config.Headers,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &Client{
		httpClient: httpClient,
	}, nil
}

type stakeResult struct {
	Amount string `json:"amount"`
}

// StakedBalance returns the staked amount of user in base units.
func (c *Client) StakedBalance(ctx context.Context, user sale.Address) (uint128.Uint128, error) {
	resp, err := c.httpClient.Get(ctx, "/v1/stakes/"+url.PathEscape(user.String()), httpclient.RequestOptions{})
	if err != nil {
		return uint128.Zero, errors.Wrap(errors.Mark(err, errs.Unavailable), "can't send request")
	}
	if !resp.IsSuccess() {
		logger.WarnContext(ctx, "staking service rejected request",
			slog.String("user", user.String()),
			slog.Int("status_code", resp.StatusCode()),
			slog.String("body", string(resp.Body())),
		)
		return uint128.Zero, errors.Wrapf(errs.Unavailable, "staking service responded with status %d", resp.StatusCode())
	}

	body, err := httpclient.Result[stakeResult](resp)
	if err != nil {
		return uint128.Zero, errors.Wrap(errors.Mark(err, errs.Unavailable), "can't decode staking response")
	}
	amount, err := uint128.FromString(body.Amount)
	if err != nil {
		return uint128.Zero, errors.Wrapf(errors.Mark(err, errs.Unavailable), "invalid staked amount %q", body.Amount)
	}
	return amount, nil
}
