// Package custodyclient moves tokens through a remote custody service.
package custodyclient

import (
	"context"
	"log/slog"

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
	// Reference tags every transfer, usually the sale id.
	Reference string
}

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

type Client struct {
	httpClient *httpclient.Client
	reference  string
}

var _ sale.Custody = (*Client)(nil)

func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "custody base url is required")
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
		reference:  config.Reference,
	}, nil
}

// WithReference returns a client that tags transfers with reference.
func (c *Client) WithReference(reference string) *Client {
	return &Client{
		httpClient: c.httpClient,
		reference:  reference,
	}
}

type TransferRequest struct {
	Token     string    `json:"token"`
	Direction Direction `json:"direction"`
	Account   string    `json:"account"`
	Amount    string    `json:"amount"`
	Reference string    `json:"reference,omitempty"`
}

type transferResult struct {
	OK bool `json:"ok"`
}

func (c *Client) TransferIn(ctx context.Context, token string, from sale.Address, amount uint128.Uint128) error {
	return c.transfer(ctx, TransferRequest{
		Token:     token,
		Direction: DirectionIn,
		Account:   from.String(),
		Amount:    amount.String(),
		Reference: c.reference,
	})
}

func (c *Client) TransferOut(ctx context.Context, token string, to sale.Address, amount uint128.Uint128) error {
	return c.transfer(ctx, TransferRequest{
		Token:     token,
		Direction: DirectionOut,
		Account:   to.String(),
		Amount:    amount.String(),
		Reference: c.reference,
	})
}

func (c *Client) transfer(ctx context.Context, payload TransferRequest) error {
	resp, err := c.httpClient.Post(ctx, "/v1/transfers", httpclient.RequestOptions{
		JSON: payload,
	})
	if err != nil {
		return errors.Wrap(errors.Mark(err, errs.Unavailable), "can't send request")
	}
	if !resp.IsSuccess() {
		logger.WarnContext(ctx, "custody service rejected transfer",
			slog.Any("payload", payload),
			slog.Int("status_code", resp.StatusCode()),
			slog.String("body", string(resp.Body())),
		)
		return errors.Errorf("custody service responded with status %d", resp.StatusCode())
	}

	result, err := httpclient.Result[transferResult](resp)
	if err != nil {
		return errors.Wrap(err, "can't decode custody response")
	}
	if !result.OK {
		return errors.New("transfer not acknowledged")
	}
	logger.DebugContext(ctx, "transfer settled", slog.Any("payload", payload))
	return nil
}
