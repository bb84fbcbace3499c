package requestcontext

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// TrustedProxiesIP lists the CIDR ranges of every proxy in front of the server.
	// The client IP is the last X-Forwarded-For entry outside those ranges.
	TrustedProxiesIP []string `env:"TRUSTED_PROXIES_IP" mapstructure:"trusted_proxies_ip"`

	// TrustedHeader names a header holding the client IP (e.g. X-Real-IP, CF-Connecting-IP).
	// It takes precedence over X-Forwarded-For when it carries a valid IP.
	TrustedHeader string `env:"TRUSTED_HEADER" mapstructure:"trusted_proxies_header"`

	// EnableRejectMalformedRequest answers 403 when a proxied request has no resolvable client IP.
	EnableRejectMalformedRequest bool `env:"ENABLE_REJECT_MALFORMED_REQUEST" envDefault:"false" mapstructure:"enable_reject_malformed_request"`
}

// GetClientIP returns the client IP set by [WithClientIP], or an empty string.
func GetClientIP(ctx context.Context) string {
	return value[string](ctx, clientIPKey{})
}

// WithClientIP resolves the client IP, guarding against X-Forwarded-For spoofing.
func WithClientIP(config WithClientIPConfig) (Option, error) {
	trusted, err := parsePrefixes(config.TrustedProxiesIP)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		set := func(ip string) (context.Context, error) {
			return context.WithValue(ctx, clientIPKey{}, ip), nil
		}

		if config.TrustedHeader != "" {
			if ip, err := netip.ParseAddr(c.Get(config.TrustedHeader)); err == nil {
				return set(ip.String())
			}
		}

		forwarded := c.IPs()
		if len(forwarded) == 0 {
			return set(c.IP())
		}

		if len(trusted) > 0 {
			for i := len(forwarded) - 1; i >= 0; i-- {
				ip, err := netip.ParseAddr(forwarded[i])
				if err != nil || !containsAddr(trusted, ip) {
					return set(forwarded[i])
				}
			}
			return set(forwarded[0])
		}

		if config.EnableRejectMalformedRequest {
			logger.WarnContext(ctx, "IP spoofing detected, rejecting request",
				slogx.String("event", "requestcontext_ip_spoofing"),
				slogx.String("ip", c.IP()),
				slogx.Any("ips", forwarded),
			)
			return nil, &RejectError{Status: http.StatusForbidden, Message: "not allowed to access"}
		}
		return set(forwarded[0])
	}, nil
}

func parsePrefixes(ranges []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(ranges))
	for _, r := range ranges {
		prefix, err := netip.ParsePrefix(r)
		if err != nil {
			return nil, errors.Wrapf(errs.InvalidArgument, "trusted proxy range %q: %v", r, err)
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}

func containsAddr(prefixes []netip.Prefix, ip netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(ip.Unmap()) {
			return true
		}
	}
	return false
}
