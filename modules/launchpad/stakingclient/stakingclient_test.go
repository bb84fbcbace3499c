package stakingclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stakes/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/stakes/0xalice":
			_, _ = w.Write([]byte(`{"error":null,"result":{"amount":"1500000000000000000000"}}`))
		case "/v1/stakes/0xbroken":
			_, _ = w.Write([]byte(`{"result":{"amount":"lots"}}`))
		case "/v1/stakes/0xfailing":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream"}`))
		default:
			_, _ = w.Write([]byte(`{"error":"unknown staker"}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStakedBalance(t *testing.T) {
	srv := newServer(t)
	client, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	amount, err := client.StakedBalance(ctx, sale.NewAddress("0xAlice"))
	require.NoError(t, err)
	expected, err := uint128.FromString("1500000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, expected, amount)

	for _, user := range []string{"0xbroken", "0xfailing", "0xnobody"} {
		_, err := client.StakedBalance(ctx, sale.NewAddress(user))
		assert.ErrorIs(t, err, errs.Unavailable, user)
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, errs.InvalidArgument)
}
