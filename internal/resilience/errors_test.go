package resilience

import (
	"errors"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseWith(status int, retryAfter string) *http.Response {
	resp := &http.Response{StatusCode: status, Header: http.Header{}}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return resp
}

func TestTransientFromResponse(t *testing.T) {
	t.Run("rate limit with retry-after", func(t *testing.T) {
		base := eris.New("overpass: returned status 429")
		err := TransientFromResponse(base, responseWith(429, "12"))

		var te *TransientError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 429, te.StatusCode)
		assert.Equal(t, 12*time.Second, te.RetryAfter)
		assert.True(t, IsTransient(err))
	})

	t.Run("gateway timeout without header", func(t *testing.T) {
		base := eris.New("census: returned status 504")
		err := TransientFromResponse(base, responseWith(504, ""))

		var te *TransientError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 504, te.StatusCode)
		assert.Zero(t, te.RetryAfter)
	})

	t.Run("client error passes through", func(t *testing.T) {
		base := eris.New("yelp: returned status 401")
		err := TransientFromResponse(base, responseWith(401, ""))
		assert.Equal(t, base, err)
		assert.False(t, IsTransient(err))
	})

	t.Run("http-date retry-after is ignored", func(t *testing.T) {
		base := eris.New("overpass: returned status 503")
		err := TransientFromResponse(base, responseWith(503, "Wed, 21 Oct 2026 07:28:00 GMT"))

		var te *TransientError
		require.ErrorAs(t, err, &te)
		assert.Zero(t, te.RetryAfter)
	})
}

func TestRetryAfterHint(t *testing.T) {
	err := TransientFromResponse(eris.New("overpass: returned status 429"), responseWith(429, "3"))
	wrapped := eris.Wrap(err, "overpass: request")
	assert.Equal(t, 3*time.Second, retryAfterHint(wrapped))

	assert.Zero(t, retryAfterHint(errors.New("census: no tract match")))
	assert.Zero(t, retryAfterHint(nil))
}

func TestIsTransient(t *testing.T) {
	t.Run("explicit transient survives wrapping", func(t *testing.T) {
		inner := NewTransientError(errors.New("mirror overloaded"), 503)
		assert.True(t, IsTransient(eris.Wrap(inner, "overpass: poi query")))
	})

	t.Run("nil and plain errors are not transient", func(t *testing.T) {
		assert.False(t, IsTransient(nil))
		assert.False(t, IsTransient(errors.New("census: key not configured")))
	})

	t.Run("connection failures are transient", func(t *testing.T) {
		assert.True(t, IsTransient(eris.Wrap(syscall.ECONNRESET, "write tcp")))
		assert.True(t, IsTransient(eris.Wrap(syscall.ECONNREFUSED, "dial tcp")))
	})

	t.Run("dns timeout is transient", func(t *testing.T) {
		var err error = &net.DNSError{IsTimeout: true, Err: "timeout", Name: "overpass-api.de"}
		assert.True(t, IsTransient(err))
	})

	t.Run("stringly wrapped client failures", func(t *testing.T) {
		for _, msg := range []string{
			"fetch maps page: connection reset by peer",
			"TLS handshake timeout",
			"read tcp: i/o timeout",
			"server closed idle connection",
		} {
			assert.True(t, IsTransient(errors.New(msg)), msg)
		}
	})
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 204, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	inner := errors.New("query timed out")
	te := NewTransientError(inner, 504)

	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "query timed out", te.Error())
	assert.Equal(t, 504, te.StatusCode)
}
