package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/AzielCF/az-devocional/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(rt roundTripperFunc) *Client {
	c := NewClient(config.WhatsappConfig{
		APIURL:     "https://wapi.test/v1/",
		InstanceID: "inst 1",
		Token:      "secret",
	})
	c.httpClient = &http.Client{Transport: rt, Timeout: time.Second}
	return c
}

func TestClient_SendTextSuccess(t *testing.T) {
	var gotURL, gotAuth string
	var gotBody sendTextRequest

	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		gotAuth = req.Header.Get("Authorization")
		raw, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(raw, &gotBody)
		return jsonResponse(http.StatusOK, `{"messageId":"3EB0ABC"}`), nil
	})

	res, err := c.SendText(context.Background(), "5511999990000", "Olá!")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "3EB0ABC", res.MessageID)
	assert.Equal(t, "https://wapi.test/v1/message/send-text?instanceId=inst+1", gotURL)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "5511999990000", gotBody.Phone)
	assert.Equal(t, "Olá!", gotBody.Message)
}

func TestClient_SendTextProviderErrors(t *testing.T) {
	cases := map[string]*http.Response{
		"http 401":         jsonResponse(http.StatusUnauthorized, `{"message":"invalid token"}`),
		"http 500 no body": jsonResponse(http.StatusInternalServerError, ``),
		"200 with error":   jsonResponse(http.StatusOK, `{"error":true,"message":"instance disconnected"}`),
		"200 error string": jsonResponse(http.StatusOK, `{"error":"phone not on whatsapp"}`),
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(func(*http.Request) (*http.Response, error) { return resp, nil })
			res, err := c.SendText(context.Background(), "5511", "oi")
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestClient_SendTextTransportError(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	})

	res, err := c.SendText(context.Background(), "5511", "oi")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection reset")
}

func TestClient_SendTextRespectsCancelledContextWhileRateLimited(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := c.SendText(context.Background(), "5511", "primeira")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res, err := c.SendText(ctx, "5511", "segunda")
	assert.Error(t, err)
	assert.False(t, res.Success)
}
