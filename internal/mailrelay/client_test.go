package mailrelay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/travelgc/internal/services"
)

func testPayload() services.RegistrationPayload {
	return services.RegistrationPayload{
		FirstName:     "Léa",
		LastName:      "Muller",
		Email:         "lea.muller@epfl.ch",
		StudentID:     "123456",
		AgreementText: "J'accepte",
		ReplyTo:       "lea.muller@epfl.ch",
	}
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:     baseURL,
		ServiceID:   "service_travel",
		TemplateID:  "template_signup",
		PublicKey:   "public-key",
		AccessToken: "private-token",
		Timeout:     2 * time.Second,
	}
}

func TestSubmitPostsTemplateParams(t *testing.T) {
	var received map[string]any
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sendPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL+"/"), server.Client())
	require.NoError(t, client.Submit(context.Background(), testPayload()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "service_travel", received["service_id"])
	assert.Equal(t, "template_signup", received["template_id"])
	assert.Equal(t, "public-key", received["user_id"])
	assert.Equal(t, "private-token", received["accessToken"])

	params, ok := received["template_params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Léa", params["firstName"])
	assert.Equal(t, "123456", params["studentId"])
	assert.Equal(t, "lea.muller@epfl.ch", params["replyTo"])
}

func TestSubmitFailsOnNonSuccessStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The template ID is invalid"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())
	err := client.Submit(context.Background(), testPayload())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay status 400")
	assert.Contains(t, err.Error(), "template ID is invalid")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "failed sends must not be retried")
}

func TestSubmitHonoursContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), server.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Submit(ctx, testPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmitWithoutCredentials(t *testing.T) {
	client := NewClient(Config{ServiceID: "service_travel"}, nil)

	assert.False(t, client.Enabled())
	assert.ErrorIs(t, client.Submit(context.Background(), testPayload()), ErrRelayNotConfigured)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{}, nil)

	assert.Equal(t, DefaultBaseURL+sendPath, client.endpoint)
	assert.Equal(t, defaultTimeout, client.config.Timeout)
	assert.Equal(t, defaultTimeout, client.client.Timeout)
}
