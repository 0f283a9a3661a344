// Package mailrelay sends registration payloads to an EmailJS-compatible
// transactional email API.
package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terraincognita07/travelgc/internal/services"
)

const (
	DefaultBaseURL = "https://api.emailjs.com"
	sendPath       = "/api/v1.0/email/send"
	defaultTimeout = 15 * time.Second
)

var ErrRelayNotConfigured = errors.New("email relay is not configured")

type Config struct {
	BaseURL     string
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string
	Timeout     time.Duration
}

func (config Config) Enabled() bool {
	return strings.TrimSpace(config.ServiceID) != "" &&
		strings.TrimSpace(config.TemplateID) != "" &&
		strings.TrimSpace(config.PublicKey) != ""
}

type Client struct {
	config   Config
	endpoint string
	client   *http.Client
}

func NewClient(config Config, httpClient *http.Client) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Client{
		config:   config,
		endpoint: baseURL + sendPath,
		client:   httpClient,
	}
}

func (client *Client) Enabled() bool {
	return client.config.Enabled()
}

type sendRequest struct {
	ServiceID      string                       `json:"service_id"`
	TemplateID     string                       `json:"template_id"`
	UserID         string                       `json:"user_id"`
	AccessToken    string                       `json:"accessToken,omitempty"`
	TemplateParams services.RegistrationPayload `json:"template_params"`
}

// Submit issues exactly one send request. Any non-2xx answer is a failure;
// the response body is only used to build the error.
func (client *Client) Submit(ctx context.Context, payload services.RegistrationPayload) error {
	if !client.Enabled() {
		return ErrRelayNotConfigured
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      client.config.ServiceID,
		TemplateID:     client.config.TemplateID,
		UserID:         client.config.PublicKey,
		AccessToken:    client.config.AccessToken,
		TemplateParams: payload,
	})
	if err != nil {
		return fmt.Errorf("encode relay request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, client.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("relay status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}
