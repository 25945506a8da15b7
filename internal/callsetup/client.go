// Package callsetup bridges an outbound phone call to a voice-agent session.
// It creates the session on the voice-AI platform, then asks the telephony
// provider to dial the destination and stream audio to the session.
// Failures are reported as transport errors and never retried: a retried
// call cannot be deduplicated on the voice platform.
package callsetup

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"terminal-voice-backend/config"
	"terminal-voice-backend/internal/errs"
)

// Call identifies a bridged call.
type Call struct {
	JoinURL string `json:"joinUrl"`
	SID     string `json:"sid"`
}

// Client talks to the voice-AI and telephony REST APIs.
type Client struct {
	cfg    config.CallConfig
	client *http.Client
	log    *zap.SugaredLogger
}

func NewClient(cfg config.CallConfig, log *zap.SugaredLogger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// LoadCallConfig reads the voice session definition (system prompt, voice,
// tools) from a YAML or JSON file and returns it as JSON.
func LoadCallConfig(path string) (json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("call config %s is empty", path)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode call config: %w", err)
	}
	return out, nil
}

// CreateCall opens a voice-agent session and returns its join URL.
func (c *Client) CreateCall(ctx context.Context, callConfig json.RawMessage) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.VoiceAPIURL, bytes.NewReader(callConfig))
	if err != nil {
		return "", errs.Internal(err, "build voice call request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.VoiceAPIKey)

	body, err := c.do(req)
	if err != nil {
		return "", errs.Transport(err, "create voice call")
	}

	var resp struct {
		JoinURL string `json:"joinUrl"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errs.Transport(err, "invalid JSON response from voice API")
	}
	if resp.JoinURL == "" {
		return "", errs.Transport(nil, "no joinUrl in voice API response: %s", truncate(body, 200))
	}
	return resp.JoinURL, nil
}

// Dial asks the telephony provider to call to and stream media to streamURL.
// It returns the provider's call identifier.
func (c *Client) Dial(ctx context.Context, to, streamURL string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errs.Validation("destination number is required")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Twiml", streamTwiML(streamURL))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", strings.TrimRight(c.cfg.TelephonyBaseURL, "/"), url.PathEscape(c.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Internal(err, "build dial request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	body, err := c.do(req)
	if err != nil {
		return "", errs.Transport(err, "dial %s", to)
	}

	var resp struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errs.Transport(err, "invalid JSON response from telephony API")
	}
	if resp.SID == "" {
		return "", errs.Transport(nil, "no call sid in telephony response")
	}
	return resp.SID, nil
}

// Setup creates the voice session and bridges a call to it.
func (c *Client) Setup(ctx context.Context, callConfig json.RawMessage, to string) (Call, error) {
	joinURL, err := c.CreateCall(ctx, callConfig)
	if err != nil {
		c.log.Errorw("Voice call creation failed", "error", err)
		return Call{}, err
	}
	c.log.Infow("Voice session created", "joinUrl", joinURL)

	sid, err := c.Dial(ctx, to, joinURL)
	if err != nil {
		c.log.Errorw("Dial failed", "to", to, "error", err)
		return Call{JoinURL: joinURL}, err
	}
	c.log.Infow("Call initiated", "to", to, "sid", sid)
	return Call{JoinURL: joinURL, SID: sid}, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("received status code %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func streamTwiML(streamURL string) string {
	var b strings.Builder
	b.WriteString(`<Response><Connect><Stream url="`)
	_ = xml.EscapeText(&b, []byte(streamURL))
	b.WriteString(`"/></Connect></Response>`)
	return b.String()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
