package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rewired-gh/marketbrief/internal/logger"
)

// Feishu sends text messages through the Feishu open-platform message API.
type Feishu struct {
	baseURL        string
	token          string
	receiveID      string
	maxRetries     int
	retryDelayBase time.Duration
	httpClient     *http.Client
}

// NewFeishu creates a Feishu client. token is the tenant access token and
// receiveID the target chat ID.
func NewFeishu(baseURL, token, receiveID string, maxRetries int, retryDelayBase time.Duration, timeout time.Duration) (*Feishu, error) {
	if token == "" {
		return nil, fmt.Errorf("feishu token must not be empty")
	}
	if receiveID == "" {
		return nil, fmt.Errorf("feishu receive ID must not be empty")
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Feishu{
		baseURL:        baseURL,
		token:          token,
		receiveID:      receiveID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		httpClient:     &http.Client{Timeout: timeout},
	}, nil
}

type feishuRequest struct {
	ReceiveID string `json:"receive_id"`
	MsgType   string `json:"msg_type"`
	Content   string `json:"content"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send posts the text as a Feishu message with linear-backoff retry. A
// non-zero response code counts as failure.
func (f *Feishu) Send(ctx context.Context, text string) error {
	var lastErr error
	for i := 0; i < f.maxRetries; i++ {
		if i > 0 {
			time.Sleep(f.retryDelayBase * time.Duration(i))
		}
		if err := f.sendOnce(ctx, text); err != nil {
			lastErr = err
			logger.Warn("feishu: attempt %d/%d failed: %v", i+1, f.maxRetries, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d retries: %w", f.maxRetries, lastErr)
}

func (f *Feishu) sendOnce(ctx context.Context, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}
	body, err := json.Marshal(feishuRequest{
		ReceiveID: f.receiveID,
		MsgType:   "text",
		Content:   string(content),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message body: %w", err)
	}

	url := f.baseURL + "/open-apis/im/v1/messages?receive_id_type=chat_id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()

	var parsed feishuResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("unparsable delivery response: %w", err)
	}
	if parsed.Code != 0 {
		return fmt.Errorf("delivery rejected: code %d: %s", parsed.Code, parsed.Msg)
	}
	return nil
}
