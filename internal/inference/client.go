package inference

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

	"go.uber.org/zap"

	"github.com/pixelmuse/imagen_go_server/config"
)

var ErrMissingAPIKey = errors.New("inference api key is not configured")

// Request 一次生成调用。ImageURL 非空时走图生图（多模态消息附带输入图）。
type Request struct {
	Model    string
	Prompt   string
	ImageURL string
}

// Result 生成结果。上游响应合法但不含图片时 ImageURL 为空，由调用方判定失败。
type Result struct {
	ImageURL string
	Text     string
}

// Client OpenRouter 协议的 chat/completions 客户端，
// 请求 modalities 带 image，图片以 message.images 返回
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg config.InferenceConfig, log *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (c *Client) Generate(ctx context.Context, req *Request) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var content any = req.Prompt
	if req.ImageURL != "" {
		content = []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageURL}},
		}
	}

	payload := map[string]any{
		"model": req.Model,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
		"modalities": []string{"image", "text"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	fullURL := c.baseURL + "/chat/completions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post inference: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		c.log.Error("inference request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("model", req.Model),
			zap.String("body", truncateBody(rawBody)))
		return nil, fmt.Errorf("inference error: status=%d body=%s", resp.StatusCode, truncateBody(rawBody))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
				Images  []struct {
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"images"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(rawBody, &completion); err != nil {
		return nil, fmt.Errorf("decode completion: %w (body=%s)", err, truncateBody(rawBody))
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response (body=%s)", truncateBody(rawBody))
	}

	msg := completion.Choices[0].Message

	result := &Result{}
	if len(msg.Images) > 0 {
		result.ImageURL = msg.Images[0].ImageURL.URL
	} else if len(msg.Content) > 0 {
		// 模型没出图只回了文字，留给调用方按无图失败处理
		var text string
		if err := json.Unmarshal(msg.Content, &text); err == nil {
			result.Text = text
		}
		c.log.Info("no images in completion", zap.String("model", req.Model), zap.String("content", truncate(result.Text, 200)))
	}

	return result, nil
}

func truncateBody(body []byte) string {
	return truncate(string(body), 500)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
