// Package vision extracts structured bill data from receipt images by
// calling a vision-language model through the OpenRouter
// chat-completions API.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ahsanmubariz/splitbill/internal/models"
)

const (
	// DefaultModel is the vision model used when none is configured.
	DefaultModel = "qwen/qwen2.5-vl-32b-instruct:free"

	// DefaultURL is the OpenRouter chat-completions endpoint.
	DefaultURL = "https://openrouter.ai/api/v1/chat/completions"
)

var (
	// ErrUpstream means the model API returned a non-2xx status or was
	// unreachable.
	ErrUpstream = errors.New("receipt model upstream failure")

	// ErrEmptyResponse means the model returned no content.
	ErrEmptyResponse = errors.New("receipt model returned an empty response")

	// ErrMalformedResponse means the model's content could not be
	// parsed as bill JSON.
	ErrMalformedResponse = errors.New("receipt model returned malformed data")
)

const prompt = `You are an expert receipt scanner and data extractor for Indonesian receipts.
Analyze the following receipt image and extract all individual items. For each item, identify its name, quantity, and the total price for that line item.
Also, identify any tax (pajak/PPN), service charge (biaya layanan), and the grand total.
Respond with ONLY a valid JSON object following this exact structure, using numbers for prices without any currency symbols or thousands separators:
{
  "items": [{ "name": "Nasi Goreng", "quantity": 2, "price": 50000 }],
  "tax": 5000,
  "service_charge": 2500,
  "total": 57500
}
If a quantity is not explicitly listed for an item, assume the quantity is 1. The 'price' field should always be the total for that line (e.g., quantity * unit price).
If tax or service charge are not found, set their value to 0. Do not include any other text, explanations, or markdown formatting in your response.`

// Models sometimes wrap the JSON in a fenced code block despite the
// prompt; tolerate that.
var fencedJSON = regexp.MustCompile("```(?:json)?\n([\\s\\S]*?)\n```")

// Client calls the vision model. The zero value is not usable; use New.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	url        string
}

// New returns a client authenticated with apiKey. Empty model or url
// fall back to the defaults.
func New(apiKey, model, url string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		url:        url,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends the receipt image to the model and returns the parsed
// bill. The returned bill is normalized (quantities >= 1, amounts
// non-negative) but otherwise exactly what the model read.
func (c *Client) Extract(ctx context.Context, image []byte, mimeType string) (*models.Bill, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("Receipt model request failed",
			"status", resp.StatusCode,
			"body", string(detail),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(chat.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	content := chat.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	bill, err := parseBill(content)
	if err != nil {
		slog.Error("Failed to parse bill from model output", "content", content)
		return nil, err
	}
	return bill, nil
}

// parseBill decodes the model's content into a bill, unwrapping a
// fenced code block if present.
func parseBill(content string) (*models.Bill, error) {
	raw := content
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		raw = m[1]
	}

	var bill models.Bill
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &bill); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(bill.Items) == 0 {
		return nil, fmt.Errorf("%w: no line items", ErrMalformedResponse)
	}
	bill.Normalize()
	return &bill, nil
}
