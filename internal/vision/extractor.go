package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"compliancehq/internal/compliance"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var (
	// ErrExtractorDisabled is returned when no API key was configured.
	ErrExtractorDisabled = errors.New("vision extraction is disabled")

	// ErrDateNotFound is the soft-failure result: the model answered but
	// no usable date came back. The certificate stays in manual follow-up.
	ErrDateNotFound = errors.New("no expiry date found in certificate")
)

const extractPrompt = `This is a photo or scan of an insurance certificate.
Find the policy expiry date (the date the insurance coverage ends).

Reply with ONLY the date in YYYY-MM-DD format, nothing else.
If you cannot find an expiry date, reply with exactly NOT_FOUND.`

// Extractor asks a vision model for the expiry date printed on an
// uploaded certificate image. A nil client means the feature is off.
type Extractor struct {
	client *openai.Client
}

// NewExtractor creates the extractor. Pass an empty apiKey to disable calls.
func NewExtractor(apiKey string) *Extractor {
	if apiKey == "" {
		return &Extractor{client: nil}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &Extractor{client: &c}
}

// Enabled reports whether a model is configured.
func (e *Extractor) Enabled() bool {
	return e.client != nil
}

// ExtractExpiryDate sends the certificate image to the model and parses
// the free-text reply. The reply carries no schema guarantee, so it is
// validated by real date parsing before anything is trusted.
func (e *Extractor) ExtractExpiryDate(ctx context.Context, image []byte, mimeType string) (time.Time, error) {
	if e.client == nil {
		return time.Time{}, ErrExtractorDisabled
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	b64 := base64.StdEncoding.EncodeToString(image)

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(extractPrompt),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    fmt.Sprintf("data:%s;base64,%s", mimeType, b64),
							Detail: "low",
						}),
					},
				},
			},
		}},
	}

	resp, err := e.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return time.Time{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return time.Time{}, fmt.Errorf("openai: empty response")
	}

	return parseReply(resp.Choices[0].Message.Content)
}

// parseReply validates the model's free-text answer. Anything that does
// not parse as a real calendar date is treated as not found.
func parseReply(raw string) (time.Time, error) {
	reply := strings.TrimSpace(raw)
	reply = strings.Trim(reply, "`\"'.")
	reply = strings.TrimSpace(reply)

	if reply == "" || strings.Contains(strings.ToUpper(reply), "NOT_FOUND") {
		return time.Time{}, ErrDateNotFound
	}

	parsed, ok := compliance.ParseDate(reply)
	if !ok {
		return time.Time{}, ErrDateNotFound
	}

	return parsed, nil
}
