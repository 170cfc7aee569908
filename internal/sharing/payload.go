// Package sharing implements the embedded payload convention used to carry a
// completed evaluation form inside an ordinary chat message. The wire format
// is a fixed sentinel line followed by a JSON object whose answers and
// questions fields are themselves stringified JSON objects. The double
// encoding is the established convention for already-delivered messages and
// must be preserved byte-exactly.
package sharing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/physiotrack/evalform-service/internal/models"
)

// Sentinel marks a message body as carrying a shared evaluation form rather
// than plain text. Detection is a prefix match on the raw message content.
const Sentinel = "[EVALUATION_FORM]"

// ErrNotSharedPayload is returned when Decode is handed content without the
// sentinel prefix.
var ErrNotSharedPayload = errors.New("content does not carry a shared form payload")

// ErrMalformedPayload is returned when sentinel-prefixed content fails strict
// deserialization: unparseable JSON or a missing required field.
var ErrMalformedPayload = errors.New("malformed shared form payload")

// Payload is the decoded form of a shared response. Answers and Questions are
// keyed by the same question identifiers; Questions may be empty when the
// originating form no longer existed at share time.
type Payload struct {
	ResponseID    string
	FormID        string
	FormTitle     string
	Score         int
	MaxScore      int
	DateCompleted time.Time
	Notes         string
	Answers       map[string]string
	Questions     map[string]string
}

// wirePayload is the outer JSON object as it travels inside message content.
// DateCompleted is epoch milliseconds serialized as a string; Answers and
// Questions are nested stringified JSON objects, not nested objects.
type wirePayload struct {
	ID            string `json:"id"`
	FormID        string `json:"formId"`
	FormTitle     string `json:"formTitle"`
	Score         int    `json:"score"`
	MaxScore      int    `json:"maxScore"`
	DateCompleted string `json:"dateCompleted"`
	Notes         string `json:"notes"`
	Answers       string `json:"answers"`
	Questions     string `json:"questions"`
}

// Encode serializes a stored response plus a question-id to prompt-text map
// into the sentinel-prefixed message body. An empty prompt map is legal and
// encodes as "{}"; the share proceeds with degraded display.
func Encode(response *models.FormResponse, prompts map[string]string) (string, error) {
	if response == nil {
		return "", fmt.Errorf("%w: nil response", ErrMalformedPayload)
	}
	if prompts == nil {
		prompts = map[string]string{}
	}

	answersJSON, err := json.Marshal(response.AnswerMap())
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	questionsJSON, err := json.Marshal(prompts)
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}

	wire := wirePayload{
		ID:            response.ID,
		FormID:        response.FormID,
		FormTitle:     response.FormTitle,
		Score:         response.Score,
		MaxScore:      response.MaxScore,
		DateCompleted: strconv.FormatInt(response.DateCompleted.UnixMilli(), 10),
		Notes:         response.Notes,
		Answers:       string(answersJSON),
		Questions:     string(questionsJSON),
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	return Sentinel + "\n" + string(body), nil
}

// Detect reports whether message content carries a shared form payload.
func Detect(content string) bool {
	return strings.HasPrefix(content, Sentinel)
}

// Decode parses sentinel-prefixed content back into a Payload. Decoding is
// strict: a missing response or form identifier, an unparseable timestamp, or
// invalid nested JSON all fail with ErrMalformedPayload. Empty notes and an
// empty question map are permitted defaults.
func Decode(content string) (*Payload, error) {
	if !Detect(content) {
		return nil, ErrNotSharedPayload
	}

	body := strings.TrimPrefix(content, Sentinel)
	body = strings.TrimPrefix(body, "\n")

	var wire wirePayload
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if wire.ID == "" {
		return nil, fmt.Errorf("%w: missing response id", ErrMalformedPayload)
	}
	if wire.FormID == "" {
		return nil, fmt.Errorf("%w: missing form id", ErrMalformedPayload)
	}

	millis, err := strconv.ParseInt(wire.DateCompleted, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid dateCompleted %q", ErrMalformedPayload, wire.DateCompleted)
	}

	answers, err := decodeNestedMap(wire.Answers)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid answers: %v", ErrMalformedPayload, err)
	}
	questions, err := decodeNestedMap(wire.Questions)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid questions: %v", ErrMalformedPayload, err)
	}

	return &Payload{
		ResponseID:    wire.ID,
		FormID:        wire.FormID,
		FormTitle:     wire.FormTitle,
		Score:         wire.Score,
		MaxScore:      wire.MaxScore,
		DateCompleted: time.UnixMilli(millis),
		Notes:         wire.Notes,
		Answers:       answers,
		Questions:     questions,
	}, nil
}

func decodeNestedMap(raw string) (map[string]string, error) {
	if raw == "" {
		return map[string]string{}, nil
	}
	m := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}
