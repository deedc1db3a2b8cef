package classifier

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// FallbackFolder is where mails land when the model response could not be
// understood.
const FallbackFolder = "Unclassified"

const parseFailureReason = "parse failure"

var (
	// flatObjectPattern matches the first JSON object substring with no
	// nested braces. Model responses often wrap the object in prose or
	// markdown fences; this digs it out.
	flatObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)

	// arrayPattern greedily matches from the first '[' to the last ']',
	// so nested objects inside the batch array are covered.
	arrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)
)

func fallbackResult() Result {
	return Result{
		FolderPath:  FallbackFolder,
		IsNewFolder: false,
		Confidence:  0.0,
		Reason:      parseFailureReason,
	}
}

// ParseSingle extracts one classification from raw model output. It is
// total: any malformation degrades to the fixed fallback result instead of
// an error.
func ParseSingle(raw string) Result {
	match := flatObjectPattern.FindString(raw)
	if match == "" {
		log.Warnf("No JSON object found in model response")
		return fallbackResult()
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(match), &fields); err != nil {
		log.Warnf("Failed to parse model response: %v", err)
		return fallbackResult()
	}

	result, ok := resultFromFields(fields)
	if !ok {
		log.Warnf("Model response contained a non-coercible confidence value")
		return fallbackResult()
	}
	return result
}

// ParseBatch extracts a batch of classifications from raw model output. On
// any malformation it returns one fallback result per input mail, tagged
// with that mail's id. The success path returns exactly what the model
// produced, which may cover fewer mails than the input.
func ParseBatch(raw string, mails []Mail) []BatchResult {
	match := arrayPattern.FindString(raw)
	if match == "" {
		log.Warnf("No JSON array found in batch model response")
		return fallbackBatch(mails)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		log.Warnf("Failed to parse batch model response: %v", err)
		return fallbackBatch(mails)
	}

	results := make([]BatchResult, 0, len(items))
	for _, item := range items {
		result, ok := resultFromFields(item)
		if !ok {
			log.Warnf("Batch model response contained a non-coercible confidence value")
			return fallbackBatch(mails)
		}
		results = append(results, BatchResult{
			Result: result,
			MailID: mailIDFromField(item["mail_id"]),
		})
	}
	return results
}

func fallbackBatch(mails []Mail) []BatchResult {
	results := make([]BatchResult, len(mails))
	for i, mail := range mails {
		results[i] = BatchResult{Result: fallbackResult(), MailID: mail.ID}
	}
	return results
}

// resultFromFields applies per-field defaults. The second return is false
// only when a present confidence value cannot be coerced to a float, which
// invalidates the whole element.
func resultFromFields(fields map[string]any) (Result, bool) {
	result := Result{
		FolderPath: FallbackFolder,
		Confidence: 0.5,
	}

	if v, ok := fields["folder_path"].(string); ok {
		result.FolderPath = v
	}
	if v, ok := fields["is_new_folder"].(bool); ok {
		result.IsNewFolder = v
	}
	if v, present := fields["confidence"]; present {
		confidence, ok := coerceFloat(v)
		if !ok {
			return Result{}, false
		}
		result.Confidence = confidence
	}
	if v, ok := fields["reason"].(string); ok {
		result.Reason = v
	}
	return result, true
}

func coerceFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return f, err == nil
	case bool:
		if value {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// mailIDFromField normalizes the model's mail_id, which some models emit as
// a bare number. Absent ids stay empty; no substitution happens here.
func mailIDFromField(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}
