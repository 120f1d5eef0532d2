package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teemow/quickcal/internal/event"
)

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result for a single user in a batch
type Result struct {
	User    string `json:"user"`
	Status  string `json:"status"` // "success" or "error"
	EventID string `json:"event_id,omitempty"`
	Link    string `json:"link,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray parses a parameter that can be a single string, an array
// of strings, or a JSON-encoded array of strings.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				if len(arr) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				return arr, nil
			}
		}
		result = []string{v}
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = append(result, v...)
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// FromOutcomes converts dispatch outcomes into results. explain renders
// failures; nil uses the error text.
func FromOutcomes(outcomes []event.Outcome, explain func(error) string) []Result {
	results := make([]Result, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			results = append(results, NewSuccessResult(o.Created))
			continue
		}
		results = append(results, NewErrorResult(o.User, o.Err, explain))
	}
	return results
}

// Summarize counts the successes and failures of results.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// NewSuccessResult creates a success result
func NewSuccessResult(c *event.Created) Result {
	return Result{
		User:    c.User,
		Status:  StatusSuccess,
		EventID: c.EventID,
		Link:    c.Link,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(user string, err error, explain func(error) string) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		if explain != nil {
			msg = explain(err)
		}
	}
	return Result{
		User:   user,
		Status: StatusError,
		Error:  msg,
	}
}
