package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxItems bounds the inputs of one batch call. Every item may run a
// scripting bridge call, which takes a second or more.
const MaxItems = 31

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Result is the outcome for one input.
type Result struct {
	Input  string `json:"input"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates the results of a batch call.
type Report struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// StringList reads a parameter given either as one string or as an array of
// strings. Values are trimmed and duplicates dropped, keeping the first.
func StringList(param any, name string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", name)
	}

	var raw []string
	switch v := param.(type) {
	case string:
		raw = []string{v}
	case []string:
		raw = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}
	if len(out) > MaxItems {
		return nil, fmt.Errorf("%s has %d items, at most %d are allowed", name, len(out), MaxItems)
	}
	return out, nil
}

// Process calls fn for every input in order. Once ctx is done the remaining
// inputs are reported as failed with the context error.
func Process(ctx context.Context, inputs []string, fn func(ctx context.Context, input string) (string, error)) Report {
	r := Report{Results: make([]Result, 0, len(inputs))}

	for _, input := range inputs {
		var (
			out string
			err = ctx.Err()
		)
		if err == nil {
			out, err = fn(ctx, input)
		}
		r.add(input, out, err)
	}
	return r
}

func (r *Report) add(input, output string, err error) {
	r.Total++
	if err != nil {
		r.Failed++
		r.Results = append(r.Results, Result{Input: input, Status: statusError, Error: err.Error()})
		return
	}
	r.Successful++
	r.Results = append(r.Results, Result{Input: input, Status: statusSuccess, Output: output})
}

// JSON returns the indented JSON form of the report.
func (r Report) JSON() string {
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}
