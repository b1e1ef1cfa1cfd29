package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrExecutionFailed is returned when the execution service rejects the
// request or reports an internal failure.
var ErrExecutionFailed = errors.New("execution failed")

// Client talks to a Piston-compatible code execution service. The
// service enforces its own run timeout; this client only bounds the
// HTTP round trip.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// Result is the outcome of one execution.
type Result struct {
	Stdout   string
	Stderr   string
	Output   string
	ExitCode int
}

// New creates an execution client for the given base URL
// (e.g. https://emkc.org/api/v2/piston).
func New(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

type executeRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
	Stdin    string        `json:"stdin,omitempty"`
}

type executeFile struct {
	Content string `json:"content"`
}

type executeResponse struct {
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Output string `json:"output"`
		Code   int    `json:"code"`
	} `json:"run"`
	Message string `json:"message,omitempty"`
}

// Execute runs the source text remotely and returns its output.
func (c *Client) Execute(ctx context.Context, language, source, stdin string) (*Result, error) {
	body, err := json.Marshal(executeRequest{
		Language: language,
		Version:  "*",
		Files:    []executeFile{{Content: source}},
		Stdin:    stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call execution service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read execute response: %w", err)
	}

	var out executeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode execute response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("message", out.Message).Msg("execution service error")
		if out.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrExecutionFailed, out.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrExecutionFailed, resp.StatusCode)
	}

	return &Result{
		Stdout:   out.Run.Stdout,
		Stderr:   out.Run.Stderr,
		Output:   out.Run.Output,
		ExitCode: out.Run.Code,
	}, nil
}
