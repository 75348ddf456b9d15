package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs hooks with a per-invocation timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates a new Executor with the specified timeout in milliseconds.
func NewExecutor(timeoutMs int) *Executor {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &Executor{
		timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

// Timeout returns the per-invocation timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs a hook with req on stdin and parses stdout as a Response.
// The hook's manifest config is attached to the request, and the image is
// dropped unless the hook asked for it.
func (e *Executor) Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	hookReq := *req
	hookReq.Config = plugin.Manifest.Config
	if !plugin.Manifest.WantsImage {
		hookReq.Image = nil
	}

	reqJSON, err := json.Marshal(&hookReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(reqJSON)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("hook %s timed out after %v", plugin.Manifest.Name, e.timeout)
	}

	if err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("hook %s failed: %w, stderr: %s", plugin.Manifest.Name, err, stderr.String())
		}
		return nil, fmt.Errorf("hook %s failed: %w", plugin.Manifest.Name, err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse hook response: %w, stdout: %s", err, stdout.String())
	}

	return &response, nil
}

// Result is the outcome of one hook invocation.
type Result struct {
	Hook     string
	Response *Response
	Err      error
	Duration time.Duration
}

// OK reports whether the hook ran and reported success.
func (r Result) OK() bool {
	return r.Err == nil && r.Response != nil && r.Response.Success
}

// Message is the error text of a failed run, if any.
func (r Result) Message() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Response != nil {
		return r.Response.Error
	}
	return ""
}

// RunAll executes each hook in order and collects the results.
func (e *Executor) RunAll(ctx context.Context, plugins []*Plugin, req *Request) []Result {
	results := make([]Result, 0, len(plugins))
	for _, p := range plugins {
		start := time.Now()
		resp, err := e.Execute(ctx, p, req)
		results = append(results, Result{
			Hook:     p.Manifest.Name,
			Response: resp,
			Err:      err,
			Duration: time.Since(start),
		})
	}
	return results
}
