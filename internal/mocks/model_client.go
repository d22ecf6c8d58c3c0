package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrScriptExhausted is returned when a scripted client runs out of
// responses.
var ErrScriptExhausted = errors.New("mock model client: no scripted responses left")

// ScriptedModelClient replays a fixed sequence of responses in order,
// recording each prompt it receives. An entry with a non-nil Err fails
// that call instead of returning text.
type ScriptedModelClient struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	next      int

	// Prompts records every prompt passed to Generate, in call order.
	Prompts []string
}

// ScriptedResponse is one step of a script.
type ScriptedResponse struct {
	Text string
	Err  error
}

// NewScriptedModelClient builds a client replaying the given responses.
func NewScriptedModelClient(responses ...ScriptedResponse) *ScriptedModelClient {
	return &ScriptedModelClient{responses: responses}
}

// Texts is a convenience constructor for scripts of plain successful
// responses.
func Texts(texts ...string) *ScriptedModelClient {
	responses := make([]ScriptedResponse, len(texts))
	for i, text := range texts {
		responses[i] = ScriptedResponse{Text: text}
	}
	return NewScriptedModelClient(responses...)
}

// Generate implements generation.ModelClient.
func (c *ScriptedModelClient) Generate(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Prompts = append(c.Prompts, prompt)

	if c.next >= len(c.responses) {
		return "", ErrScriptExhausted
	}
	response := c.responses[c.next]
	c.next++
	return response.Text, response.Err
}

// Calls returns how many times Generate was invoked.
func (c *ScriptedModelClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}

// PromptContaining reports whether any recorded prompt contains the given
// substring.
func (c *ScriptedModelClient) PromptContaining(substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, prompt := range c.Prompts {
		if strings.Contains(prompt, substr) {
			return true
		}
	}
	return false
}

// StaticModelClient returns the same response for every prompt. Useful for
// "model always says X" properties.
type StaticModelClient struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls int
}

// Generate implements generation.ModelClient.
func (c *StaticModelClient) Generate(context.Context, string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// Calls returns how many times Generate was invoked.
func (c *StaticModelClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// FuncModelClient delegates to a function, for tests that need per-prompt
// behavior.
type FuncModelClient struct {
	Fn func(ctx context.Context, prompt string) (string, error)

	mu    sync.Mutex
	calls int
}

// Generate implements generation.ModelClient.
func (c *FuncModelClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Fn(ctx, prompt)
}

// Calls returns how many times Generate was invoked.
func (c *FuncModelClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
