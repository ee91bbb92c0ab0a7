package testutils

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator is a test text generator scripted by prompt substring.
type MockGenerator struct {
	// Responses maps a prompt substring to the canned response. The first
	// matching entry in Order wins; unmatched prompts get Default.
	Responses map[string]string
	Order     []string

	// Default is returned when no scripted response matches.
	Default string

	// FailOn causes Generate to fail when the prompt contains it.
	FailOn string

	// Prompts records every prompt received, in order.
	Prompts []string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Responses: make(map[string]string),
		Default:   "ok",
	}
}

// Respond scripts a response for prompts containing the given substring.
func (m *MockGenerator) Respond(substring, response string) {
	if _, ok := m.Responses[substring]; !ok {
		m.Order = append(m.Order, substring)
	}
	m.Responses[substring] = response
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.FailOn != "" && strings.Contains(prompt, m.FailOn) {
		return "", fmt.Errorf("mock generation failure")
	}

	for _, substring := range m.Order {
		if strings.Contains(prompt, substring) {
			return m.Responses[substring], nil
		}
	}

	return m.Default, nil
}

func (m *MockGenerator) Close() error {
	return nil
}
