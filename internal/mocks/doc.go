// Package mocks provides test doubles shared across packages, most notably
// a scripted model client that replays canned responses without touching
// the Gemini API.
package mocks
