// Package gemini implements generation.Generator on top of Google's Gemini API
// (google.golang.org/genai).
//
// The generator renders a prompt template around the caller's text, requests a
// JSON response, and converts each returned card into a domain.Card for the
// target deck. Transient API failures are retried with exponential backoff and
// jitter; safety blocks and malformed responses fail immediately.
package gemini
