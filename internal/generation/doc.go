// Package generation defines the boundary between deck management and external
// LLM services that turn free text into flashcards. The Gemini adapter lives in
// internal/platform/gemini.
package generation
