package ai

import (
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates prompt size for the ai_tokens_in metric.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc atomic.Pointer[tiktoken.Tiktoken]
}

// NewTokenCounter loads the BPE ranks for model in the background. Until
// they are available, or if loading fails, Count falls back to a rough
// character based estimate.
func NewTokenCounter(model string) TokenCounter {
	c := &tiktokenCounter{}
	go func() {
		enc, err := tiktoken.EncodingForModel(model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err == nil {
			c.enc.Store(enc)
		}
	}()
	return c
}

func (c *tiktokenCounter) Count(text string) int {
	if enc := c.enc.Load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return roughTokens(text)
}

func roughTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

func countTokens(c TokenCounter, text string) int {
	if c == nil {
		return roughTokens(text)
	}
	return c.Count(text)
}
