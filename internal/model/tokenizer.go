package model

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE vocabulary used to measure chunk budgets.
const DefaultEncoding = "cl100k_base"

type Tiktoken struct {
	encoding *tiktoken.Tiktoken
}

func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding (name = %s): %w", encoding, err)
	}

	return &Tiktoken{encoding: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(ids []int) string {
	return t.encoding.Decode(ids)
}

// TiktokenFactory defers encoding construction to Adapter.Load.
func TiktokenFactory(encoding string) func() (Tokenizer, error) {
	return func() (Tokenizer, error) {
		t, err := NewTiktoken(encoding)
		if err != nil {
			return nil, err
		}

		return t, nil
	}
}
