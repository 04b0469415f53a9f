package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"textsummarizer/internal/domain"
)

var errLengthUsage = errors.New("usage: /length <min> <max>")

type lengthBounds struct {
	min int
	max int
}

func defaultLengthBounds() lengthBounds {
	return lengthBounds{min: domain.DefaultMinLength, max: domain.DefaultMaxLength}
}

// lengthSettings keeps per-chat summary bounds for the life of the process.
type lengthSettings struct {
	mu     sync.RWMutex
	byChat map[int64]lengthBounds
}

func newLengthSettings() *lengthSettings {
	return &lengthSettings{byChat: make(map[int64]lengthBounds)}
}

func (s *lengthSettings) get(chatID int64) lengthBounds {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if bounds, ok := s.byChat[chatID]; ok {
		return bounds
	}

	return defaultLengthBounds()
}

func (s *lengthSettings) set(chatID int64, bounds lengthBounds) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byChat[chatID] = bounds
}

func (s *lengthSettings) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byChat, chatID)
}

// parseLengthArgs parses "<min> <max>" and validates the pair with the same
// rules the API applies.
func parseLengthArgs(args string) (lengthBounds, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return lengthBounds{}, errLengthUsage
	}

	minLength, err := strconv.Atoi(fields[0])
	if err != nil {
		return lengthBounds{}, fmt.Errorf("parse min: %w", errLengthUsage)
	}

	maxLength, err := strconv.Atoi(fields[1])
	if err != nil {
		return lengthBounds{}, fmt.Errorf("parse max: %w", errLengthUsage)
	}

	if err = domain.ValidateLengths(minLength, maxLength); err != nil {
		return lengthBounds{}, err
	}

	return lengthBounds{min: minLength, max: maxLength}, nil
}
