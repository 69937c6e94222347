package domain

import "errors"

var (
	ErrIntentRequired       = errors.New("intent name is required")
	ErrPhraseRequired       = errors.New("trigger phrase is required")
	ErrReviewNotFound       = errors.New("review entry not found")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
