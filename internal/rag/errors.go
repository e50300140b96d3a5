package rag

import "errors"

var (
	// ErrGeneration signals a failure of the answer generator.
	ErrGeneration = errors.New("answer generation failed")
	// ErrEmptyCorpus signals a corpus source with no documents.
	ErrEmptyCorpus = errors.New("corpus is empty")
)
