package chathub

import "errors"

var (
	// ErrPrerequisiteMissing rejects a match attempt from a user who has
	// not completed the compatibility questionnaire.
	ErrPrerequisiteMissing = errors.New("chathub: questionnaire not completed")

	// ErrEmptyMessage rejects a text message with no content.
	ErrEmptyMessage = errors.New("chathub: empty message")

	// ErrMalformedPayload means a media envelope could not be decoded
	// (missing data-URI separator or invalid base64).
	ErrMalformedPayload = errors.New("chathub: malformed media payload")

	// ErrMediaIngest means the decoded blob could not be written to the
	// store within the deadline.
	ErrMediaIngest = errors.New("chathub: media ingest failed")
)
