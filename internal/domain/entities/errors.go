package entities

import "errors"

// Validation errors
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidInterval = errors.New("segment end time before start time")
)

// Lookup errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAudioNotFound = errors.New("audio not found")
	ErrJobNotFound   = errors.New("transcription job not found")
)
