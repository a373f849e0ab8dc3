// services/errors.go
package services

import "errors"

var (
	ErrBonusNotReady           = errors.New("daily bonus already claimed in the last 24 hours")
	ErrInvalidBet              = errors.New("bet amount out of range")
	ErrGameNotFound            = errors.New("game not found")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique room code")
)
