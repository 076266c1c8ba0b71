package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSongNotFound         = errors.New("song not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrAlreadyClaimed       = errors.New("initial songs already claimed")
	ErrSongAlreadyOwned     = errors.New("song already owned")
	ErrSongNotOwned         = errors.New("deck may only contain owned songs")
	ErrDeckNotFound         = errors.New("deck not found")
	ErrInternalServer       = errors.New("internal server error")
)
