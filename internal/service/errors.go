package service

import "errors"

var (
	// ErrMissingField is returned when a required form field is blank.
	ErrMissingField = errors.New("required field is missing")
	// ErrPasswordMismatch indicates password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrNoToken is returned when login succeeds without a token.
	ErrNoToken = errors.New("login response carries no token")
	// ErrUserDetails is returned when the profile after login is unusable.
	ErrUserDetails = errors.New("failed to retrieve user details")
	// ErrThumbnailTooLarge is returned for thumbnails above MaxThumbnailBytes.
	ErrThumbnailTooLarge = errors.New("thumbnail exceeds 3MB")
	// ErrThumbnailType is returned for thumbnails that are not JPEG, PNG or GIF.
	ErrThumbnailType = errors.New("thumbnail must be a JPEG, PNG or GIF image")
)

var (
	// ErrInvalidSort is returned for a sort key the listing does not support.
	ErrInvalidSort = errors.New("sort must be likes or comments")
	// ErrInvalidFilter is returned for an unknown search filter.
	ErrInvalidFilter = errors.New("filter must be all, username, judul or content")
)
