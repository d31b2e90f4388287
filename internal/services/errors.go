package services

import "errors"

var (
	ErrNotAuthor          = errors.New("only the author can do that")
	ErrOwnPost            = errors.New("you cannot favorite your own post")
	ErrInvalidParent      = errors.New("reply target does not belong to this post")
	ErrEmptyContent       = errors.New("content is required")
	ErrTitleRequired      = errors.New("title is required")
	ErrNotContact         = errors.New("no conversation with this user")
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrPasswordMismatch   = errors.New("the two password fields didn't match")
	ErrPasswordTooShort   = errors.New("password must contain at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("invalid input")
)
