package news

import "errors"

var (
	ErrNotFound    = errors.New("news: item not found")
	ErrSlugTaken   = errors.New("news: slug already taken")
	ErrInvalidItem = errors.New("news: item needs a title")
)
