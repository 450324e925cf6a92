package ocr

import "errors"

// ErrNoText is returned when the engine recognizes no characters.
var ErrNoText = errors.New("no text recognized")

// ErrNoAmount is returned when no candidate carries a usable amount.
var ErrNoAmount = errors.New("no amount detected")
