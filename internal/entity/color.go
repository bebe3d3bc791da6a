package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
)

type Color string

const (
	Black Color = "black"
	White Color = "white"
)

func (that Color) Opposite() Color {
	if that == Black {
		return White
	}
	return Black
}

func (that Color) Valid() bool {
	return that == Black || that == White
}

func ParseColor(raw string) (Color, error) {
	color := Color(raw)
	if !color.Valid() {
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownColor, raw)
	}
	return color, nil
}
