package model

import (
	"strings"
	"unicode/utf8"
)

// MaskRune is the character used to hide secret content.
const MaskRune = '•'

// Mask returns one MaskRune per character of s, revealing only its length.
func Mask(s string) string {
	return strings.Repeat(string(MaskRune), utf8.RuneCountInString(s))
}
