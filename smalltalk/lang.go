// Package smalltalk handles the conversational pleasantries that should never
// reach the retrieval pipeline: language guessing and canned replies for
// greetings, thanks and similar non-questions.
package smalltalk

import (
	"strings"
	"unicode"
)

// Lang is one of the three languages the assistant speaks.
type Lang string

const (
	LangUZ Lang = "uz"
	LangRU Lang = "ru"
	LangEN Lang = "en"
)

var englishMarkers = map[string]struct{}{
	"the": {}, "is": {}, "are": {}, "what": {}, "how": {}, "why": {},
	"when": {}, "where": {}, "can": {}, "do": {}, "does": {}, "my": {},
	"hello": {}, "hi": {}, "hey": {}, "please": {}, "thanks": {},
	"thank": {}, "you": {}, "goodbye": {}, "bye": {}, "and": {}, "to": {},
	"of": {}, "in": {}, "for": {}, "should": {}, "would": {}, "i": {},
}

// DetectLang guesses the language of a message. Cyrillic script means
// Russian; Latin script with recognizable English function words means
// English; everything else, including undecidable input, defaults to Uzbek,
// the assistant's primary audience.
func DetectLang(text string) Lang {
	var cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	if cyrillic > latin {
		return LangRU
	}
	if latin == 0 {
		return LangUZ
	}

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'\"()")
		if _, ok := englishMarkers[token]; ok {
			return LangEN
		}
	}
	return LangUZ
}
