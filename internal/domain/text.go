package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTextLength is the shortest assembled text, in characters, worth
// classifying.
const MinTextLength = 20

// TitleLength bounds titles derived from the text itself.
const TitleLength = 100

// ContentTypeLabel renders a content type the way ReliefWeb sources are
// labelled when no source name is given: "reports" becomes "Reports".
func ContentTypeLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(contentType)
	return string(unicode.ToUpper(r)) + strings.ToLower(contentType[size:])
}

// AssembleText builds the classifier input from a document: "{title}. {body}"
// (or either part alone), prefixed with "Source: {source}. " when the source
// is known and is not just the content-type label.
func AssembleText(doc RawDocument) string {
	title := strings.TrimSpace(doc.Title)
	body := strings.TrimSpace(doc.Body)

	var text string
	switch {
	case title != "" && body != "":
		text = title + ". " + body
	case title != "":
		text = title
	default:
		text = body
	}
	if text == "" {
		return ""
	}

	source := strings.TrimSpace(doc.SourceName)
	if source != "" && source != ContentTypeLabel(doc.ContentType) {
		text = "Source: " + source + ". " + text
	}
	return text
}

// IsRelevant reports whether text is long enough to classify.
func IsRelevant(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTextLength
}

// DeriveTitle returns the first TitleLength characters of text followed by
// "..." when text is longer, or text itself otherwise.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= TitleLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:TitleLength])) + "..."
}
