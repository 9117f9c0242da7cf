package domain

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultStationMarker is the substring every hourly02 station file name contains.
const DefaultStationMarker = "CRNH"

// PlainText strips markup from an HTML document and returns the concatenated
// text content. Adjacent text nodes are joined without a separator, and the
// contents of script and style elements are skipped. Plain text input passes
// through with entities decoded.
func PlainText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var sb strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the text so far is the result.
			return sb.String()
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// ExtractStationFiles returns the station file names listed on a year's
// directory page, in page order. Every ".txt"-delimited fragment of the page
// text is a candidate; fragments containing marker are kept and get their
// ".txt" suffix back. Duplicates are kept. A page without matches yields an
// empty slice.
func ExtractStationFiles(page, marker string) []string {
	if marker == "" {
		marker = DefaultStationMarker
	}
	var chunks []string
	for _, line := range strings.Split(PlainText(page), "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), stationFileSuffix) {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}

	files := make([]string, 0)
	for _, token := range strings.Fields(strings.Join(chunks, " ")) {
		if strings.Contains(token, marker) {
			files = append(files, token+stationFileSuffix)
		}
	}
	return files
}
