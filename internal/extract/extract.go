// Package extract produces cleaned plain text and keyword summaries from raw
// help-document markup.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hoteleiro/concierge/pkg/utils"
)

// Pre-compiled regular expressions for markup stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	numericEntity = regexp.MustCompile(`&#(\d+);`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// namedEntities is the fixed entity set the portal documents use.
var namedEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&quot;", `"`,
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
)

// Extractor strips markup from raw documents and caps the result length.
type Extractor struct {
	maxChars int
}

// NewExtractor returns an extractor that caps extracted text at maxChars.
func NewExtractor(maxChars int) *Extractor {
	return &Extractor{maxChars: maxChars}
}

// Text converts raw markup to cleaned plain text: script/style blocks and tags
// removed, entities decoded, whitespace collapsed, single-character tokens
// dropped, result capped at maxChars with an ellipsis marker. Fails soft: any
// internal panic yields an empty string instead of propagating.
func (e *Extractor) Text(raw string) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	s := scriptTag.ReplaceAllString(raw, " ")
	s = styleTag.ReplaceAllString(s, " ")
	s = allTags.ReplaceAllString(s, " ")

	s = namedEntities.Replace(s)
	s = numericEntity.ReplaceAllStringFunc(s, func(ent string) string {
		code, err := strconv.Atoi(ent[2 : len(ent)-1])
		if err != nil || code < 0 || !utf8.ValidRune(rune(code)) {
			return ""
		}
		return string(rune(code))
	})

	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))

	// Single characters left over from stripped markup are noise.
	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) > 1 {
			kept = append(kept, tok)
		}
	}

	return utils.Truncate(strings.Join(kept, " "), e.maxChars)
}
