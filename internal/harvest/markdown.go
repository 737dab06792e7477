package harvest

import (
	"regexp"
	"strings"
)

// The cleaning order matters: code blocks before inline code, images before
// links, emphasis pairs before stray asterisks.
var (
	reCodeBlock   = regexp.MustCompile("```[\\s\\S]*?```")
	reInlineCode  = regexp.MustCompile("`[^`]+`")
	reImage       = regexp.MustCompile(`!\[[^\]]*\]\([^\)]+\)`)
	reLink        = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	reEmptyBrack  = regexp.MustCompile(`\[\s*\]`)
	reBrackets    = regexp.MustCompile(`[\[\]]`)
	reBraceGroup  = regexp.MustCompile(`\{[^\}]*\}`)
	reBraces      = regexp.MustCompile(`[{}]`)
	reDoubleQuote = regexp.MustCompile(`"{2,}`)
	reBangs       = regexp.MustCompile(`!+`)
	reHeader      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBoldStar    = regexp.MustCompile(`\*\*([^\*]+)\*\*`)
	reBoldUnder   = regexp.MustCompile(`__([^_]+)__`)
	reItalicStar  = regexp.MustCompile(`\*([^\*]+)\*`)
	reItalicUnder = regexp.MustCompile(`_([^_]+)_`)
	reStars       = regexp.MustCompile(`\*+`)
	reBullet      = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	reNumBullet   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	reHRule       = regexp.MustCompile(`(?m)^[-*_]{3,}$`)
	reHTMLTag     = regexp.MustCompile(`<[^>]+>`)
	reBlockquote  = regexp.MustCompile(`(?m)^>\s*`)
	reTildeTick   = regexp.MustCompile("[~`]")
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// CleanMarkdown strips Markdown and HTML syntax down to plain prose and caps
// the result at maxChars runes, cutting at a word boundary.
func CleanMarkdown(text string, maxChars int) string {
	if text == "" {
		return ""
	}

	text = reCodeBlock.ReplaceAllString(text, "")
	text = reInlineCode.ReplaceAllString(text, "")

	// Images before links so ![alt](url) does not survive as a link.
	text = reImage.ReplaceAllString(text, "")
	text = reLink.ReplaceAllString(text, "$1")
	text = reEmptyBrack.ReplaceAllString(text, "")
	text = reBrackets.ReplaceAllString(text, "")

	text = reBraceGroup.ReplaceAllString(text, "")
	text = reBraces.ReplaceAllString(text, "")
	text = reDoubleQuote.ReplaceAllString(text, `"`)
	text = reBangs.ReplaceAllString(text, "")

	text = reHeader.ReplaceAllString(text, "")
	text = reBoldStar.ReplaceAllString(text, "$1")
	text = reBoldUnder.ReplaceAllString(text, "$1")
	text = reItalicStar.ReplaceAllString(text, "$1")
	text = reItalicUnder.ReplaceAllString(text, "$1")
	text = reStars.ReplaceAllString(text, "")

	text = reBullet.ReplaceAllString(text, "")
	text = reNumBullet.ReplaceAllString(text, "")
	text = reHRule.ReplaceAllString(text, "")

	text = reHTMLTag.ReplaceAllString(text, "")
	text = reBlockquote.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, ">", "")
	text = reTildeTick.ReplaceAllString(text, "")

	text = reWhitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	return truncateAtWord(text, maxChars)
}

// truncateAtWord cuts at maxChars runes, backing up to the previous space so
// no word is split, and appends an ellipsis.
func truncateAtWord(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := string(runes[:maxChars])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
