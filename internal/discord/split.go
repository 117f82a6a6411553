package discord

import (
	"strings"
	"unicode/utf8"
)

// maxMessageLength — лимит длины одного сообщения Discord в символах.
const maxMessageLength = 2000

// splitMessage разбивает текст на части не длиннее maxLen символов,
// предпочитая разрыв по переводу строки, затем по пробелу.
// Многобайтовые символы не разрезаются.
func splitMessage(content string, maxLen int) []string {
	if utf8.RuneCountInString(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	for len(content) > 0 {
		limit := runeOffset(content, maxLen)
		if limit == len(content) {
			chunks = append(chunks, content)
			break
		}
		cut := content[:limit]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			pos = limit
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t\n")
	}
	return chunks
}

// runeOffset возвращает байтовое смещение после n-го символа s
// или len(s), если символов меньше.
func runeOffset(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}
