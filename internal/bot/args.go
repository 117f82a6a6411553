package bot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errMissingLink = errors.New("message link is required")
	errInvalidBool = errors.New("invalid boolean value")
)

var (
	trueTokens  = map[string]struct{}{"true": {}, "t": {}, "yes": {}, "y": {}, "1": {}, "on": {}, "enable": {}}
	falseTokens = map[string]struct{}{"false": {}, "f": {}, "no": {}, "n": {}, "0": {}, "off": {}, "disable": {}}
)

// parseBool разбирает булев аргумент команды без учета регистра.
func parseBool(s string) (bool, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	if _, ok := trueTokens[token]; ok {
		return true, nil
	}
	if _, ok := falseTokens[token]; ok {
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", errInvalidBool, s)
}

// convertArgs — аргументы команды convert.
type convertArgs struct {
	link        string
	generateMP4 bool
}

// parseConvertArgs разбирает "<message_link> [generate_mp4]".
// Лишние аргументы игнорируются.
func parseConvertArgs(args []string) (convertArgs, error) {
	if len(args) == 0 {
		return convertArgs{}, errMissingLink
	}
	out := convertArgs{link: args[0]}
	if len(args) > 1 {
		v, err := parseBool(args[1])
		if err != nil {
			return convertArgs{}, err
		}
		out.generateMP4 = v
	}
	return out, nil
}

// splitCommand отделяет имя команды от аргументов. ok равен false, если нет префикса.
func splitCommand(prefix, content string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}
