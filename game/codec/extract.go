package codec

import (
	"fmt"
	"regexp"
	"strings"

	"playground/game"
)

const movementPrefix = `(?:Movement:\s*)?`

// movement patterns recognise a move inside free-form agent output. Longer
// alternatives come first so "H15" is not cut short at "H1".
var movement = map[string]*regexp.Regexp{
	game.TicTacToe:   regexp.MustCompile(movementPrefix + `([A-Ca-c][1-3]|[1-3][A-Ca-c])`),
	game.Gomoku:      regexp.MustCompile(movementPrefix + `([A-Oa-o](?:1[0-5]|[1-9])|(?:1[0-5]|[1-9])[A-Oa-o])`),
	game.Minesweeper: regexp.MustCompile(movementPrefix + `([A-Ha-h][1-8]|[1-8][A-Ha-h])`),
	game.Reversi:     regexp.MustCompile(movementPrefix + `([A-Ha-h][1-8]|[1-8][A-Ha-h])`),
	game.Sudoku:      regexp.MustCompile(movementPrefix + `([A-Ia-i][1-9]\s[1-9])`),
	game.Chess: regexp.MustCompile(movementPrefix +
		`(O-O-O|O-O|[a-hA-H][1-8][a-hA-H][1-8][qrbnQRBN]?|[NBRQK]?[a-h]?[1-8]?x?[a-h][1-8](?:=[QRNB])?[+#]?)`),
}

var movementLine = regexp.MustCompile(`(?i)movement\s*:\s*(.*)`)

// ExtractMovement finds the move an agent proposed in raw output. A
// "Movement:" line is preferred; otherwise the first match anywhere is used.
func ExtractMovement(name, raw string) (string, error) {
	pattern, ok := movement[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", game.ErrUnknownGame, name)
	}
	candidates := []string{}
	if lines := movementLine.FindAllStringSubmatch(raw, -1); len(lines) > 0 {
		candidates = append(candidates, lines[len(lines)-1][1])
	}
	candidates = append(candidates, raw)
	for _, text := range candidates {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return strings.TrimSpace(match[1]), nil
		}
	}
	return "", game.NewParseError(raw, "no movement found in output")
}
