package chess

import (
	"regexp"
	"strings"

	"playground/game"

	chesslib "github.com/notnil/chess"
)

// san groups: castle, piece, from file, from rank, target, promotion. The
// long coordinate form ("e2e4", "e2-e4", "e7e8q") is a move with both from
// groups set and no piece letter.
var san = regexp.MustCompile(`^(?:(O-O-O|O-O)|([NBRQK])?([a-h])?([1-8])?[-x]?([a-h][1-8])(?:=?([QRBNqrbn]))?)$`)

var (
	algebraic = chesslib.AlgebraicNotation{}
	uciText   = chesslib.UCINotation{}
)

var pieceLetters = map[string]chesslib.PieceType{
	"N": chesslib.Knight,
	"B": chesslib.Bishop,
	"R": chesslib.Rook,
	"Q": chesslib.Queen,
	"K": chesslib.King,
}

// normalize rewrites loosely typed move text into the spelling used by
// standard algebraic notation. Annotation marks are dropped. An upper-case
// B is a bishop and a lower-case b is a file.
func normalize(text string) string {
	s := strings.Join(strings.Fields(text), "")
	s = strings.TrimRight(s, "+#!?")
	if castle := strings.ToUpper(strings.ReplaceAll(s, "0", "O")); castle == "O-O" || castle == "O-O-O" {
		return castle
	}
	if s == "" {
		return s
	}
	head, rest := s[:1], strings.ToLower(s[1:])
	switch {
	case strings.Contains("NBRQK", head):
	case strings.Contains("nrqk", head) && len(s) > 2:
		head = strings.ToUpper(head)
	default:
		head = strings.ToLower(head)
	}
	s = head + rest
	if i := strings.IndexByte(s, '='); i >= 0 && i+1 < len(s) {
		s = s[:i+1] + strings.ToUpper(s[i+1:])
	}
	return s
}

func stripChecks(text string) string {
	return strings.TrimRight(text, "+#")
}

// parse checks text against the move grammar and returns it normalized.
func parse(text string) (string, error) {
	s := normalize(text)
	if !san.MatchString(s) {
		return "", game.NewParseError(text, "expected standard algebraic notation such as Nf3 or exd5=Q")
	}
	return s, nil
}

// decode resolves the normalized move s to the one legal move in pos it
// describes. Redundant disambiguation ("Ng1f3") is accepted; a move that fits
// several legal moves is rejected as ambiguous.
func decode(pos *chesslib.Position, s, text string) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	for _, m := range moves {
		if stripChecks(algebraic.Encode(pos, m)) == s || uciText.Encode(pos, m) == s {
			return m, nil
		}
	}

	g := san.FindStringSubmatch(s)
	if g == nil || g[1] != "" {
		return nil, game.NewRuleViolation(text, "not a legal move in this position")
	}
	piece, fromFile, fromRank, target, promo := g[2], g[3], g[4], g[5], g[6]
	want := chesslib.Pawn
	anyPiece := piece == "" && fromFile != "" && fromRank != ""
	if piece != "" {
		want = pieceLetters[piece]
	}
	wantPromo := chesslib.NoPieceType
	if promo != "" {
		wantPromo = pieceLetters[strings.ToUpper(promo)]
	}

	var found []*chesslib.Move
	for _, m := range moves {
		from, to := m.S1().String(), m.S2().String()
		if to != target || m.Promo() != wantPromo {
			continue
		}
		if !anyPiece && pos.Board().Piece(m.S1()).Type() != want {
			continue
		}
		if (fromFile != "" && from[:1] != fromFile) || (fromRank != "" && from[1:] != fromRank) {
			continue
		}
		found = append(found, m)
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return nil, game.NewRuleViolation(text, "not a legal move in this position")
	default:
		return nil, game.NewRuleViolation(text, "ambiguous move, add the origin file or rank")
	}
}

// legal returns the legal move in pos that matches m's squares and promotion.
func legal(pos *chesslib.Position, m *chesslib.Move) *chesslib.Move {
	if m == nil {
		return nil
	}
	for _, v := range pos.ValidMoves() {
		if v.S1() == m.S1() && v.S2() == m.S2() && v.Promo() == m.Promo() {
			return v
		}
	}
	return nil
}

func encode(pos *chesslib.Position, m *chesslib.Move) string {
	return algebraic.Encode(pos, m)
}
