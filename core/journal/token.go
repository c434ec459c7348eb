package journal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
)

// DefaultAbsentToken marks an absence in a journal cell.
const DefaultAbsentToken = "Н"

type TokenKind int

const (
	TokenClear TokenKind = iota
	TokenGrade
	TokenAbsent
)

// Token is an accepted cell input.
type Token struct {
	Kind  TokenKind
	Grade int // set for TokenGrade only
}

// ParseToken accepts "2" to "5", the absence token (any case) or an empty string.
// Surrounding whitespace is ignored.
func ParseToken(raw, absentToken string) (Token, error) {
	val := strings.TrimSpace(raw)
	switch {
	case val == "":
		return Token{Kind: TokenClear}, nil
	case strings.EqualFold(val, absentToken):
		return Token{Kind: TokenAbsent}, nil
	case len(val) == 1 && val[0] >= '2' && val[0] <= '5':
		return Token{Kind: TokenGrade, Grade: int(val[0] - '0')}, nil
	}
	msg := fmt.Sprintf("grade must be 2-5, %s or empty", absentToken)
	return Token{}, core.NewValidationError(errors.New(msg), core.FieldError{Field: "grade", Error: msg})
}

// Value returns the grade to persist: nil clears the cell, 0 is the absence mark.
func (t Token) Value() *int {
	switch t.Kind {
	case TokenGrade:
		g := t.Grade
		return &g
	case TokenAbsent:
		g := school.AbsentGrade
		return &g
	}
	return nil
}

// FormatGrade renders a committed grade as cell text.
func FormatGrade(grade *int, absentToken string) string {
	switch {
	case grade == nil:
		return ""
	case *grade == school.AbsentGrade:
		return absentToken
	}
	return strconv.Itoa(*grade)
}
