// Package target parses migration target expressions such as "latest",
// "zero", "latest~2", "20240131120000" or "2024-01-31 12:00".
package target

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/satishbabariya/migrate-go/migrate"
)

var targetLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Date", Pattern: `\d{4}-\d{2}-\d{2}`},
	{Name: "Time", Pattern: `\d{2}:\d{2}(?::\d{2})?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Keyword", Pattern: `[a-zA-Z]+`},
	{Name: "Tilde", Pattern: `~`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// Expr is a parsed target
type Expr struct {
	Latest *Latest `  @@`
	Zero   bool    `| @"zero"`
	Stamp  *Stamp  `| @@`
	Number *int64  `| @Number`
}

// Latest is "latest" optionally followed by "~N"
type Latest struct {
	Keyword string `@"latest"`
	Back    int    `( "~" @Number )?`
}

// Stamp is a date with an optional time of day
type Stamp struct {
	Date string `@Date`
	Time string `@Time?`
}

var parser = participle.MustBuild[Expr](
	participle.Lexer(targetLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

// Parse parses s. An empty string means latest.
func Parse(s string) (*Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return &Expr{Latest: &Latest{Keyword: "latest"}}, nil
	}
	expr, err := parser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", s, err)
	}
	return expr, nil
}

func (e *Expr) String() string {
	switch {
	case e.Latest != nil && e.Latest.Back > 0:
		return fmt.Sprintf("latest~%d", e.Latest.Back)
	case e.Latest != nil:
		return "latest"
	case e.Zero:
		return "zero"
	case e.Stamp != nil && e.Stamp.Time != "":
		return e.Stamp.Date + " " + e.Stamp.Time
	case e.Stamp != nil:
		return e.Stamp.Date
	case e.Number != nil:
		return fmt.Sprint(*e.Number)
	}
	return ""
}

// Version resolves the expression against the registered migrations
func (e *Expr) Version(reg *migrate.Registry) (int64, error) {
	switch {
	case e.Latest != nil:
		return reg.Before(e.Latest.Back)
	case e.Zero:
		return 0, nil
	case e.Stamp != nil:
		t, err := e.Stamp.time()
		if err != nil {
			return 0, err
		}
		return migrate.VersionOf(t), nil
	case e.Number != nil:
		return migrate.ParseVersion(fmt.Sprint(*e.Number))
	}
	return 0, fmt.Errorf("empty target")
}

func (s *Stamp) time() (time.Time, error) {
	value, layout := s.Date, "2006-01-02"
	switch len(s.Time) {
	case len("15:04"):
		value, layout = value+" "+s.Time, layout+" 15:04"
	case len("15:04:05"):
		value, layout = value+" "+s.Time, layout+" 15:04:05"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	// a bare date includes every migration of that day
	if s.Time == "" {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

// Resolve parses s and resolves it against reg
func Resolve(s string, reg *migrate.Registry) (int64, error) {
	expr, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return expr.Version(reg)
}
