// Package itemdb reads item resistance values out of a MySQL dump of an item
// template table.
package itemdb

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mmynk/raidsplit/internal/models"
)

var (
	ErrNoInsert = errors.New("no INSERT statement for table")
	ErrSyntax   = errors.New("dump syntax error")
)

// Columns names the dump columns to extract.
type Columns struct {
	ID     string
	Name   string
	Resist string
}

// ItemColumns matches the item template dumps used for classic servers.
var ItemColumns = Columns{ID: "item_id", Name: "name", Resist: "frost_res"}

// Stats summarizes a parse.
type Stats struct {
	Statements int
	Rows       int
	Kept       int
}

var insertRe = regexp.MustCompile("(?i)INSERT\\s+INTO\\s+`?(\\w+)`?\\s*\\(([^)]*)\\)\\s*VALUES")

// ParseDump extracts rows with a positive resistance from every INSERT into
// table. Column positions come from each statement's column list.
func ParseDump(r io.Reader, table string, cols Columns) ([]models.ItemResist, Stats, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read dump: %w", err)
	}
	sql := string(raw)

	var (
		out   []models.ItemResist
		stats Stats
	)
	for _, m := range insertRe.FindAllStringSubmatchIndex(sql, -1) {
		if !strings.EqualFold(sql[m[2]:m[3]], table) {
			continue
		}
		stats.Statements++

		idx, err := columnIndexes(sql[m[4]:m[5]], cols)
		if err != nil {
			return nil, stats, err
		}

		p := &parser{s: sql, pos: m[1]}
		for {
			values, err := p.tuple()
			if err != nil {
				return nil, stats, err
			}
			stats.Rows++

			row, keep, err := toRow(values, idx)
			if err != nil {
				return nil, stats, fmt.Errorf("row %d: %w", stats.Rows, err)
			}
			if keep {
				out = append(out, row)
				stats.Kept++
			}

			more, err := p.next()
			if err != nil {
				return nil, stats, err
			}
			if !more {
				break
			}
		}
	}

	if stats.Statements == 0 {
		return nil, stats, fmt.Errorf("%w %q", ErrNoInsert, table)
	}
	return out, stats, nil
}

type indexes struct{ id, name, resist, width int }

func columnIndexes(list string, cols Columns) (indexes, error) {
	names := strings.Split(list, ",")
	for i := range names {
		names[i] = strings.Trim(strings.TrimSpace(names[i]), "`")
	}
	idx := indexes{
		id:     slices.Index(names, cols.ID),
		name:   slices.Index(names, cols.Name),
		resist: slices.Index(names, cols.Resist),
		width:  len(names),
	}
	if idx.id < 0 || idx.name < 0 || idx.resist < 0 {
		return idx, fmt.Errorf("%w: columns %s, %s, %s not all present", ErrSyntax, cols.ID, cols.Name, cols.Resist)
	}
	return idx, nil
}

func toRow(values []string, idx indexes) (models.ItemResist, bool, error) {
	if len(values) != idx.width {
		return models.ItemResist{}, false, fmt.Errorf("%w: %d values for %d columns", ErrSyntax, len(values), idx.width)
	}
	res, err := strconv.Atoi(values[idx.resist])
	if err != nil || res <= 0 {
		return models.ItemResist{}, false, nil
	}
	id, err := strconv.Atoi(values[idx.id])
	if err != nil {
		return models.ItemResist{}, false, fmt.Errorf("%w: bad id %q", ErrSyntax, values[idx.id])
	}
	return models.ItemResist{ID: id, Name: values[idx.name], FrostResist: res}, true, nil
}

// parser walks the VALUES list of one statement.
type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && strings.ContainsRune(" \t\r\n", rune(p.s[p.pos])) {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

// next consumes the separator after a tuple and reports whether another follows.
func (p *parser) next() (bool, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return false, nil
	}
	switch p.s[p.pos] {
	case ',':
		p.pos++
		return true, nil
	case ';':
		p.pos++
		return false, nil
	}
	return false, p.errorf("unexpected %q after tuple", p.s[p.pos])
}

// tuple parses "(v1, 'v2', ...)". Quoted values are unescaped.
func (p *parser) tuple() ([]string, error) {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != '(' {
		return nil, p.errorf("expected '('")
	}
	p.pos++

	var values []string
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated tuple")
		}

		var v string
		if p.s[p.pos] == '\'' {
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			v = s
		} else {
			start := p.pos
			for p.pos < len(p.s) && p.s[p.pos] != ',' && p.s[p.pos] != ')' {
				p.pos++
			}
			v = strings.TrimSpace(p.s[start:p.pos])
		}
		values = append(values, v)

		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated tuple")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return values, nil
		default:
			return nil, p.errorf("unexpected %q in tuple", p.s[p.pos])
		}
	}
}

func (p *parser) quoted() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.s):
			b.WriteByte(unescape(p.s[p.pos+1]))
			p.pos += 2
		case c == '\'' && p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'':
			b.WriteByte('\'')
			p.pos += 2
		case c == '\'':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return c
}
