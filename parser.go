package dbevolve

import (
	"bufio"
	"bytes"
	"strings"
)

const (
	// CommentMarker starts a single line comment.
	CommentMarker = "--"

	// NewlineDelimiterToken inside a comment switches the current statement
	// to end at the next blank line (or end of input) instead of a delimiter.
	// Used for PL/SQL style blocks that contain semicolons.
	NewlineDelimiterToken = "###_NEW_LINE_END_DELIMITER_ON_###"

	// DefaultDelimiter terminates statements unless a DELIMITER line says
	// otherwise.
	DefaultDelimiter = ";"

	delimiterDirective = "DELIMITER"
)

// Statement is one executable unit of a script.
type Statement struct {
	SQL  string
	Line int
}

// StatementParser splits a script into statements. Feed it one line at a
// time with Accept and signal the end of input with Finish. Once Complete
// reports true, read the statement and call Reset before feeding more lines.
// One parser serves a whole script; the delimiter set by a DELIMITER line
// survives Reset.
type StatementParser struct {
	buf         strings.Builder
	complete    bool
	newlineMode bool
	terminated  bool
	startLine   int
	delimiter   string
}

// NewStatementParser returns a parser using the default delimiter.
func NewStatementParser() *StatementParser {
	return &StatementParser{delimiter: DefaultDelimiter, startLine: -1}
}

// Accept feeds one line (without its line terminator) and its 1-based number.
func (p *StatementParser) Accept(line string, lineNumber int) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, CommentMarker) {
		if strings.Contains(trimmed, NewlineDelimiterToken) {
			p.newlineMode = true
		}
		return
	}

	if d, ok := parseDelimiterDirective(trimmed); ok {
		p.delimiter = d
		return
	}

	if trimmed == "" {
		if p.newlineMode && p.buf.Len() > 0 {
			p.complete = true
		}
		return
	}

	// A lone delimiter terminates nothing.
	if !p.newlineMode && p.buf.Len() == 0 && trimmed == p.delimiter {
		return
	}

	if p.startLine == -1 {
		p.startLine = lineNumber
	}
	p.buf.WriteString(trimmed)
	p.buf.WriteString("\n")

	if !p.newlineMode && strings.HasSuffix(trimmed, p.delimiter) {
		p.complete = true
		p.terminated = true
	}
}

// Finish signals end of input. A pending unterminated statement completes.
func (p *StatementParser) Finish() {
	if p.buf.Len() > 0 {
		p.complete = true
	}
}

// Complete reports whether a full statement is buffered.
func (p *StatementParser) Complete() bool {
	return p.complete
}

// Statement returns the buffered statement, trimmed, without its delimiter.
func (p *StatementParser) Statement() string {
	s := strings.TrimSpace(p.buf.String())
	if p.terminated {
		s = strings.TrimSpace(strings.TrimSuffix(s, p.delimiter))
	}
	return s
}

// StartLine returns the line number of the statement's first line, or -1.
func (p *StatementParser) StartLine() int {
	return p.startLine
}

// Reset clears the buffered statement so the parser can read the next one.
func (p *StatementParser) Reset() {
	p.buf.Reset()
	p.complete = false
	p.newlineMode = false
	p.terminated = false
	p.startLine = -1
}

func parseDelimiterDirective(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || !strings.EqualFold(fields[0], delimiterDirective) {
		return "", false
	}
	return fields[1], true
}

// scanStatements runs one parser over content and calls fn for every
// statement in order. It stops at the first error fn returns.
func scanStatements(content []byte, fn func(Statement) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	parser := NewStatementParser()
	emit := func() error {
		if !parser.Complete() {
			return nil
		}
		stmt := Statement{SQL: parser.Statement(), Line: parser.StartLine()}
		parser.Reset()
		return fn(stmt)
	}

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		parser.Accept(scanner.Text(), lineNumber)
		if err := emit(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	parser.Finish()
	return emit()
}

// SplitStatements parses a whole script into its statements.
func SplitStatements(content []byte) ([]Statement, error) {
	var out []Statement
	err := scanStatements(content, func(s Statement) error {
		out = append(out, s)
		return nil
	})
	return out, err
}
