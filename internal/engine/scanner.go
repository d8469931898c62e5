package engine

import (
	"fmt"
	"strings"
)

type layoutOptions struct {
	tabWidth    int
	useTabs     bool
	singleQuote bool
	jsx         bool
}

type mode int

const (
	modeCode mode = iota
	modeTemplate
	modeBlockComment
	modeString // a string literal continued across lines with a trailing backslash
	modeJSXTag
	modeJSXClose
	modeJSXText
)

type bracket struct {
	// ch is the opening byte. 'T' marks a template ${ expression, '<' a JSX
	// element and 'E' a JSX {expression}.
	ch    byte
	line  int
	depth int // indent level of the line that opened it

	keyword    string // word before a '('
	switchBody bool
}

// docLine is one output line. Verbatim lines are inside a literal or a
// comment and are never dropped as blank.
type docLine struct {
	text     string
	verbatim bool
}

func (l docLine) blank() bool {
	return !l.verbatim && l.text == ""
}

// regexKeywords are words after which a slash starts a regular expression.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int
	opt  layoutOptions

	modes     []mode
	brackets  []bracket
	strQuote  byte
	continued bool // the pending newline is escaped by a backslash
	modeLine  []int

	switchHead bool // the last token closed the head of a switch

	cur          []byte
	pendingSpace bool
	lastSig      byte
	word         []byte
	lastWord     string

	startMode     mode
	startBrackets []bracket

	lines []docLine
}

func scan(src string, opt layoutOptions) ([]docLine, error) {
	s := &scanner{src: src, line: 1, col: 1, opt: opt, modes: []mode{modeCode}, modeLine: []int{1}}
	s.startMode = modeCode
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.lines, nil
}

func (s *scanner) top() mode {
	return s.modes[len(s.modes)-1]
}

func (s *scanner) push(m mode) {
	s.modes = append(s.modes, m)
	s.modeLine = append(s.modeLine, s.line)
}

func (s *scanner) pop() {
	s.modes = s.modes[:len(s.modes)-1]
	s.modeLine = s.modeLine[:len(s.modeLine)-1]
}

func (s *scanner) errorf(format string, args ...any) error {
	return &SyntaxError{Line: s.line, Col: s.col, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

// advance moves past n bytes that contain no newline.
func (s *scanner) advance(n int) {
	s.pos += n
	s.col += n
}

func (s *scanner) run() error {
	if strings.HasPrefix(s.src, "#!") {
		end := strings.IndexByte(s.src, '\n')
		if end < 0 {
			end = len(s.src)
		}
		s.cur = append(s.cur, s.src[:end]...)
		s.advance(end)
	}

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\n' {
			if s.top() == modeString && !s.continued {
				return s.errorf("unterminated string literal")
			}
			s.continued = false
			s.finishLine()
			s.pos++
			s.line++
			s.col = 1
			continue
		}

		var err error
		switch s.top() {
		case modeCode:
			err = s.code(c)
		case modeTemplate:
			s.template(c)
		case modeBlockComment:
			s.blockComment(c)
		case modeString:
			err = s.stringContinuation(c)
		case modeJSXTag, modeJSXClose:
			err = s.jsxTag(c)
		case modeJSXText:
			s.jsxText(c)
		}
		if err != nil {
			return err
		}
	}

	if len(s.cur) > 0 || s.startMode != modeCode {
		s.finishLine()
	}

	switch s.top() {
	case modeTemplate:
		return &SyntaxError{Line: s.modeLine[len(s.modeLine)-1], Col: 1, Msg: "unterminated template literal"}
	case modeBlockComment:
		return &SyntaxError{Line: s.modeLine[len(s.modeLine)-1], Col: 1, Msg: "unterminated comment"}
	case modeString:
		return &SyntaxError{Line: s.modeLine[len(s.modeLine)-1], Col: 1, Msg: "unterminated string literal"}
	case modeJSXTag, modeJSXClose, modeJSXText:
		return &SyntaxError{Line: s.modeLine[len(s.modeLine)-1], Col: 1, Msg: "unterminated JSX element"}
	}
	if n := len(s.brackets); n > 0 {
		b := s.brackets[n-1]
		switch b.ch {
		case 'T':
			return &SyntaxError{Line: b.line, Col: 1, Msg: "unterminated template expression"}
		case 'E':
			return &SyntaxError{Line: b.line, Col: 1, Msg: "unterminated JSX expression"}
		case '<':
			return &SyntaxError{Line: b.line, Col: 1, Msg: "unterminated JSX element"}
		}
		return &SyntaxError{Line: b.line, Col: 1, Msg: fmt.Sprintf("'%c' is never closed", b.ch)}
	}
	return nil
}

func (s *scanner) code(c byte) error {
	switch {
	case c == ' ' || c == '\t' || c == '\f' || c == '\v' || c == '\r':
		s.pendingSpace = true
		s.word = s.word[:0]
		s.advance(1)
	case c == '/' && s.peek(1) == '/':
		end := strings.IndexByte(s.src[s.pos:], '\n')
		if end < 0 {
			end = len(s.src) - s.pos
		}
		s.emitRaw(s.src[s.pos : s.pos+end])
		s.advance(end)
	case c == '/' && s.peek(1) == '*':
		s.emitRaw("/*")
		s.advance(2)
		s.push(modeBlockComment)
	case c == '/' && s.regexAllowed():
		return s.regex()
	case c == '<' && s.opt.jsx && s.regexAllowed() && s.jsxTagAhead():
		s.emit(c)
		s.brackets = append(s.brackets, bracket{ch: '<', line: s.line})
		s.advance(1)
		s.push(modeJSXTag)
	case c == '\'' || c == '"':
		return s.stringLiteral(c)
	case c == '`':
		s.emit(c)
		s.advance(1)
		s.push(modeTemplate)
	case c == '(' || c == '[' || c == '{':
		b := bracket{ch: c, line: s.line, switchBody: c == '{' && s.switchHead}
		if c == '(' && isIdentByte(s.lastSig) {
			b.keyword = s.lastWord
		}
		s.emit(c)
		s.brackets = append(s.brackets, b)
		s.advance(1)
	case c == ')' || c == ']' || c == '}':
		return s.closeBracket(c)
	default:
		s.emit(c)
		s.advance(1)
	}
	return nil
}

func (s *scanner) closeBracket(c byte) error {
	n := len(s.brackets)
	if n == 0 {
		return s.errorf("unexpected '%c'", c)
	}
	open := s.brackets[n-1]
	want := map[byte]byte{'(': ')', '[': ']', '{': '}', 'T': '}', 'E': '}'}[open.ch]
	if c != want {
		return s.errorf("unexpected '%c', expected '%c'", c, want)
	}
	s.brackets = s.brackets[:n-1]
	s.emit(c)
	s.advance(1)
	if open.ch == 'T' || open.ch == 'E' {
		s.pop()
	}
	s.switchHead = open.ch == '(' && open.keyword == "switch"
	return nil
}

// jsxTagAhead reports whether the '<' at the current position opens an
// element rather than a type parameter list.
func (s *scanner) jsxTagAhead() bool {
	i := s.pos + 1
	if s.peek(1) == '>' {
		return true
	}
	start := i
	for i < len(s.src) && (isIdentByte(s.src[i]) || strings.IndexByte(".:-", s.src[i]) >= 0) {
		i++
	}
	if i == start || (s.src[start] >= '0' && s.src[start] <= '9') {
		return false
	}
	rest := strings.TrimLeft(s.src[i:], " \t")
	return !strings.HasPrefix(rest, ",") && !strings.HasPrefix(rest, "extends ")
}

// jsxTag handles the inside of an opening or closing tag. Attribute strings
// are kept as written.
func (s *scanner) jsxTag(c byte) error {
	switch {
	case c == ' ' || c == '\t' || c == '\f' || c == '\v' || c == '\r':
		s.pendingSpace = true
		s.advance(1)
	case c == '/' && s.peek(1) == '>' && s.top() == modeJSXTag:
		s.emit('/')
		s.emit('>')
		s.advance(2)
		s.pop()
		return s.closeElement()
	case c == '>':
		s.pendingSpace = false
		s.emit(c)
		s.advance(1)
		closing := s.top() == modeJSXClose
		s.pop()
		if closing {
			s.pop()
			return s.closeElement()
		}
		s.push(modeJSXText)
	case c == '{':
		s.emit(c)
		s.brackets = append(s.brackets, bracket{ch: 'E', line: s.line})
		s.advance(1)
		s.push(modeCode)
	case c == '"' || c == '\'':
		end := strings.IndexAny(s.src[s.pos+1:], string(c)+"\n")
		if end < 0 || s.src[s.pos+1+end] == '\n' {
			return s.errorf("unterminated string literal")
		}
		s.emitRaw(s.src[s.pos : s.pos+end+2])
		s.advance(end + 2)
	default:
		s.emit(c)
		s.advance(1)
	}
	return nil
}

// jsxText copies element children as written, apart from the indentation
// of their lines.
func (s *scanner) jsxText(c byte) {
	switch {
	case c == '{':
		s.cur = append(s.cur, c)
		s.brackets = append(s.brackets, bracket{ch: 'E', line: s.line})
		s.advance(1)
		s.push(modeCode)
		s.word = s.word[:0]
		s.lastSig, s.lastWord = '{', ""
	case c == '<' && s.peek(1) == '/':
		s.cur = append(s.cur, "</"...)
		s.advance(2)
		s.push(modeJSXClose)
	case c == '<':
		s.cur = append(s.cur, c)
		s.brackets = append(s.brackets, bracket{ch: '<', line: s.line})
		s.advance(1)
		s.push(modeJSXTag)
	default:
		s.cur = append(s.cur, c)
		s.advance(1)
	}
}

func (s *scanner) closeElement() error {
	n := len(s.brackets)
	if n == 0 || s.brackets[n-1].ch != '<' {
		return s.errorf("unexpected closing tag")
	}
	s.brackets = s.brackets[:n-1]
	// A finished element ends an expression.
	s.lastSig, s.lastWord = ')', ""
	return nil
}

func (s *scanner) template(c byte) {
	switch {
	case c == '\\':
		s.cur = append(s.cur, c)
		s.advance(1)
		if next := s.peek(0); next != 0 && next != '\n' {
			s.cur = append(s.cur, next)
			s.advance(1)
		}
	case c == '`':
		s.cur = append(s.cur, c)
		s.advance(1)
		s.pop()
		s.lastSig = '`'
	case c == '$' && s.peek(1) == '{':
		s.cur = append(s.cur, "${"...)
		s.advance(2)
		s.brackets = append(s.brackets, bracket{ch: 'T', line: s.line})
		s.push(modeCode)
		s.lastSig = '{'
	default:
		s.cur = append(s.cur, c)
		s.advance(1)
	}
}

func (s *scanner) blockComment(c byte) {
	if c == '*' && s.peek(1) == '/' {
		s.cur = append(s.cur, "*/"...)
		s.advance(2)
		s.pop()
		return
	}
	s.cur = append(s.cur, c)
	s.advance(1)
}

func (s *scanner) stringContinuation(c byte) error {
	switch c {
	case '\\':
		s.cur = append(s.cur, c)
		s.advance(1)
		switch next := s.peek(0); next {
		case 0:
		case '\n':
			s.continued = true
		default:
			s.cur = append(s.cur, next)
			s.advance(1)
		}
	case s.strQuote:
		s.cur = append(s.cur, c)
		s.advance(1)
		s.pop()
		s.lastSig = c
	default:
		s.cur = append(s.cur, c)
		s.advance(1)
	}
	return nil
}

// stringLiteral emits a single-line string with its quotes normalised. A
// string continued with a trailing backslash is emitted untouched.
func (s *scanner) stringLiteral(q byte) error {
	i := s.pos + 1
	for i < len(s.src) {
		switch s.src[i] {
		case '\\':
			if i+1 < len(s.src) && s.src[i+1] == '\n' {
				s.emitRaw(s.src[s.pos : i+1])
				s.advance(i + 1 - s.pos)
				s.strQuote = q
				s.continued = true
				s.push(modeString)
				return nil
			}
			i += 2
			continue
		case '\n':
			return s.errorf("unterminated string literal")
		case q:
			raw := s.src[s.pos+1 : i]
			s.emitRaw(makeString(raw, q, s.opt.singleQuote))
			s.advance(i + 1 - s.pos)
			s.lastSig = q
			return nil
		}
		i++
	}
	return s.errorf("unterminated string literal")
}

func (s *scanner) regex() error {
	i := s.pos + 1
	inClass := false
	for i < len(s.src) {
		switch s.src[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return s.errorf("unterminated regular expression")
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				i++
				for i < len(s.src) && isIdentByte(s.src[i]) {
					i++
				}
				s.emitRaw(s.src[s.pos:i])
				s.advance(i - s.pos)
				s.lastSig = '/'
				s.lastWord = ""
				return nil
			}
		}
		i++
	}
	return s.errorf("unterminated regular expression")
}

// regexAllowed guesses whether a slash begins a regular expression from the
// last significant token.
func (s *scanner) regexAllowed() bool {
	if s.lastSig == 0 {
		return true
	}
	if isIdentByte(s.lastSig) {
		return regexKeywords[s.lastWord]
	}
	return !strings.ContainsRune(")]}'\"`", rune(s.lastSig))
}

// emit writes one code byte, turning pending whitespace into a single space.
func (s *scanner) emit(c byte) {
	s.flushSpace(c)
	s.cur = append(s.cur, c)
	s.lastSig = c
	s.switchHead = false
	if isIdentByte(c) {
		s.word = append(s.word, c)
		s.lastWord = string(s.word)
	} else {
		s.word = s.word[:0]
		s.lastWord = ""
	}
}

// emitRaw writes a literal or comment as-is.
func (s *scanner) emitRaw(text string) {
	if text == "" {
		return
	}
	s.flushSpace(text[0])
	s.cur = append(s.cur, text...)
	s.word = s.word[:0]
}

func (s *scanner) flushSpace(next byte) {
	if !s.pendingSpace {
		return
	}
	s.pendingSpace = false
	if len(s.cur) == 0 || strings.IndexByte(",;)]", next) >= 0 {
		return
	}
	if last := s.cur[len(s.cur)-1]; last == '(' || last == '[' {
		return
	}
	s.cur = append(s.cur, ' ')
}

func (s *scanner) finishLine() {
	s.lines = append(s.lines, s.layoutLine())
	s.cur = s.cur[:0]
	s.word = s.word[:0]
	s.pendingSpace = false
	s.startMode = s.top()
	s.startBrackets = append(s.startBrackets[:0], s.brackets...)
}

func (s *scanner) layoutLine() docLine {
	text := string(s.cur)
	end := s.top()
	if end != modeTemplate && end != modeString {
		text = strings.TrimRight(text, " \t\f\v")
	}
	if s.startMode == modeJSXText {
		text = strings.TrimLeft(text, " \t\f\v")
	}

	lvl := s.level(text)
	for i := range s.brackets {
		if s.brackets[i].line == s.line {
			s.brackets[i].depth = lvl
		}
	}

	switch s.startMode {
	case modeTemplate, modeString:
		return docLine{text: string(s.cur), verbatim: true}
	case modeBlockComment:
		trimmed := strings.TrimLeft(text, " \t")
		if strings.HasPrefix(trimmed, "*") {
			return docLine{text: s.indent(lvl) + " " + trimmed, verbatim: true}
		}
		return docLine{text: text, verbatim: true}
	}

	if text == "" {
		return docLine{}
	}
	return docLine{text: s.indent(lvl) + text}
}

// closers counts the brackets that text closes before anything else.
func (s *scanner) closers(text string) int {
	switch s.startMode {
	case modeCode:
		n := 0
		for n < len(text) && strings.IndexByte(")]}", text[n]) >= 0 {
			n++
		}
		return n
	case modeJSXText:
		if strings.HasPrefix(text, "</") {
			return 1
		}
	case modeJSXTag:
		if strings.HasPrefix(text, ">") || strings.HasPrefix(text, "/>") {
			return 1
		}
	}
	return 0
}

// level is the indent of a line starting with text. A line that closes
// brackets lines up with the line that opened the outermost of them. Any
// other line sits one level inside its innermost bracket, with one more
// level for the statements of a switch case and for a leading member
// access.
func (s *scanner) level(text string) int {
	open := s.startBrackets
	if k := min(s.closers(text), len(open)); k > 0 {
		return open[len(open)-k].depth
	}

	n := 0
	if len(open) > 0 {
		inner := open[len(open)-1]
		n = inner.depth + 1
		if inner.switchBody && text != "" && !isCaseLabel(text) {
			n++
		}
	}
	if s.startMode == modeCode && isChainLine(text) {
		n++
	}
	return n
}

func (s *scanner) indent(level int) string {
	if level <= 0 {
		return ""
	}
	if s.opt.useTabs {
		return strings.Repeat("\t", level)
	}
	return strings.Repeat(" ", level*s.opt.tabWidth)
}

func isCaseLabel(text string) bool {
	if strings.HasPrefix(text, "case ") || strings.HasPrefix(text, "case(") {
		return true
	}
	rest, ok := strings.CutPrefix(text, "default")
	return ok && strings.HasPrefix(strings.TrimLeft(rest, " "), ":")
}

func isChainLine(text string) bool {
	return strings.HasPrefix(text, "?.") || (strings.HasPrefix(text, ".") && !strings.HasPrefix(text, "..."))
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// makeString re-quotes the raw content of a string literal, preferring the
// configured quote unless the other one needs fewer escapes.
func makeString(raw string, orig byte, singleQuote bool) string {
	preferred, alternate := byte('"'), byte('\'')
	if singleQuote {
		preferred, alternate = alternate, preferred
	}
	enclosing := preferred
	if strings.Count(raw, string(preferred)) > strings.Count(raw, string(alternate)) {
		enclosing = alternate
	}
	if enclosing == orig {
		return string(orig) + raw + string(orig)
	}

	var sb strings.Builder
	sb.Grow(len(raw) + 2)
	sb.WriteByte(enclosing)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw):
			next := raw[i+1]
			if next == orig {
				// The old enclosing quote no longer needs escaping.
				sb.WriteByte(next)
			} else {
				sb.WriteByte(c)
				sb.WriteByte(next)
			}
			i++
		case c == enclosing:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(enclosing)
	return sb.String()
}
