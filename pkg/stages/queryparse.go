// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package stages

import (
	"fmt"
	"strings"
	"unicode"
)

// parseQuery parses the supported SPARQL subset:
//
//	SELECT ?x ?y … | SELECT *       WHERE { patterns }
//	ASK                             [WHERE] { patterns }
//	CONSTRUCT { template }          WHERE { patterns }
//
// where patterns is a list of triple patterns separated by ".", possibly
// containing GRAPH ?g { … } or GRAPH <iri> { … } groups. Terms use
// N-Triples syntax, prefixed names expanded against the configured
// prefixes, or "a" for rdf:type.
func parseQuery(text string, prefixes map[string]string) (*query, error) {
	tokens, err := tokenizeQuery(text)
	if err != nil {
		return nil, err
	}
	p := &queryParser{tokens: tokens, prefixes: prefixes}
	q, err := p.parse()
	if err != nil {
		return nil, err
	}
	return q, nil
}

type queryParser struct {
	tokens   []string
	pos      int
	prefixes map[string]string
}

func (p *queryParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *queryParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *queryParser) expect(tok string) error {
	if got := p.next(); got != tok {
		return fmt.Errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *queryParser) parse() (*query, error) {
	q := &query{}
	switch strings.ToUpper(p.next()) {
	case "SELECT":
		q.kind = querySelect
		if err := p.parseProjection(q); err != nil {
			return nil, err
		}
	case "ASK":
		q.kind = queryAsk
	case "CONSTRUCT":
		q.kind = queryConstruct
		template, err := p.parseGroup(nil)
		if err != nil {
			return nil, err
		}
		q.template = template
	default:
		return nil, fmt.Errorf("query must start with SELECT, ASK or CONSTRUCT")
	}

	if strings.ToUpper(p.peek()) == "WHERE" {
		p.next()
	}
	patterns, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	q.patterns = patterns
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q after the WHERE clause", p.peek())
	}

	if q.kind == querySelect && len(q.vars) == 0 {
		q.vars = patternVars(q.patterns)
	}
	return q, nil
}

func (p *queryParser) parseProjection(q *query) error {
	if p.peek() == "*" {
		p.next()
		return nil
	}
	for strings.HasPrefix(p.peek(), "?") {
		q.vars = append(q.vars, p.next()[1:])
	}
	if len(q.vars) == 0 {
		return fmt.Errorf("SELECT needs at least one variable or *")
	}
	return nil
}

// parseWhere reads { … } with triple patterns and GRAPH groups.
func (p *queryParser) parseWhere() ([]quadPattern, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var out []quadPattern
	for {
		switch {
		case p.peek() == "":
			return nil, fmt.Errorf("unterminated WHERE clause")
		case p.peek() == "}":
			p.next()
			return out, nil
		case strings.ToUpper(p.peek()) == "GRAPH":
			p.next()
			g, err := p.parsePatternTerm()
			if err != nil {
				return nil, err
			}
			group, err := p.parseGroup(&g)
			if err != nil {
				return nil, err
			}
			out = append(out, group...)
		default:
			pat, err := p.parseTriplePattern(nil)
			if err != nil {
				return nil, err
			}
			out = append(out, pat)
			if p.peek() == "." {
				p.next()
			}
		}
	}
}

// parseGroup reads a braced list of triple patterns, all scoped to g.
func (p *queryParser) parseGroup(g *patternTerm) ([]quadPattern, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var out []quadPattern
	for {
		switch p.peek() {
		case "":
			return nil, fmt.Errorf("unterminated group")
		case "}":
			p.next()
			return out, nil
		default:
			pat, err := p.parseTriplePattern(g)
			if err != nil {
				return nil, err
			}
			out = append(out, pat)
			if p.peek() == "." {
				p.next()
			}
		}
	}
}

func (p *queryParser) parseTriplePattern(g *patternTerm) (quadPattern, error) {
	s, err := p.parsePatternTerm()
	if err != nil {
		return quadPattern{}, err
	}
	pred, err := p.parsePatternTerm()
	if err != nil {
		return quadPattern{}, err
	}
	o, err := p.parsePatternTerm()
	if err != nil {
		return quadPattern{}, err
	}
	return quadPattern{s: s, p: pred, o: o, g: g}, nil
}

func (p *queryParser) parsePatternTerm() (patternTerm, error) {
	tok := p.next()
	if tok == "" {
		return patternTerm{}, fmt.Errorf("unexpected end of query")
	}
	if strings.HasPrefix(tok, "?") {
		if len(tok) == 1 {
			return patternTerm{}, fmt.Errorf("empty variable name")
		}
		return patternTerm{variable: tok[1:]}, nil
	}
	term, err := parseTerm(tok, p.prefixes)
	if err != nil {
		return patternTerm{}, err
	}
	return patternTerm{term: term}, nil
}

// patternVars lists the variables of the patterns in order of first
// appearance, for SELECT *.
func patternVars(patterns []quadPattern) []string {
	var vars []string
	seen := map[string]bool{}
	add := func(pt patternTerm) {
		if pt.isVar() && !seen[pt.variable] {
			seen[pt.variable] = true
			vars = append(vars, pt.variable)
		}
	}
	for _, p := range patterns {
		if p.g != nil {
			add(*p.g)
		}
		add(p.s)
		add(p.p)
		add(p.o)
	}
	return vars
}

// tokenizeQuery splits a query string into tokens: punctuation ({ } .),
// IRIs in angle brackets, quoted literals with their suffix, and bare
// words (keywords, variables, prefixed names).
func tokenizeQuery(text string) ([]string, error) {
	var tokens []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '{' || r == '}':
			tokens = append(tokens, string(r))
			i++
		case r == '.' && (i+1 == len(runes) || unicode.IsSpace(runes[i+1]) || runes[i+1] == '}'):
			tokens = append(tokens, ".")
			i++
		case r == '<':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '>' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("unterminated IRI at %q", string(runes[i:]))
			}
			tokens = append(tokens, string(runes[i:end+1]))
			i = end + 1
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				if runes[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated literal at %q", string(runes[i:]))
			}
			// include the @lang or ^^<datatype> suffix in the token
			j++
			for j < len(runes) && !unicode.IsSpace(runes[j]) &&
				runes[j] != '{' && runes[j] != '}' {
				j++
			}
			tokens = append(tokens, strings.TrimSuffix(string(runes[i:j]), "."))
			if strings.HasSuffix(string(runes[i:j]), ".") {
				tokens = append(tokens, ".")
			}
			i = j
		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) &&
				runes[j] != '{' && runes[j] != '}' && runes[j] != '<' {
				j++
			}
			word := string(runes[i:j])
			if trimmed := strings.TrimSuffix(word, "."); trimmed != word && trimmed != "" {
				tokens = append(tokens, trimmed, ".")
			} else {
				tokens = append(tokens, word)
			}
			i = j
		}
	}
	return tokens, nil
}
