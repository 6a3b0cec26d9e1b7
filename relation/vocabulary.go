package relation

import (
	"fmt"
	"strings"
)

// Dimension is one of the three relation families.
type Dimension int

const (
	Direction Dimension = iota
	Topology
	Distance
)

// Dimensions lists every dimension in column order (dir, top, dis).
var Dimensions = []Dimension{Direction, Topology, Distance}

// String returns the short column name used in CSV headers and flags.
func (d Dimension) String() string {
	switch d {
	case Direction:
		return "dir"
	case Topology:
		return "top"
	case Distance:
		return "dis"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Name returns the long human-readable name.
func (d Dimension) Name() string {
	switch d {
	case Direction:
		return "direction"
	case Topology:
		return "topology"
	case Distance:
		return "distance"
	default:
		return d.String()
	}
}

// Tokens returns the dimension's vocabulary in canonical order.
func (d Dimension) Tokens() []Token {
	switch d {
	case Direction:
		return []Token{North, East, South, West}
	case Topology:
		return []Token{Within, Borders}
	case Distance:
		return []Token{Near, Close, Distant, Far}
	default:
		return nil
	}
}

// ParseDimension accepts the short ("dir") or long ("direction") name.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dir", "direction":
		return Direction, nil
	case "top", "topology":
		return Topology, nil
	case "dis", "distance":
		return Distance, nil
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// Token is a relation value within a dimension.
type Token string

const (
	North Token = "north"
	East  Token = "east"
	South Token = "south"
	West  Token = "west"

	Within  Token = "within"
	Borders Token = "borders"

	Near    Token = "near"
	Close   Token = "close"
	Distant Token = "distant"
	Far     Token = "far"
)

var opposites = map[Token]Token{
	North:   South,
	South:   North,
	East:    West,
	West:    East,
	Near:    Far,
	Far:     Near,
	Close:   Distant,
	Distant: Close,
	Within:  Borders,
	Borders: Within,
}

// Opposite returns the token's opposite. Unknown tokens map to themselves.
func (t Token) Opposite() Token {
	if o, ok := opposites[t]; ok {
		return o
	}
	return t
}

// Dimension reports which family the token belongs to.
func (t Token) Dimension() (Dimension, bool) {
	for _, d := range Dimensions {
		for _, v := range d.Tokens() {
			if v == t {
				return d, true
			}
		}
	}
	return 0, false
}

// In reports whether t belongs to dimension d.
func (t Token) In(d Dimension) bool {
	got, ok := t.Dimension()
	return ok && got == d
}

// ParseToken normalizes s and checks it against the full vocabulary.
func ParseToken(s string) (Token, error) {
	t := Token(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := t.Dimension(); !ok {
		return "", fmt.Errorf("unknown relation token %q", s)
	}
	return t, nil
}
