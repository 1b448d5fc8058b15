package main

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"battle/engine"
	"battle/game"
	"battle/grid"
	"battle/utils"
)

const (
	emptyCell     = '.'
	contestedCell = '*'
)

// render draws agents as a width x height character grid, one row per y.
// A cell shows the initial of its team, '*' when several teams share it and
// '.' when it is empty. A legend with live agents per team follows.
func render(w io.Writer, width, height int, agents []engine.AgentState) error {
	cells := make(map[grid.Coord]game.Team, len(agents))
	contested := map[grid.Coord]bool{}
	counts := map[game.Team]int{}
	for _, a := range agents {
		counts[a.Team]++
		if team, ok := cells[a.Pos]; ok && team != a.Team {
			contested[a.Pos] = true
		}
		cells[a.Pos] = a.Team
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := grid.Coord{X: x, Y: y}
			switch team, ok := cells[c]; {
			case contested[c]:
				b.WriteRune(contestedCell)
			case ok:
				b.WriteRune(initial(team))
			default:
				b.WriteRune(emptyCell)
			}
		}
		b.WriteByte('\n')
	}

	for _, team := range utils.SortedKeys(counts) {
		fmt.Fprintf(&b, "%c %s: %d\n", initial(team), team, counts[team])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func initial(team game.Team) rune {
	r, _ := utf8.DecodeRuneInString(string(team))
	if r == utf8.RuneError {
		return '?'
	}
	return unicode.ToUpper(r)
}
