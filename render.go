package main

import (
	"fmt"
	"strings"

	"expit/game"

	"github.com/muesli/termenv"
)

// renderExample prints every position of a diagnostic game, marks colored by
// seat, followed by the result for the first seat.
func renderExample(output *termenv.Output, iteration int, positions []game.Position) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", output.String(fmt.Sprintf("diagnostic game %d (%d moves)", iteration, len(positions))).Bold())
	if len(positions) == 0 {
		return sb.String()
	}

	x := output.String("X").Foreground(output.Color("1")).String()
	o := output.String("O").Foreground(output.Color("4")).String()
	for _, position := range positions {
		board := fmt.Sprint(position.State)
		board = strings.NewReplacer("X", x, "O", o).Replace(board)
		fmt.Fprintf(&sb, "%s\n\n", board)
	}

	var result string
	switch value := positions[0].Value; {
	case value > 0:
		result = "seat0 won"
	case value < 0:
		result = "seat1 won"
	default:
		result = "draw"
	}
	fmt.Fprintf(&sb, "%s\n", result)
	return sb.String()
}
