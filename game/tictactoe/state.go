// Package tictactoe is a small two-seat game used to exercise the trainer
// end to end.
package tictactoe

import (
	"strings"

	"expit/game"
)

const Size = 3

// Cell is a board index in [0, 9), and the move placing a mark there.
type Cell int

func (c Cell) String() string {
	return string([]byte{byte('a' + int(c)%Size), byte('1' + int(c)/Size)})
}

var lines = [...][3]Cell{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// State is an immutable board. Seat 0 plays X and moves first.
type State struct {
	board  [Size * Size]int8 // 0 empty, 1 seat 0, 2 seat 1
	toMove game.Seat
	moves  int
}

func New() *State {
	return &State{}
}

func (s *State) Seat() game.Seat {
	return s.toMove
}

func (s *State) LegalMoves() []game.Move {
	if _, over := s.Outcome(); over {
		return nil
	}
	moves := make([]game.Move, 0, len(s.board)-s.moves)
	for i, mark := range s.board {
		if mark == 0 {
			moves = append(moves, Cell(i))
		}
	}
	return moves
}

func (s *State) Play(move game.Move) game.State {
	cell, ok := move.(Cell)
	if !ok {
		panic("unexpected move type")
	}
	if s.board[cell] != 0 {
		panic("cell already taken: " + cell.String())
	}
	next := *s
	next.board[cell] = int8(s.toMove) + 1
	next.toMove = 1 - s.toMove
	next.moves++
	return &next
}

// Hash encodes the board in base 3 followed by the seat to move.
func (s *State) Hash() game.StateHash {
	var h game.StateHash
	for _, mark := range s.board {
		h = h*3 + game.StateHash(mark)
	}
	return h*2 + game.StateHash(s.toMove)
}

func (s *State) Outcome() (game.Outcome, bool) {
	for _, line := range lines {
		mark := s.board[line[0]]
		if mark != 0 && mark == s.board[line[1]] && mark == s.board[line[2]] {
			return game.Outcome{Winner: game.Seat(mark - 1)}, true
		}
	}
	if s.moves == len(s.board) {
		return game.Outcome{Winner: game.NoSeat}, true
	}
	return game.Outcome{}, false
}

func (s *State) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch s.board[row*Size+col] {
			case 1:
				sb.WriteByte('X')
			case 2:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		if row < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
