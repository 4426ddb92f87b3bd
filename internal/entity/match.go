package entity

import (
	"sync"

	"github.com/gridrooms/tictactoe-server/internal/apperror"
)

const (
	MarkX        = "X"
	MarkO        = "O"
	MarkObserver = "observer"

	EmptyCell = ""

	BoardSize = 3
)

// Board is the 3x3 grid; EmptyCell marks an unclaimed cell.
type Board [BoardSize][BoardSize]string

// Snapshot is a consistent read-only view of a match, safe to serialize
// and broadcast to a room.
type Snapshot struct {
	Board    Board  `json:"board"`
	Turn     string `json:"current_turn"`
	Winner   string `json:"winner,omitempty"`
	GameOver bool   `json:"game_over"`
}

// Match is one game instance: its board, turn state and seat bindings.
// Every method serializes on the match's own lock, so operations on the
// same match are mutually exclusive while distinct matches never contend.
type Match struct {
	id string

	mu       sync.Mutex
	board    Board
	turn     string
	seats    map[string]string // mark -> connection id
	winner   string
	finished bool
}

// NewMatch - creates a match with an empty board, X to move and both seats unbound.
func NewMatch(id string) *Match {
	return &Match{
		id:    id,
		turn:  MarkX,
		seats: make(map[string]string),
	}
}

func (that *Match) ID() string {
	return that.id
}

// AssignSeat - binds the connection to the first free seat, X before O.
// A connection that already holds a seat gets the same seat back, and
// once both seats are taken every later caller joins as an observer.
func (that *Match) AssignSeat(connID string) string {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, mark := range [...]string{MarkX, MarkO} {
		if that.seats[mark] == connID {
			return mark
		}
	}

	if _, ok := that.seats[MarkX]; !ok {
		that.seats[MarkX] = connID
		return MarkX
	}

	if _, ok := that.seats[MarkO]; !ok {
		that.seats[MarkO] = connID
		return MarkO
	}

	return MarkObserver
}

// SeatHolder - returns the connection bound to the given mark.
func (that *Match) SeatHolder(mark string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	connID, ok := that.seats[mark]

	return connID, ok
}

// HoldsSeat - reports whether the connection occupies either seat.
func (that *Match) HoldsSeat(connID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.seats[MarkX] == connID || that.seats[MarkO] == connID
}

// BothSeatsTaken - reports whether X and O are both bound.
func (that *Match) BothSeatsTaken() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, hasX := that.seats[MarkX]
	_, hasO := that.seats[MarkO]

	return hasX && hasO
}

// VacateSeats - releases every seat held by the connection and returns
// the vacated marks. A vacated seat may be claimed by a later joiner.
func (that *Match) VacateSeats(connID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var vacated []string
	for mark, holder := range that.seats {
		if holder == connID {
			delete(that.seats, mark)
			vacated = append(vacated, mark)
		}
	}

	return vacated
}

// AttemptMove - validates and applies a move for the given mark. On any
// failure the board is left untouched; a terminal match freezes both the
// board and the turn.
func (that *Match) AttemptMove(row, col int, mark string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return apperror.ErrInvalidCell
	}

	if that.finished {
		return apperror.ErrMatchFinished
	}

	if that.turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.board[row][col] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.board[row][col] = mark

	switch {
	case that.lineCompleted(row, col, mark):
		that.winner = mark
		that.finished = true
	case that.boardFull():
		that.finished = true
	default:
		that.turn = toggleMark(mark)
	}

	return nil
}

// Snapshot - returns a copy of the visible match state under the lock,
// so no partial update is ever observed.
func (that *Match) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return Snapshot{
		Board:    that.board,
		Turn:     that.turn,
		Winner:   that.winner,
		GameOver: that.finished,
	}
}

// lineCompleted - checks only the lines passing through the last move:
// its row, its column and, when the cell lies on one, the diagonals.
// Only those lines can newly become winning.
func (that *Match) lineCompleted(row, col int, mark string) bool {
	if that.board[row][0] == mark && that.board[row][1] == mark && that.board[row][2] == mark {
		return true
	}

	if that.board[0][col] == mark && that.board[1][col] == mark && that.board[2][col] == mark {
		return true
	}

	if row == col && that.board[0][0] == mark && that.board[1][1] == mark && that.board[2][2] == mark {
		return true
	}

	if row+col == BoardSize-1 && that.board[0][2] == mark && that.board[1][1] == mark && that.board[2][0] == mark {
		return true
	}

	return false
}

func (that *Match) boardFull() bool {
	for _, row := range that.board {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

func toggleMark(currentMark string) string {
	if currentMark == MarkX {
		return MarkO
	}

	return MarkX
}
