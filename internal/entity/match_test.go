package entity

import (
	"sync"
	"testing"

	"github.com/gridrooms/tictactoe-server/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatch(t *testing.T) {
	// Given: a freshly created match
	match := NewMatch("123")

	// When: taking a snapshot of its state
	snapshot := match.Snapshot()

	// Then: the board is empty, X moves first and the match is not over
	expected := Snapshot{
		Board:    Board{},
		Turn:     MarkX,
		Winner:   "",
		GameOver: false,
	}

	require.Equal(t, expected, snapshot)
	assert.Equal(t, "123", match.ID())
	assert.False(t, match.BothSeatsTaken())
}

func TestMatch_AssignSeat(t *testing.T) {
	t.Run("Seats are handed out first-come, X then O, then observer", func(t *testing.T) {
		// Given: a fresh match
		match := NewMatch("123")

		// When: three different connections request a seat
		first := match.AssignSeat("conn-1")
		second := match.AssignSeat("conn-2")
		third := match.AssignSeat("conn-3")

		// Then: the first gets X, the second O and the third only observes
		assert.Equal(t, MarkX, first)
		assert.Equal(t, MarkO, second)
		assert.Equal(t, MarkObserver, third)
	})

	t.Run("Re-joining connection gets its existing seat back", func(t *testing.T) {
		// Given: a match where conn-1 already holds X
		match := NewMatch("123")
		require.Equal(t, MarkX, match.AssignSeat("conn-1"))

		// When: the same connection requests a seat again
		mark := match.AssignSeat("conn-1")

		// Then: it keeps X and O stays free for the next joiner
		assert.Equal(t, MarkX, mark)
		assert.Equal(t, MarkO, match.AssignSeat("conn-2"))
	})

	t.Run("Vacated seat can be claimed by a later joiner", func(t *testing.T) {
		// Given: a match where conn-1 held X and disconnected
		match := NewMatch("123")
		require.Equal(t, MarkX, match.AssignSeat("conn-1"))

		vacated := match.VacateSeats("conn-1")
		require.Equal(t, []string{MarkX}, vacated)

		// When: a new connection joins
		mark := match.AssignSeat("conn-2")

		// Then: it takes over the vacated X seat
		assert.Equal(t, MarkX, mark)
	})
}

func TestMatch_SeatHolder(t *testing.T) {
	// Given: a match with X bound to conn-1
	match := NewMatch("123")
	match.AssignSeat("conn-1")

	// When: looking up the seat bindings
	holder, ok := match.SeatHolder(MarkX)
	_, hasO := match.SeatHolder(MarkO)

	// Then: X belongs to conn-1 and O is unbound
	require.True(t, ok)
	assert.Equal(t, "conn-1", holder)
	assert.False(t, hasO)
	assert.True(t, match.HoldsSeat("conn-1"))
	assert.False(t, match.HoldsSeat("conn-2"))
}

func TestMatch_AttemptMove(t *testing.T) {
	t.Run("Accepted move places the mark and flips the turn", func(t *testing.T) {
		// Given: a fresh match
		match := NewMatch("123")

		// When: X plays the center cell
		err := match.AttemptMove(1, 1, MarkX)
		require.NoError(t, err)

		// Then: the mark is placed and it is O's turn
		snapshot := match.Snapshot()
		assert.Equal(t, MarkX, snapshot.Board[1][1])
		assert.Equal(t, MarkO, snapshot.Turn)
		assert.False(t, snapshot.GameOver)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a match where X already took the corner
		match := NewMatch("123")
		require.NoError(t, match.AttemptMove(0, 0, MarkX))

		// When: O plays the same cell
		err := match.AttemptMove(0, 0, MarkO)

		// Then: the move is rejected and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)

		snapshot := match.Snapshot()
		assert.Equal(t, MarkX, snapshot.Board[0][0])
		assert.Equal(t, MarkO, snapshot.Turn)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a fresh match, X to move
		match := NewMatch("123")

		// When: O tries to move first
		err := match.AttemptMove(0, 0, MarkO)

		// Then: the move is rejected and the board stays empty
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, Board{}, match.Snapshot().Board)
	})

	t.Run("Error on out-of-range coordinates", func(t *testing.T) {
		// Given: a fresh match
		match := NewMatch("123")

		// When/Then: every out-of-range coordinate is rejected explicitly
		assert.ErrorIs(t, match.AttemptMove(3, 0, MarkX), apperror.ErrInvalidCell)
		assert.ErrorIs(t, match.AttemptMove(0, 3, MarkX), apperror.ErrInvalidCell)
		assert.ErrorIs(t, match.AttemptMove(-1, 0, MarkX), apperror.ErrInvalidCell)
		assert.ErrorIs(t, match.AttemptMove(0, -1, MarkX), apperror.ErrInvalidCell)

		assert.Equal(t, Board{}, match.Snapshot().Board)
	})

	t.Run("Completing a row wins immediately and freezes the match", func(t *testing.T) {
		// Given: alternating legal moves bringing X to two in a row
		match := NewMatch("123")
		require.NoError(t, match.AttemptMove(0, 0, MarkX))
		require.NoError(t, match.AttemptMove(1, 0, MarkO))
		require.NoError(t, match.AttemptMove(0, 1, MarkX))
		require.NoError(t, match.AttemptMove(1, 1, MarkO))

		// When: X completes the top row
		require.NoError(t, match.AttemptMove(0, 2, MarkX))

		// Then: X wins on that move and no further move is accepted
		snapshot := match.Snapshot()
		assert.Equal(t, MarkX, snapshot.Winner)
		assert.True(t, snapshot.GameOver)
		assert.Equal(t, MarkX, snapshot.Turn) // frozen, never flipped

		err := match.AttemptMove(2, 2, MarkO)
		require.ErrorIs(t, err, apperror.ErrMatchFinished)
		assert.Equal(t, snapshot, match.Snapshot())
	})

	t.Run("Column win", func(t *testing.T) {
		// Given: X stacking the first column
		match := NewMatch("123")
		require.NoError(t, match.AttemptMove(0, 0, MarkX))
		require.NoError(t, match.AttemptMove(0, 1, MarkO))
		require.NoError(t, match.AttemptMove(1, 0, MarkX))
		require.NoError(t, match.AttemptMove(0, 2, MarkO))

		// When: X completes the column
		require.NoError(t, match.AttemptMove(2, 0, MarkX))

		// Then: X is the winner
		snapshot := match.Snapshot()
		assert.Equal(t, MarkX, snapshot.Winner)
		assert.True(t, snapshot.GameOver)
	})

	t.Run("Main diagonal win", func(t *testing.T) {
		// Given: X on (0,0) and (1,1)
		match := NewMatch("123")
		require.NoError(t, match.AttemptMove(0, 0, MarkX))
		require.NoError(t, match.AttemptMove(0, 1, MarkO))
		require.NoError(t, match.AttemptMove(1, 1, MarkX))
		require.NoError(t, match.AttemptMove(0, 2, MarkO))

		// When: X completes the diagonal
		require.NoError(t, match.AttemptMove(2, 2, MarkX))

		// Then: X is the winner
		assert.Equal(t, MarkX, match.Snapshot().Winner)
	})

	t.Run("Anti-diagonal win", func(t *testing.T) {
		// Given: O claiming the anti-diagonal
		match := NewMatch("123")
		require.NoError(t, match.AttemptMove(0, 0, MarkX))
		require.NoError(t, match.AttemptMove(0, 2, MarkO))
		require.NoError(t, match.AttemptMove(0, 1, MarkX))
		require.NoError(t, match.AttemptMove(1, 1, MarkO))
		require.NoError(t, match.AttemptMove(2, 2, MarkX))

		// When: O completes the anti-diagonal
		require.NoError(t, match.AttemptMove(2, 0, MarkO))

		// Then: O is the winner
		snapshot := match.Snapshot()
		assert.Equal(t, MarkO, snapshot.Winner)
		assert.True(t, snapshot.GameOver)
	})

	t.Run("Full board with no line is a draw", func(t *testing.T) {
		// Given: a sequence of legal moves filling the board without a winner
		//   X O X
		//   X O O
		//   O X X
		match := NewMatch("123")
		moves := []struct {
			row, col int
			mark     string
		}{
			{0, 0, MarkX}, {0, 1, MarkO},
			{0, 2, MarkX}, {1, 1, MarkO},
			{1, 0, MarkX}, {1, 2, MarkO},
			{2, 1, MarkX}, {2, 0, MarkO},
			{2, 2, MarkX},
		}

		for _, move := range moves {
			require.NoError(t, match.AttemptMove(move.row, move.col, move.mark))
		}

		// Then: the match is over with no winner and accepts no more moves
		snapshot := match.Snapshot()
		assert.True(t, snapshot.GameOver)
		assert.Empty(t, snapshot.Winner)
		assert.ErrorIs(t, match.AttemptMove(0, 0, MarkO), apperror.ErrMatchFinished)
	})
}

func TestMatch_ConcurrentMoves(t *testing.T) {
	// Given: a fresh match, X to move
	match := NewMatch("123")

	// When: two goroutines race to play X's turn on different cells
	var wg sync.WaitGroup

	errs := make([]error, 2)
	cells := [][2]int{{0, 0}, {1, 1}}

	for i, cell := range cells {
		i, cell := i, cell
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = match.AttemptMove(cell[0], cell[1], MarkX)
		}()
	}

	wg.Wait()

	// Then: exactly one attempt succeeds for that turn
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, MarkO, match.Snapshot().Turn)
}
