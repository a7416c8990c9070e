package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

func TestParseAction(t *testing.T) {
	for _, name := range []string{"rotate", "move_left", "move_right", "soft_drop", "hard_drop"} {
		action, err := ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, Action(name), action)
	}

	_, err := ParseAction("hold")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		lines int
		want  int
	}{
		{lines: -1, want: 0},
		{lines: 0, want: 0},
		{lines: 1, want: 40},
		{lines: 2, want: 100},
		{lines: 3, want: 300},
		{lines: 4, want: 1200},
		{lines: 5, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateScore(tt.lines), "lines=%d", tt.lines)
	}
}

func TestGetTickInterval(t *testing.T) {
	fixed := config.DefaultGame()
	assert.Equal(t, 750*time.Millisecond, GetTickInterval(0, fixed))
	assert.Equal(t, 750*time.Millisecond, GetTickInterval(100000, fixed))

	scaled := config.DefaultGame()
	scaled.ScorePerSpeedUp = 100
	scaled.SpeedUpStep = 50 * time.Millisecond

	assert.Equal(t, 750*time.Millisecond, GetTickInterval(0, scaled))
	assert.Equal(t, 750*time.Millisecond, GetTickInterval(99, scaled))
	assert.Equal(t, 700*time.Millisecond, GetTickInterval(100, scaled))
	assert.Equal(t, 650*time.Millisecond, GetTickInterval(250, scaled))
	assert.Equal(t, 200*time.Millisecond, GetTickInterval(10000, scaled), "clamped to the minimum")
}

func TestHandleInputMoves(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, 5, 5)

	assert.True(t, s.HandleInput(ActionMoveLeft))
	assert.Equal(t, tetris.Point{X: 4, Y: 5}, s.CurrentPiece.Location)

	assert.True(t, s.HandleInput(ActionMoveRight))
	assert.True(t, s.HandleInput(ActionMoveRight))
	assert.Equal(t, tetris.Point{X: 6, Y: 5}, s.CurrentPiece.Location)

	assert.True(t, s.HandleInput(ActionRotate))
	assert.ElementsMatch(t, []tetris.Point{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 7, Y: 5}, {X: 8, Y: 5}}, s.CurrentPiece.Cells())

	assert.False(t, s.HandleInput(Action("jump")))
}

func TestHandleInputBlockedByWall(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, tetris.BoardWidth-1, 5)

	assert.False(t, s.HandleInput(ActionMoveRight))
	assert.Equal(t, tetris.Point{X: tetris.BoardWidth - 1, Y: 5}, s.CurrentPiece.Location)
}

func TestHandleInputSoftDrop(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, 5, 5)

	assert.True(t, s.HandleInput(ActionSoftDrop))
	assert.Equal(t, tetris.Point{X: 5, Y: 6}, s.CurrentPiece.Location)
	assert.False(t, s.PiecePlaced())

	// 床に着いた状態ではその場で固定される
	setCurrentPiece(s, tetris.TypeI, 5, tetris.BoardHeight-3)
	assert.True(t, s.HandleInput(ActionSoftDrop))
	assert.True(t, s.PiecePlaced())

	cell, err := s.Board.Cell(tetris.Point{X: 5, Y: tetris.BoardHeight - 1})
	require.NoError(t, err)
	assert.Equal(t, tetris.BlockI, cell)

	// 次のピースが出るまで入力は受け付けない
	assert.False(t, s.HandleInput(ActionMoveLeft))
}

func TestHandleInputHardDropSpawnsNextPiece(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, 5, 0)
	next := s.NextPiece.Type

	require.True(t, s.HandleInput(ActionHardDrop))
	require.True(t, s.PiecePlaced())

	s.AdvanceTime(0)

	assert.False(t, s.PiecePlaced())
	assert.Equal(t, next, s.CurrentPiece.Type)
	assert.Equal(t, s.Board.SpawnLocation(), s.CurrentPiece.Location)
	assert.Equal(t, 4, s.Board.OccupiedRows())
	assert.Equal(t, 0, s.Score)
}

func TestDropCompletesBottomRow(t *testing.T) {
	s := newTestState(t, nil)
	bottom := tetris.BoardHeight - 1
	for x := 0; x < tetris.BoardWidth; x++ {
		if x != 5 {
			s.Board.SetCell(tetris.Point{X: x, Y: bottom}, tetris.BlockJ)
		}
	}
	setCurrentPiece(s, tetris.TypeI, 5, 0)

	require.True(t, s.HandleInput(ActionHardDrop))
	s.AdvanceTime(0)

	assert.Equal(t, 40, s.Score)
	assert.Equal(t, 1, s.LinesCleared)
	assert.Equal(t, 3, s.Board.OccupiedRows())
	for y := bottom - 2; y <= bottom; y++ {
		cell, err := s.Board.Cell(tetris.Point{X: 5, Y: y})
		require.NoError(t, err)
		assert.Equal(t, tetris.BlockI, cell, "row %d", y)
	}
	cell, err := s.Board.Cell(tetris.Point{X: 4, Y: bottom})
	require.NoError(t, err)
	assert.Equal(t, tetris.BlockEmpty, cell)
}

func TestLineClearScoring(t *testing.T) {
	for lines := 0; lines <= 4; lines++ {
		s := newTestState(t, nil)
		for row := tetris.BoardHeight - lines; row < tetris.BoardHeight; row++ {
			require.NoError(t, s.Board.FillRow(row, tetris.BlockT))
		}
		s.piecePlaced = true

		s.AdvanceTime(0)

		assert.Equal(t, CalculateScore(lines), s.Score, "lines=%d", lines)
		assert.Equal(t, lines, s.LinesCleared)
		assert.Equal(t, 0, s.Board.OccupiedRows())
	}
}

func TestLevelAndTickIntervalFollowProgress(t *testing.T) {
	s := newTestState(t, func(g *config.Game) {
		g.LevelUpLines = 2
		g.ScorePerSpeedUp = 40
		g.SpeedUpStep = 50 * time.Millisecond
	})
	for row := tetris.BoardHeight - 4; row < tetris.BoardHeight; row++ {
		require.NoError(t, s.Board.FillRow(row, tetris.BlockO))
	}
	s.piecePlaced = true

	s.AdvanceTime(0)

	assert.Equal(t, 1200, s.Score)
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 200*time.Millisecond, s.TickInterval())
}

func TestAdvanceTimeGravity(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, 5, 0)

	s.AdvanceTime(749 * time.Millisecond)
	assert.Equal(t, 0, s.CurrentPiece.Location.Y)

	s.AdvanceTime(time.Millisecond)
	assert.Equal(t, 1, s.CurrentPiece.Location.Y)

	// 長いフレームでは複数回落下する
	s.AdvanceTime(4 * 750 * time.Millisecond)
	assert.Equal(t, 5, s.CurrentPiece.Location.Y)

	// 負の経過時間は無視される
	s.AdvanceTime(-time.Hour)
	assert.Equal(t, 5, s.CurrentPiece.Location.Y)
}

func TestAdvanceTimeStopsAfterLock(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, 5, 0)

	// 着地まで16回の落下と固定1回で足りるが、それ以上の時間を一度に渡す
	s.AdvanceTime(30 * 750 * time.Millisecond)

	cell, err := s.Board.Cell(tetris.Point{X: 5, Y: tetris.BoardHeight - 1})
	require.NoError(t, err)
	assert.Equal(t, tetris.BlockI, cell)
	assert.Equal(t, 4, s.Board.OccupiedRows())
	assert.Equal(t, s.Board.SpawnLocation(), s.CurrentPiece.Location, "new piece should not fall in the same frame")

	// 固定前に溜まっていた時間は次のフレームに持ち越されない
	s.AdvanceTime(16 * time.Millisecond)
	assert.Equal(t, s.Board.SpawnLocation(), s.CurrentPiece.Location)

	s.AdvanceTime(s.TickInterval())
	assert.Equal(t, 1, s.CurrentPiece.Location.Y)
}

func TestInputLockDiscardsPendingTime(t *testing.T) {
	s := newTestState(t, nil)
	setCurrentPiece(s, tetris.TypeI, 5, 0)
	s.AdvanceTime(700 * time.Millisecond)

	require.True(t, s.HandleInput(ActionHardDrop))
	s.AdvanceTime(0)
	s.AdvanceTime(100 * time.Millisecond)

	assert.Equal(t, 0, s.CurrentPiece.Location.Y)
}
