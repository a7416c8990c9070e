package tetris

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// Status はゲームの進行状態です。
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusGameOver Status = "game_over" // AutoReset が無効な場合のみ
)

// GameState は1人分のテトリスのゲーム状態とルールエンジンです。
// 単一のゴルーチンから使うことを想定しており、内部でロックは取りません。
// 複数のゴルーチンから使う場合は SessionManager を経由してください。
type GameState struct {
	ID           string            `json:"id"`
	Board        tetris.Board      `json:"board"`         // 現在のゲームボード
	CurrentPiece *tetris.GridPiece `json:"current_piece"` // 現在操作中のテトリミノ
	NextPiece    *tetris.GridPiece `json:"next_piece"`    // 次に出現するテトリミノ
	Score        int               `json:"score"`
	LinesCleared int               `json:"lines_cleared"`
	Level        int               `json:"level"`
	Status       Status            `json:"status"`
	GamesPlayed  int               `json:"games_played"` // Reset された回数（最初のゲームを含む）

	cfg           config.Game
	randGenerator *rand.Rand
	pieceQueue    []tetris.PieceType // RandomizerBag のときの次のピースのキュー
	sinceLastTick time.Duration      // 最後の自動落下からの経過時間
	tickInterval  time.Duration      // 現在の自動落下間隔
	piecePlaced   bool               // このフレームでピースが固定されたかどうか
	spawnCounts   *intmap.Map[tetris.PieceType, int]
}

// NewGameState は新しいゲーム状態を初期化して返します。
//
// Parameters:
//
//	cfg : ルール設定
//	rng : ピース選択に使う乱数生成器。nilの場合は現在時刻をシードにして生成します
//
// Returns:
//
//	*GameState: 最初のピースが出現した状態のゲーム
//	error: 設定が不正な場合
func NewGameState(cfg config.Game, rng *rand.Rand) (*GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create game state: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &GameState{
		ID:            uuid.New().String(),
		Board:         tetris.NewBoard(),
		cfg:           cfg,
		randGenerator: rng,
		spawnCounts:   intmap.New[tetris.PieceType, int](tetris.PieceTypeCount),
	}
	s.Reset()
	return s, nil
}

// Reset はスコアとボードを初期化し、新しいゲームを始めます。
func (s *GameState) Reset() {
	s.Score = 0
	s.LinesCleared = 0
	s.Level = 1
	s.Status = StatusPlaying
	s.GamesPlayed++
	s.sinceLastTick = 0
	s.piecePlaced = false
	s.tickInterval = GetTickInterval(0, s.cfg)
	s.Board.Clear()
	s.pieceQueue = nil
	s.spawnCounts.Clear()

	s.NextPiece = s.pickNextPiece()
	s.spawnNextPiece()
	s.NextPiece = s.pickNextPiece()
}

// TickInterval は現在の自動落下間隔を返します。
func (s *GameState) TickInterval() time.Duration {
	return s.tickInterval
}

// PiecePlaced は固定済みのピースが次のピースとの入れ替えを待っているかどうかを返します。
func (s *GameState) PiecePlaced() bool {
	return s.piecePlaced
}

// IsPositionLegal はピースが左右の壁と底の内側にあり、既存のブロックと重ならないかを判定します。
// 上端より上にはみ出したブロックは許可されます。
func (s *GameState) IsPositionLegal(p *tetris.GridPiece) bool {
	cells := p.Cells()
	return s.Board.IsWithinBorders(cells) && s.Board.AllEmptyAt(cells)
}

// AttemptMove は現在のピースを (dx, dy) だけ動かせる場合に動かします。
// まずクローンを動かして判定し、問題がなければ実際のピースに適用します。
func (s *GameState) AttemptMove(dx, dy int) bool {
	if s.CurrentPiece == nil {
		return false
	}
	tempPiece := s.CurrentPiece.Clone()
	tempPiece.Move(dx, dy)
	if !s.IsPositionLegal(tempPiece) {
		return false
	}
	s.CurrentPiece.Move(dx, dy)
	return true
}

// AttemptRotate は現在のピースを時計回りに回転できる場合に回転させます。
func (s *GameState) AttemptRotate() bool {
	if s.CurrentPiece == nil {
		return false
	}
	tempPiece := s.CurrentPiece.Clone()
	tempPiece.RotateClockwise()
	if !s.IsPositionLegal(tempPiece) {
		return false
	}
	s.CurrentPiece.RotateClockwise()
	return true
}

// HardDrop はピースを動けなくなるまで真下に落とします。固定は行いません。
func (s *GameState) HardDrop() {
	for s.AttemptMove(0, 1) {
	}
}

// Lock は現在のピースをその場でボードに固定します。
// 次のピースは次の AdvanceTime で出現します。
func (s *GameState) Lock() {
	if s.CurrentPiece == nil {
		return
	}
	s.Board.SetCells(s.CurrentPiece.Cells(), s.CurrentPiece.Type.BlockType())
	s.piecePlaced = true
}

// SpawnCount はこのゲームで指定された種類のピースが出現した回数を返します。
func (s *GameState) SpawnCount(t tetris.PieceType) int {
	n, _ := s.spawnCounts.Get(t)
	return n
}

// spawnNextPiece は次のピースを現在のピースとして出現位置に置きます。
// 出現位置にブロックがあって置けない場合はfalseを返します。
func (s *GameState) spawnNextPiece() bool {
	s.CurrentPiece = s.NextPiece.Clone()
	s.CurrentPiece.SetLocation(s.Board.SpawnLocation())
	if !s.IsPositionLegal(s.CurrentPiece) {
		return false
	}
	s.spawnCounts.Put(s.CurrentPiece.Type, s.SpawnCount(s.CurrentPiece.Type)+1)
	return true
}

// pickNextPiece は設定されたランダマイザで次のピースを選びます。
func (s *GameState) pickNextPiece() *tetris.GridPiece {
	var pieceType tetris.PieceType
	if s.cfg.Randomizer == config.RandomizerBag {
		pieceType = s.getNextPieceFromQueue()
	} else {
		pieceType = tetris.RandomPieceType(s.randGenerator)
	}
	return tetris.NewGridPiece(pieceType)
}

// generatePieceQueue は7-bagシステムに基づきピースキューに1バッグ分を追加します。
// 前のバッグの最後のピースと新しいバッグの最初のピースが同じにならないようにします。
func (s *GameState) generatePieceQueue() {
	bag := tetris.AllPieceTypes

	var lastPieceType tetris.PieceType
	hasLastPiece := len(s.pieceQueue) > 0
	if hasLastPiece {
		lastPieceType = s.pieceQueue[len(s.pieceQueue)-1]
	}

	s.randGenerator.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})

	if hasLastPiece && bag[0] == lastPieceType {
		swapIndex := s.randGenerator.Intn(len(bag)-1) + 1
		bag[0], bag[swapIndex] = bag[swapIndex], bag[0]
	}

	s.pieceQueue = append(s.pieceQueue, bag[:]...)
}

// getNextPieceFromQueue はキューから次のピースの種類を取り出します。
// 残りが1バッグ分を下回ったら新しいバッグを補充します。
func (s *GameState) getNextPieceFromQueue() tetris.PieceType {
	if len(s.pieceQueue) < tetris.PieceTypeCount {
		s.generatePieceQueue()
	}
	pieceType := s.pieceQueue[0]
	s.pieceQueue = s.pieceQueue[1:]
	return pieceType
}

// handleGameOver は次のピースを出現させられなかったときに呼ばれます。
func (s *GameState) handleGameOver() {
	log.Printf("[GameState] Game %s over! Final Score: %d, Lines Cleared: %d", s.ID, s.Score, s.LinesCleared)
	if s.cfg.AutoReset {
		s.Reset()
		return
	}
	s.Status = StatusGameOver
}
