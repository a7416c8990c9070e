package tetris

import (
	"errors"
	"fmt"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/config"
)

// ErrUnknownAction は未定義の操作名が渡された場合に返されます。
var ErrUnknownAction = errors.New("unknown action")

// Action はプレイヤーの入力（操作）です。入力側のアダプタからそのまま渡されます。
type Action string

const (
	ActionRotate    Action = "rotate"     // 時計回りに回転
	ActionMoveLeft  Action = "move_left"  // 左へ1マス
	ActionMoveRight Action = "move_right" // 右へ1マス
	ActionSoftDrop  Action = "soft_drop"  // 下へ1マス、動けなければその場で固定
	ActionHardDrop  Action = "hard_drop"  // 着地点まで落として固定
)

// ParseAction は文字列をActionに変換します。
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionRotate, ActionMoveLeft, ActionMoveRight, ActionSoftDrop, ActionHardDrop:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// lineClearScores は一度に消したライン数ごとの得点です。
var lineClearScores = [...]int{0, 40, 100, 300, 1200}

// CalculateScore は一度に消したライン数に対する得点を返します。
// 0ライン、または範囲外の値では0を返します。
func CalculateScore(clearedLines int) int {
	if clearedLines < 0 || clearedLines >= len(lineClearScores) {
		return 0
	}
	return lineClearScores[clearedLines]
}

// GetTickInterval は現在のスコアに基づいた自動落下間隔を計算して返します。
// ScorePerSpeedUp が0の場合は常に MaxTickInterval を返します。
func GetTickInterval(score int, cfg config.Game) time.Duration {
	interval := cfg.MaxTickInterval
	if cfg.ScorePerSpeedUp > 0 {
		interval -= time.Duration(score/cfg.ScorePerSpeedUp) * cfg.SpeedUpStep
	}
	if interval < cfg.MinTickInterval {
		interval = cfg.MinTickInterval
	}
	return interval
}

// HandleInput はプレイヤーの入力に基づいてゲーム状態を更新します。
//
// Parameters:
//
//	action : プレイヤーが実行したアクション
//
// Returns:
//
//	bool: ゲーム状態が実際に変更された場合はtrue
func (s *GameState) HandleInput(action Action) bool {
	// 固定済みのピースは次の AdvanceTime で入れ替わるまで操作させない
	if s.Status != StatusPlaying || s.CurrentPiece == nil || s.piecePlaced {
		return false
	}

	switch action {
	case ActionRotate:
		return s.AttemptRotate()
	case ActionMoveLeft:
		return s.AttemptMove(-1, 0)
	case ActionMoveRight:
		return s.AttemptMove(1, 0)
	case ActionSoftDrop:
		if !s.AttemptMove(0, 1) {
			s.Lock()
		}
		return true
	case ActionHardDrop:
		s.HardDrop()
		s.Lock()
		return true
	}
	return false
}

// AdvanceTime はフレームごとに呼ばれ、経過時間に応じて自動落下とピースの入れ替えを行います。
//
// 溜まった時間が落下間隔を超えている間だけ落下を繰り返すので、長いフレームでも遅れを取り戻せます。
// ピースが固定されたフレームではそれ以上落下させず、残りの時間を捨てて次のピースを出現させます。
func (s *GameState) AdvanceTime(elapsed time.Duration) {
	if s.Status != StatusPlaying {
		return
	}
	if elapsed > 0 {
		s.sinceLastTick += elapsed
	}

	for !s.piecePlaced && s.sinceLastTick >= s.tickInterval {
		s.tick()
		s.sinceLastTick -= s.tickInterval
	}

	if s.piecePlaced {
		s.handlePieceLock()
	}
}

// tick はピースを1マス落とし、落とせなければ固定します。
func (s *GameState) tick() {
	if !s.AttemptMove(0, 1) {
		s.Lock()
	}
}

// handlePieceLock はピースがボードに固定された後の処理をすべて行います。
// 次のピースの出現、ラインクリア、スコア加算、落下間隔の更新、ゲームオーバー判定が含まれます。
func (s *GameState) handlePieceLock() {
	s.piecePlaced = false
	// 固定までに溜まった時間は次のピースに持ち越さない
	s.sinceLastTick = 0

	if !s.spawnNextPiece() {
		s.handleGameOver()
		return
	}
	s.NextPiece = s.pickNextPiece()

	clearedLines := s.Board.RemoveCompletedRows()
	s.Score += CalculateScore(clearedLines)
	s.LinesCleared += clearedLines
	s.Level = s.LinesCleared/s.cfg.LevelUpLines + 1
	s.tickInterval = GetTickInterval(s.Score, s.cfg)
}
