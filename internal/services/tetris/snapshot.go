package tetris

import (
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// PieceView は描画側に渡すピースの情報です。
type PieceView struct {
	Type  string         `json:"type"`
	Color string         `json:"color"`
	Cells []tetris.Point `json:"cells"` // ボード上の絶対座標（次のピースは (0,0) 基準）
}

// Snapshot は描画側が1フレームごとに読むゲーム状態のコピーです。
// 元のGameStateとはメモリを共有しないため、別のゴルーチンに渡しても安全です。
type Snapshot struct {
	ID           string         `json:"id"`
	Board        tetris.Board   `json:"board"`
	CurrentPiece *PieceView     `json:"current_piece"`
	NextPiece    *PieceView     `json:"next_piece"`
	Score        int            `json:"score"`
	LinesCleared int            `json:"lines_cleared"`
	Level        int            `json:"level"`
	Status       Status         `json:"status"`
	GamesPlayed  int            `json:"games_played"`
	TickInterval time.Duration  `json:"tick_interval"`
	SpawnCounts  map[string]int `json:"spawn_counts"`
}

func newPieceView(p *tetris.GridPiece) *PieceView {
	if p == nil {
		return nil
	}
	return &PieceView{
		Type:  tetris.PieceTypeToString(p.Type),
		Color: p.Color.String(),
		Cells: p.Cells(),
	}
}

// Snapshot は現在の状態のコピーを返します。
func (s *GameState) Snapshot() Snapshot {
	counts := make(map[string]int, tetris.PieceTypeCount)
	for _, t := range tetris.AllPieceTypes {
		if n := s.SpawnCount(t); n > 0 {
			counts[tetris.PieceTypeToString(t)] = n
		}
	}

	return Snapshot{
		ID:           s.ID,
		Board:        s.Board,
		CurrentPiece: newPieceView(s.CurrentPiece),
		NextPiece:    newPieceView(s.NextPiece),
		Score:        s.Score,
		LinesCleared: s.LinesCleared,
		Level:        s.Level,
		Status:       s.Status,
		GamesPlayed:  s.GamesPlayed,
		TickInterval: s.tickInterval,
		SpawnCounts:  counts,
	}
}
