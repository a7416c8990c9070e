package tetris

import (
	"errors"
	"fmt"
	"strings"
)

const (
	BoardWidth  = 10 // テトリスボードの幅（列数）
	BoardHeight = 19 // テトリスボードの高さ（行数）
)

// ErrOutOfBounds はボード外の座標や行を読み取ろうとしたときに返されます。
// 読み取りは常に範囲チェックの後に呼ばれる前提のため、これはプログラミングエラーです。
var ErrOutOfBounds = errors.New("position is outside the board")

// BlockType はボード上のブロックの種類を表します。
// BlockEmpty 以外の値は固定されたテトリミノの種類 (PieceType + 1) です。
type BlockType int

const (
	BlockEmpty BlockType = iota // 0: 空のマス
	BlockI                      // 1: I-テトリミノ由来のブロック
	BlockO                      // 2: O-テトリミノ由来のブロック
	BlockT                      // 3: T-テトリミノ由来のブロック
	BlockS                      // 4: S-テトリミノ由来のブロック
	BlockZ                      // 5: Z-テトリミノ由来のブロック
	BlockJ                      // 6: J-テトリミノ由来のブロック
	BlockL                      // 7: L-テトリミノ由来のブロック
)

// PieceType はブロックの元になったテトリミノの種類を返します。
// 空のマスの場合はfalseを返します。
func (b BlockType) PieceType() (PieceType, bool) {
	if b <= BlockEmpty || b > BlockL {
		return 0, false
	}
	return PieceType(b - 1), true
}

// Board はテトリスのゲームボードを表す2次元配列です。
// Board[y][x] でアクセスします。yは行（0が最上段）、xは列です。
// 配列なのでサイズは生成後に変わることはありません。
type Board [BoardHeight][BoardWidth]BlockType

// NewBoard は新しい空のボードを初期化して返します。
// Goの配列はゼロ値（BlockEmpty）で初期化されるため、特別な初期化は不要です。
func NewBoard() Board {
	var board Board
	return board
}

// Clear は全てのマスを空にします。
func (b *Board) Clear() {
	for y := 0; y < BoardHeight; y++ {
		b.fillRow(y, BlockEmpty)
	}
}

// IsValidPoint は座標がボードの範囲内かどうかを返します。
func (b *Board) IsValidPoint(p Point) bool {
	return p.X >= 0 && p.X < BoardWidth && p.Y >= 0 && p.Y < BoardHeight
}

// Cell は指定された座標のブロックを返します。
// 範囲外の座標では ErrOutOfBounds を返します。
func (b *Board) Cell(p Point) (BlockType, error) {
	if !b.IsValidPoint(p) {
		return BlockEmpty, fmt.Errorf("cell %s: %w", p, ErrOutOfBounds)
	}
	return b[p.Y][p.X], nil
}

// SetCell は指定された座標にブロックを書き込みます。
// 落下中のピースはボード上端より上にはみ出すことがあるため、範囲外の座標は無視します。
func (b *Board) SetCell(p Point, block BlockType) {
	if b.IsValidPoint(p) {
		b[p.Y][p.X] = block
	}
}

// SetCells は全ての座標に同じブロックを書き込みます。範囲外の座標は個別に無視されます。
func (b *Board) SetCells(points []Point, block BlockType) {
	for _, p := range points {
		b.SetCell(p, block)
	}
}

// AllEmptyAt は範囲内の全ての座標が空であればtrueを返します。
// 範囲外の座標は判定対象から外れます（上端より上にあるブロックを許可するため）。
func (b *Board) AllEmptyAt(points []Point) bool {
	for _, p := range points {
		if b.IsValidPoint(p) && b[p.Y][p.X] != BlockEmpty {
			return false
		}
	}
	return true
}

// IsWithinBorders は全ての座標が左右の壁と底の内側にあるかどうかを返します。
// 上端はチェックしないので、y < 0 の座標は許可されます。
func (b *Board) IsWithinBorders(points []Point) bool {
	for _, p := range points {
		if p.X < 0 || p.X >= BoardWidth || p.Y >= BoardHeight {
			return false
		}
	}
	return true
}

// IsRowFull は指定された行に空のマスが一つもなければtrueを返します。
func (b *Board) IsRowFull(row int) (bool, error) {
	if row < 0 || row >= BoardHeight {
		return false, fmt.Errorf("row %d: %w", row, ErrOutOfBounds)
	}
	for x := 0; x < BoardWidth; x++ {
		if b[row][x] == BlockEmpty {
			return false, nil
		}
	}
	return true, nil
}

// FillRow は指定された行を全て同じブロックで埋めます。
func (b *Board) FillRow(row int, block BlockType) error {
	if row < 0 || row >= BoardHeight {
		return fmt.Errorf("row %d: %w", row, ErrOutOfBounds)
	}
	b.fillRow(row, block)
	return nil
}

func (b *Board) fillRow(row int, block BlockType) {
	for x := 0; x < BoardWidth; x++ {
		b[row][x] = block
	}
}

// CompletedRows は揃っている行のインデックスを昇順で返します。
func (b *Board) CompletedRows() []int {
	var rows []int
	for y := 0; y < BoardHeight; y++ {
		if full, _ := b.IsRowFull(y); full {
			rows = append(rows, y)
		}
	}
	return rows
}

// CollapseRow は指定された行を消し、その上の行を全て1行ずつ下にずらします。
// 最上段には空の行が入ります。
func (b *Board) CollapseRow(row int) error {
	if row < 0 || row >= BoardHeight {
		return fmt.Errorf("row %d: %w", row, ErrOutOfBounds)
	}
	for y := row - 1; y >= 0; y-- {
		b[y+1] = b[y]
	}
	b.fillRow(0, BlockEmpty)
	return nil
}

// RemoveCompletedRows は揃った行を全て消し、消した行数を返します。
//
// CollapseRow は対象行より上だけをずらすので、昇順に処理すれば
// 消す前に調べた行インデックスがそのまま使えます。
func (b *Board) RemoveCompletedRows() int {
	rows := b.CompletedRows()
	for _, row := range rows {
		// CompletedRowsが返す行は常に範囲内
		_ = b.CollapseRow(row)
	}
	return len(rows)
}

// SpawnLocation は新しいピースを出現させる位置（中央の最上段）を返します。
func (b *Board) SpawnLocation() Point {
	return Point{X: BoardWidth / 2, Y: 0}
}

// OccupiedRows はブロックが一つ以上ある行の数を返します。
func (b *Board) OccupiedRows() int {
	count := 0
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] != BlockEmpty {
				count++
				break
			}
		}
	}
	return count
}

// String はボードをテキストで返します（デバッグ用）。
// 空のマスは '.'、ブロックはテトリミノの種類の文字で表示します。
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			if t, ok := b[y][x].PieceType(); ok {
				sb.WriteString(PieceTypeToString(t))
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
