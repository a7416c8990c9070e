package tetris

import (
	"math/rand"
	"strings"
)

// PieceType はテトリミノの種類を表します。
type PieceType int

const (
	TypeI PieceType = iota // 0: I-ミノ
	TypeO                  // 1: O-ミノ
	TypeT                  // 2: T-ミノ
	TypeS                  // 3: S-ミノ
	TypeZ                  // 4: Z-ミノ
	TypeJ                  // 5: J-ミノ
	TypeL                  // 6: L-ミノ

	PieceTypeCount = 7 // テトリミノの種類数
)

// AllPieceTypes は全種類のテトリミノを定義順に並べたものです。
var AllPieceTypes = [PieceTypeCount]PieceType{TypeI, TypeO, TypeT, TypeS, TypeZ, TypeJ, TypeL}

// Color はテトリミノの表示色です。描画側はこの値でスプライトを選びます。
type Color int

const (
	ColorRed Color = iota
	ColorOrange
	ColorYellow
	ColorGreen
	ColorBlueLight
	ColorBlueDark
	ColorPurple
)

var colorNames = [...]string{"red", "orange", "yellow", "green", "blue_light", "blue_dark", "purple"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return "unknown"
	}
	return colorNames[c]
}

// pieceShapes は各PieceTypeの初期状態におけるブロックの相対座標です。
// 座標はピースの回転軸 (0,0) からの相対値で、yは下向きが正です。
var pieceShapes = [PieceTypeCount][4]Point{
	TypeI: {{0, -1}, {0, 0}, {0, 1}, {0, 2}},
	TypeO: {{0, 1}, {1, 1}, {0, 0}, {1, 0}},
	TypeT: {{-1, 0}, {0, 0}, {1, 0}, {0, -1}},
	TypeS: {{-1, 0}, {0, 0}, {0, 1}, {1, 1}},
	TypeZ: {{-1, 1}, {0, 1}, {0, 0}, {1, 0}},
	TypeJ: {{-1, -1}, {0, -1}, {0, 0}, {0, 1}},
	TypeL: {{0, 1}, {0, 0}, {0, -1}, {1, -1}},
}

var pieceColors = [PieceTypeCount]Color{
	TypeI: ColorBlueDark,
	TypeO: ColorBlueLight,
	TypeT: ColorPurple,
	TypeS: ColorRed,
	TypeZ: ColorOrange,
	TypeJ: ColorGreen,
	TypeL: ColorYellow,
}

// Valid はtが定義済みのテトリミノ種類かどうかを返します。
func (t PieceType) Valid() bool {
	return t >= 0 && t < PieceTypeCount
}

// BlockType はこの種類のピースが固定されたときにボードへ書き込まれる値です。
func (t PieceType) BlockType() BlockType {
	return BlockType(t + 1) // PieceType (0-6) を BlockType (1-7) に変換
}

func (t PieceType) String() string {
	return PieceTypeToString(t)
}

// Piece はボードに配置される前のテトリミノです。
// Blocks は回転によって変化する現在の相対座標で、常に4個です。
type Piece struct {
	Type   PieceType `json:"type"`
	Color  Color     `json:"color"`
	Blocks []Point   `json:"blocks"`
}

// NewPiece は指定された種類の初期状態のピースを返します。
func NewPiece(t PieceType) *Piece {
	p := &Piece{}
	p.SetType(t)
	return p
}

// SetType は種類を設定し、色とブロック座標を初期状態に戻します。
func (p *Piece) SetType(t PieceType) {
	if !t.Valid() {
		t = TypeI
	}
	p.Type = t
	p.Color = pieceColors[t]
	shape := pieceShapes[t]
	p.Blocks = append([]Point(nil), shape[:]...)
}

// RotateClockwise はピースを (0,0) を中心に90度回転させます。
// 各ブロックはxを反転してからxとyを入れ替えるため (x, y) -> (y, -x) になります。
// Oミノは回転しても形が変わらないため座標を変更しません。
func (p *Piece) RotateClockwise() {
	if p.Type == TypeO {
		return
	}
	for i, b := range p.Blocks {
		p.Blocks[i] = b.MultiplyX(-1).SwapXY()
	}
}

// Clone は現在のPieceのディープコピーを返します。
// 操作前の状態を保持したまま、操作後の状態を仮に試すために使います。
func (p *Piece) Clone() *Piece {
	blocks := make([]Point, len(p.Blocks))
	copy(blocks, p.Blocks)
	return &Piece{Type: p.Type, Color: p.Color, Blocks: blocks}
}

// String はピースの形を原点周りの7x7のテキストで返します（デバッグ用）。
// 'X' がブロック、'.' が空のマスです。
func (p *Piece) String() string {
	var sb strings.Builder
	for y := -3; y <= 3; y++ {
		for x := -3; x <= 3; x++ {
			cell := byte('.')
			for _, b := range p.Blocks {
				if b.X == x && b.Y == y {
					cell = 'X'
					break
				}
			}
			sb.WriteByte(cell)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RandomPieceType は7種類の中から一様にランダムな種類を返します。
// 乱数源は呼び出し側から渡されるため、シードを固定すれば結果は再現できます。
func RandomPieceType(r *rand.Rand) PieceType {
	return PieceType(r.Intn(PieceTypeCount))
}

// StringToPieceType は文字列のテトリミノタイプ（"I", "O", "T"など）をPieceTypeに変換します。
func StringToPieceType(s string) (PieceType, bool) {
	switch s {
	case "I":
		return TypeI, true
	case "O":
		return TypeO, true
	case "T":
		return TypeT, true
	case "S":
		return TypeS, true
	case "Z":
		return TypeZ, true
	case "J":
		return TypeJ, true
	case "L":
		return TypeL, true
	default:
		return TypeI, false
	}
}

// PieceTypeToString はPieceTypeを文字列表現に変換します。
func PieceTypeToString(t PieceType) string {
	switch t {
	case TypeI:
		return "I"
	case TypeO:
		return "O"
	case TypeT:
		return "T"
	case TypeS:
		return "S"
	case TypeZ:
		return "Z"
	case TypeJ:
		return "J"
	case TypeL:
		return "L"
	default:
		return "?"
	}
}
