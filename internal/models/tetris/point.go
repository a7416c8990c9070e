package tetris

import "strconv"

// Point はボード上またはピース内の整数座標を表す値型です。
// xは列（右が正）、yは行（下が正）です。
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add は2つの座標を成分ごとに足した新しいPointを返します。
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// SwapXY はxとyを入れ替えたPointを返します。
func (p Point) SwapXY() Point {
	return Point{X: p.Y, Y: p.X}
}

// MultiplyX はxにfactorを掛けたPointを返します。
func (p Point) MultiplyX(factor int) Point {
	return Point{X: p.X * factor, Y: p.Y}
}

// MultiplyY はyにfactorを掛けたPointを返します。
func (p Point) MultiplyY(factor int) Point {
	return Point{X: p.X, Y: p.Y * factor}
}

// String は "[x,y]" 形式の文字列を返します（デバッグ用）。
func (p Point) String() string {
	return "[" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + "]"
}
