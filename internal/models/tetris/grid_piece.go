package tetris

// GridPiece はボード上の位置（基準点）を持つテトリミノです。
// 移動や回転の可否はチェックしません。それはゲームロジック側の責務です。
type GridPiece struct {
	Piece
	Location Point `json:"location"`
}

// NewGridPiece は指定された種類のピースを (0,0) に置いた状態で返します。
func NewGridPiece(t PieceType) *GridPiece {
	gp := &GridPiece{}
	gp.SetType(t)
	return gp
}

// SetLocation は基準点を設定します。
func (gp *GridPiece) SetLocation(p Point) {
	gp.Location = p
}

// SetLocationXY は基準点をx, yで設定します。
func (gp *GridPiece) SetLocationXY(x, y int) {
	gp.Location = Point{X: x, Y: y}
}

// Move は基準点を (dx, dy) だけ移動します。
func (gp *GridPiece) Move(dx, dy int) {
	gp.Location = gp.Location.Add(Point{X: dx, Y: dy})
}

// Cells はピースの各ブロックのボード上の絶対座標を返します。
func (gp *GridPiece) Cells() []Point {
	cells := make([]Point, len(gp.Blocks))
	for i, b := range gp.Blocks {
		cells[i] = gp.Location.Add(b)
	}
	return cells
}

// Clone は位置とブロック座標を含めたディープコピーを返します。
func (gp *GridPiece) Clone() *GridPiece {
	return &GridPiece{Piece: *gp.Piece.Clone(), Location: gp.Location}
}
