package algebra

import (
	"computor/internal/ast"
	"computor/internal/calcerr"
)

// elementwise combines two matrices cell by cell over the union of their
// shapes. A cell missing on either side, or a failing cell, is filled with
// 0 and reported; the whole matrix is always visited before failing.
func elementwise(b *binaryOp, x, y *ast.Matrix) (ast.Expr, error) {
	var errs calcerr.CellErrors

	rows := make([][]ast.Expr, max(len(x.Rows), len(y.Rows)))
	for r := range rows {
		var xr, yr []ast.Expr
		if r < len(x.Rows) {
			xr = x.Rows[r]
		}
		if r < len(y.Rows) {
			yr = y.Rows[r]
		}
		rows[r] = make([]ast.Expr, max(len(xr), len(yr)))
		for c := range rows[r] {
			xc, yc := x.Cell(r, c), y.Cell(r, c)
			if xc == nil || yc == nil {
				errs.Add(r, c, calcerr.New(calcerr.DimensionMismatch,
					"can't %s matrices of different shapes", b.op.Name()))
				rows[r][c] = ast.NewNumber(0)
				continue
			}
			v, err := b.eval(xc, yc)
			if err != nil {
				errs.Add(r, c, err)
				v = ast.NewNumber(0)
			}
			rows[r][c] = v
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ast.NewMatrix(rows), nil
}

// broadcast applies s to every cell of m. matrixLeft keeps m as the left
// operand so non-commutative operators see the original order.
func broadcast(b *binaryOp, m *ast.Matrix, s ast.Expr, matrixLeft bool) (ast.Expr, error) {
	var errs calcerr.CellErrors

	rows := make([][]ast.Expr, len(m.Rows))
	for r, row := range m.Rows {
		rows[r] = make([]ast.Expr, len(row))
		for c, cell := range row {
			var v ast.Expr
			var err error
			if matrixLeft {
				v, err = b.eval(cell, s.Clone())
			} else {
				v, err = b.eval(s.Clone(), cell)
			}
			if err != nil {
				errs.Add(r, c, err)
				v = ast.NewNumber(0)
			}
			rows[r][c] = v
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ast.NewMatrix(rows), nil
}
