package algebra

import (
	"computor/internal/ast"
	"computor/internal/calcerr"
)

// matrixProduct is the row by column product. The shapes are checked before
// any cell is computed.
func matrixProduct(x, y *ast.Matrix) (ast.Expr, error) {
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xc != yr {
		return nil, calcerr.New(calcerr.DimensionMismatch,
			"can't multiply a %dx%d matrix by a %dx%d matrix", xr, xc, yr, yc)
	}

	var errs calcerr.CellErrors
	rows := make([][]ast.Expr, xr)
	for i := range rows {
		rows[i] = make([]ast.Expr, yc)
		for j := range rows[i] {
			cell, err := dotProduct(x, y, i, j, xc)
			if err != nil {
				errs.Add(i, j, err)
				cell = ast.NewNumber(0)
			}
			rows[i][j] = cell
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ast.NewMatrix(rows), nil
}

func dotProduct(x, y *ast.Matrix, i, j, n int) (ast.Expr, error) {
	var sum ast.Expr = ast.NewNumber(0)
	for k := 0; k < n; k++ {
		a, b := x.Cell(i, k), y.Cell(k, j)
		if a == nil || b == nil {
			return nil, calcerr.New(calcerr.DimensionMismatch, "irregular matrix row")
		}
		p, err := Mul(a, b)
		if err != nil {
			return nil, err
		}
		if sum, err = Add(sum, p); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// inverse2x2 returns 1/det · adj(m). Only 2x2 matrices are supported.
func inverse2x2(m *ast.Matrix) (*ast.Matrix, error) {
	if len(m.Rows) != 2 || len(m.Rows[0]) != 2 || len(m.Rows[1]) != 2 {
		r, c := m.Dims()
		return nil, calcerr.New(calcerr.UnsupportedDimension,
			"only 2x2 matrices can be inverted, got %dx%d", r, c)
	}
	a, b := m.Rows[0][0], m.Rows[0][1]
	c, d := m.Rows[1][0], m.Rows[1][1]

	ad, err := Mul(a, d)
	if err != nil {
		return nil, err
	}
	bc, err := Mul(b, c)
	if err != nil {
		return nil, err
	}
	det, err := Sub(ad, bc)
	if err != nil {
		return nil, err
	}
	if classify(det) != computable {
		return nil, calcerr.New(calcerr.CannotReduce, "determinant %s is not a number", det)
	}
	if Equal(det, ast.NewNumber(0)) {
		return nil, calcerr.New(calcerr.NotInvertible, "%s has a determinant of 0", m)
	}

	adj := [][]ast.Expr{
		{d, negate(b)},
		{negate(c), a},
	}
	var errs calcerr.CellErrors
	for r, row := range adj {
		for col, cell := range row {
			v, err := Div(cell, det)
			if err != nil {
				errs.Add(r, col, err)
				v = ast.NewNumber(0)
			}
			adj[r][col] = v
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return ast.NewMatrix(adj), nil
}

func negate(e ast.Expr) ast.Expr {
	if v, err := Mul(ast.NewNumber(-1), e); err == nil {
		return v
	}
	return ast.NewOperation(ast.NewNumber(-1), ast.Mul, e.Clone())
}
