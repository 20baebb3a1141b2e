package mx

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix — dense 2-D array of expressions
// ============================================================

// Matrix is a rows×cols grid of expressions. A 1×1 matrix stands for a
// scalar and a matrix with one row or one column is a vector.
//
// Every operation returns a new matrix. Set is the only mutator and is meant
// for filling in a matrix right after NewMatrix.
type Matrix struct {
	rows, cols int
	data       [][]Expr
}

func NewMatrix(rows, cols int) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return newMatrix(rows, cols), nil
}

func newMatrix(rows, cols int) *Matrix {
	zero := N(0)
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = zero
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// MatrixOf builds a rows×cols matrix from cells in row-major order. Each
// cell goes through Coerce.
func MatrixOf(rows, cols int, cells ...any) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	// rows > len/cols also rules out rows*cols overflowing.
	if rows > len(cells)/cols || rows*cols != len(cells) {
		return nil, fmt.Errorf("%w: %dx%d matrix needs %d cells, got %d", ErrDimensionMismatch, rows, cols, uint64(rows)*uint64(cols), len(cells))
	}
	m := newMatrix(rows, cols)
	for k, c := range cells {
		if err := m.Set(k/cols, k%cols, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Vector builds a column vector.
func Vector(cells ...any) (*Matrix, error) { return MatrixOf(len(cells), 1, cells...) }

// Identity returns the n×n identity matrix.
func Identity(n int) (*Matrix, error) {
	m, err := NewMatrix(n, n)
	if err != nil {
		return nil, err
	}
	one := N(1)
	for i := 0; i < n; i++ {
		m.data[i][i] = one
	}
	return m, nil
}

func (m *Matrix) Rows() int        { return m.rows }
func (m *Matrix) Cols() int        { return m.cols }
func (m *Matrix) Len() int         { return m.rows * m.cols }
func (m *Matrix) IsVector() bool   { return m.rows == 1 || m.cols == 1 }
func (m *Matrix) IsScalar() bool   { return m.rows == 1 && m.cols == 1 }
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

func (m *Matrix) checkBounds(row, col int) error {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return fmt.Errorf("%w: [%d,%d] for %dx%d", ErrIndexOutOfBounds, row, col, m.rows, m.cols)
	}
	return nil
}

func (m *Matrix) Get(row, col int) (Expr, error) {
	if err := m.checkBounds(row, col); err != nil {
		return nil, err
	}
	return m.data[row][col], nil
}

// Set stores v, coerced to an expression, at (row, col).
func (m *Matrix) Set(row, col int, v any) error {
	if err := m.checkBounds(row, col); err != nil {
		return err
	}
	e, err := Coerce(v)
	if err != nil {
		return err
	}
	m.data[row][col] = e
	return nil
}

// Scalar returns the single cell of a 1×1 matrix.
func (m *Matrix) Scalar() (Expr, error) {
	if !m.IsScalar() {
		return nil, fmt.Errorf("%w: %dx%d is not a scalar", ErrIncompatibleShape, m.rows, m.cols)
	}
	return m.data[0][0], nil
}

// cells returns the cells of a vector in order, whatever its orientation.
func (m *Matrix) cells() []Expr {
	out := make([]Expr, 0, m.Len())
	for _, row := range m.data {
		out = append(out, row...)
	}
	return out
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

// ============================================================
// Cellwise construction
// ============================================================

// Map calls fn for every cell in row-major order.
func (m *Matrix) Map(fn func(e Expr, row, col int)) {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			fn(m.data[i][j], i, j)
		}
	}
}

// Apply returns a same-shaped matrix of fn applied to every cell.
func (m *Matrix) Apply(fn func(e Expr, row, col int) (Expr, error)) (*Matrix, error) {
	out := newMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			e, err := fn(m.data[i][j], i, j)
			if err != nil {
				return nil, fmt.Errorf("cell [%d,%d]: %w", i, j, err)
			}
			out.data[i][j] = e
		}
	}
	return out, nil
}

// Fill returns a same-shaped matrix with every cell set to v.
func (m *Matrix) Fill(v any) (*Matrix, error) {
	e, err := Coerce(v)
	if err != nil {
		return nil, err
	}
	return m.Apply(func(Expr, int, int) (Expr, error) { return e, nil })
}

// Named returns a same-shaped matrix of fresh variables prefix_<row>_<col>.
func (m *Matrix) Named(prefix string) (*Matrix, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty matrix prefix", ErrInvalidVariableName)
	}
	return m.Apply(func(_ Expr, i, j int) (Expr, error) {
		return S(fmt.Sprintf("%s_%d_%d", prefix, i, j)), nil
	})
}

// Value evaluates every cell under b. Determined cells become constants;
// undetermined cells keep their expression with the bound variables
// replaced.
func (m *Matrix) Value(b Bindings) (*Matrix, error) {
	return m.Apply(func(e Expr, _, _ int) (Expr, error) {
		v, ok, err := e.Value(b)
		if err != nil {
			return nil, err
		}
		if ok {
			if c, ok := foldConst(v); ok {
				return c, nil
			}
		}
		return SubstituteValues(e, b)
	})
}

// Floats returns the cells as numbers if every cell is a closed form.
func (m *Matrix) Floats() ([][]float64, bool) {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		for j := range out[i] {
			v, ok := folded(m.data[i][j])
			if !ok {
				return nil, false
			}
			out[i][j] = v
		}
	}
	return out, true
}

func (m *Matrix) Differentiate(by Expr) (*Matrix, error) {
	return m.Apply(func(e Expr, _, _ int) (Expr, error) { return e.Differentiate(by) })
}

func (m *Matrix) Substitute(repl map[string]Expr) (*Matrix, error) {
	return m.Apply(func(e Expr, _, _ int) (Expr, error) { return Substitute(e, repl) })
}

// Sum adds up every cell.
func (m *Matrix) Sum() Expr {
	var acc Expr = N(0)
	m.Map(func(e Expr, _, _ int) { acc = AddOf(acc, e) })
	return acc
}

// ============================================================
// Algebra
// ============================================================

// Coerce broadcasts m to rows×cols. A 1×1 matrix replicates its cell, a row
// vector replicates down the rows and a column vector across the columns.
// ok is false when m cannot take that shape.
func (m *Matrix) Coerce(rows, cols int) (*Matrix, bool) {
	switch {
	case rows < 1 || cols < 1:
		return nil, false
	case m.rows == rows && m.cols == cols:
		return m, true
	case m.IsScalar():
		out := newMatrix(rows, cols)
		out.Map(func(_ Expr, i, j int) { out.data[i][j] = m.data[0][0] })
		return out, true
	case m.rows == 1 && m.cols == cols:
		out := newMatrix(rows, cols)
		out.Map(func(_ Expr, i, j int) { out.data[i][j] = m.data[0][j] })
		return out, true
	case m.cols == 1 && m.rows == rows:
		out := newMatrix(rows, cols)
		out.Map(func(_ Expr, i, j int) { out.data[i][j] = m.data[i][0] })
		return out, true
	}
	return nil, false
}

func (m *Matrix) elementwise(other *Matrix, op func(a, b Expr) Expr) (*Matrix, error) {
	o, ok := other.Coerce(m.rows, m.cols)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d to %dx%d", ErrIncompatibleShape, other.rows, other.cols, m.rows, m.cols)
	}
	return m.Apply(func(e Expr, i, j int) (Expr, error) { return op(e, o.data[i][j]), nil })
}

// Add returns m + other, broadcasting other to m's shape.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) { return m.elementwise(other, AddOf) }

// Sub returns m - other, broadcasting other to m's shape.
func (m *Matrix) Sub(other *Matrix) (*Matrix, error) { return m.elementwise(other, SubOf) }

// Dot returns the dot product of two vectors of equal length. Orientation
// does not matter.
func (m *Matrix) Dot(other *Matrix) (Expr, error) {
	if !m.IsVector() || !other.IsVector() {
		return nil, fmt.Errorf("%w: dot of %dx%d and %dx%d", ErrNotAVector, m.rows, m.cols, other.rows, other.cols)
	}
	a, b := m.cells(), other.cells()
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: dot of vectors of length %d and %d", ErrDimensionMismatch, len(a), len(b))
	}
	return dot(a, b), nil
}

func dot(a, b []Expr) Expr {
	var acc Expr = N(0)
	for i := range a {
		acc = AddOf(acc, MulOf(a[i], b[i]))
	}
	return acc
}

// Scale multiplies every cell by s.
func (m *Matrix) Scale(s Expr) *Matrix {
	out, _ := m.Apply(func(e Expr, _, _ int) (Expr, error) { return MulOf(e, s), nil })
	return out
}

// Multiply returns m times other. other may be a scalar (anything Coerce
// accepts, or a 1×1 matrix), a vector whose length matches m's column count,
// or a matrix with as many rows as m has columns.
func (m *Matrix) Multiply(other any) (*Matrix, error) {
	o, ok := other.(*Matrix)
	if !ok {
		s, err := Coerce(other)
		if err != nil {
			return nil, err
		}
		return m.Scale(s), nil
	}
	switch {
	case o.IsScalar():
		return m.Scale(o.data[0][0]), nil
	case o.rows == m.cols:
		return m.product(o), nil
	case o.IsVector() && o.Len() == m.cols:
		return m.product(o.Transpose()), nil
	}
	return nil, fmt.Errorf("%w: %dx%d times %dx%d", ErrDimensionMismatch, m.rows, m.cols, o.rows, o.cols)
}

// product composes m with o one column of o at a time.
func (m *Matrix) product(o *Matrix) *Matrix {
	out := newMatrix(m.rows, o.cols)
	col := make([]Expr, o.rows)
	for j := 0; j < o.cols; j++ {
		for k := 0; k < o.rows; k++ {
			col[k] = o.data[k][j]
		}
		for i := 0; i < m.rows; i++ {
			out.data[i][j] = dot(m.data[i], col)
		}
	}
	return out
}

func (m *Matrix) Transpose() *Matrix {
	if m.IsVector() {
		out := &Matrix{rows: m.cols, cols: m.rows}
		cells := m.cells()
		out.data = make([][]Expr, out.rows)
		for i := range out.data {
			out.data[i] = cells[i*out.cols : (i+1)*out.cols : (i+1)*out.cols]
		}
		return out
	}
	out := newMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j][i] = m.data[i][j]
		}
	}
	return out
}

// ============================================================
// Square matrices
// ============================================================

func (m *Matrix) square(op string) error {
	if m.rows != m.cols {
		return fmt.Errorf("%w: %s of a %dx%d matrix", ErrIncompatibleShape, op, m.rows, m.cols)
	}
	return nil
}

// Trace returns the sum of the diagonal.
func (m *Matrix) Trace() (Expr, error) {
	if err := m.square("trace"); err != nil {
		return nil, err
	}
	var acc Expr = N(0)
	for i := 0; i < m.rows; i++ {
		acc = AddOf(acc, m.data[i][i])
	}
	return acc, nil
}

// Det returns the determinant by cofactor expansion along the first row.
func (m *Matrix) Det() (Expr, error) {
	if err := m.square("determinant"); err != nil {
		return nil, err
	}
	return det(m.data), nil
}

// Inverse returns the adjugate divided by the determinant. A determinant
// that folds to zero fails with ErrDivisionByZero.
func (m *Matrix) Inverse() (*Matrix, error) {
	d, err := m.Det()
	if err != nil {
		return nil, err
	}
	n := m.rows
	out := newMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := det(minor(m.data, i, j))
			if (i+j)%2 == 1 {
				c = MulOf(N(-1), c)
			}
			// adjugate is the transposed cofactor matrix
			if out.data[j][i], err = DivOf(c, d); err != nil {
				return nil, fmt.Errorf("matrix is singular: %w", err)
			}
		}
	}
	return out, nil
}

func det(data [][]Expr) Expr {
	switch len(data) {
	case 0:
		return N(1)
	case 1:
		return data[0][0]
	case 2:
		return SubOf(MulOf(data[0][0], data[1][1]), MulOf(data[0][1], data[1][0]))
	}
	var acc Expr = N(0)
	for j := range data[0] {
		term := MulOf(data[0][j], det(minor(data, 0, j)))
		if j%2 == 1 {
			acc = SubOf(acc, term)
		} else {
			acc = AddOf(acc, term)
		}
	}
	return acc
}

func minor(data [][]Expr, skipRow, skipCol int) [][]Expr {
	out := make([][]Expr, 0, len(data)-1)
	for i, row := range data {
		if i == skipRow {
			continue
		}
		r := make([]Expr, 0, len(row)-1)
		r = append(r, row[:skipCol]...)
		out = append(out, append(r, row[skipCol+1:]...))
	}
	return out
}
