package repositories

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
)

var ErrBadQuery = errors.New("failed to build query")

// SqBuilder is the shared statement builder; postgres wants $N placeholders.
var SqBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
