package ffalloc

import (
	"io"

	"golang.org/x/exp/slog"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
