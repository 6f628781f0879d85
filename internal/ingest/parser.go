package ingest

import (
	"io"

	"srl_report/internal/model"
)

// Parser reads simulation results from a source.
type Parser interface {
	Parse(r io.Reader) ([]model.Result, error)
}
