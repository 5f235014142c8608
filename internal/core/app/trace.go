package app

import (
	"context"

	"layerguard/internal/core/errors"
	"layerguard/internal/shared/util"
)

type TraceRequest struct {
	Root       string
	ConfigPath string
	From       string
	To         string
}

// TraceResult is the shortest import chain between two files. Found is false
// when To is not reachable from From; Importers then lists the files that
// import To directly.
type TraceResult struct {
	Chain     []string `json:"chain"`
	Found     bool     `json:"found"`
	Importers []string `json:"importers,omitempty"`
}

// Trace builds the import graph for the root and finds the shortest chain of
// imports leading from one file to another.
func (s *Service) Trace(ctx context.Context, req TraceRequest) (TraceResult, error) {
	cfg, err := s.LoadConfig(req.Root, req.ConfigPath)
	if err != nil {
		return TraceResult{}, err
	}
	proj, err := s.load(ctx, req.Root, cfg)
	if err != nil {
		return TraceResult{}, err
	}
	defer proj.close()

	from := util.NormalizePatternPath(req.From)
	to := util.NormalizePatternPath(req.To)
	for _, file := range []string{from, to} {
		if !proj.graph.Has(file) {
			err := errors.New(errors.CodeNotFound, "file is not part of the analyzed tree")
			return TraceResult{}, errors.AddContext(err, errors.CtxPath, file)
		}
	}
	chain, ok := proj.graph.FindImportChain(from, to)
	if !ok {
		return TraceResult{Chain: []string{}, Importers: proj.graph.Importers(to)}, nil
	}
	return TraceResult{Chain: chain, Found: true}, nil
}
