// Package compiler provides public APIs for compiling queries and mutations
// against a schema to parameterized SQL.
//
// This is a thin wrapper around internal/sqlgen that exposes only the public
// types and functions needed by external consumers. For DDL generation,
// use pkg/migrator instead.
package compiler

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dperalta86/chameleondb/internal/sqlgen"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// GeneratedSQL is SQL text with "?" placeholders and its ordered parameters.
type GeneratedSQL = sqlgen.GeneratedSQL

// Options configures compilation.
type Options = sqlgen.Options

// CompileQuery compiles a query to a SELECT statement.
var CompileQuery = sqlgen.CompileQuery

// CompileMutation compiles a mutation to an INSERT, UPDATE or DELETE.
var CompileMutation = sqlgen.CompileMutation

// Request is one item of a batch. Exactly one of Query and Mutation is set.
type Request struct {
	Query    *query.Query
	Mutation *query.Mutation
}

// Response is the outcome of one Request.
type Response struct {
	SQL *GeneratedSQL
	Err error
}

// CompileBatch compiles requests concurrently with at most workers
// goroutines (GOMAXPROCS when workers <= 0). Responses are returned in
// request order; a failing request does not stop the others. The error is
// non-nil only when ctx is cancelled before every request is compiled.
//
// s must not be modified while the batch runs.
func CompileBatch(ctx context.Context, s *schema.Schema, reqs []Request, opts Options, workers int) ([]Response, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Response, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out[i] = compile(s, req, opts)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func compile(s *schema.Schema, req Request, opts Options) Response {
	var (
		res *GeneratedSQL
		err error
	)
	switch {
	case req.Query != nil && req.Mutation != nil:
		err = errors.New("request sets both a query and a mutation")
	case req.Query != nil:
		res, err = CompileQuery(s, req.Query, opts)
	case req.Mutation != nil:
		res, err = CompileMutation(s, req.Mutation, opts)
	default:
		err = errors.New("request sets neither a query nor a mutation")
	}
	return Response{SQL: res, Err: err}
}
