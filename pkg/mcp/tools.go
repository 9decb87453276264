package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sampledmh/pkg/alg/list"
	"github.com/Sumatoshi-tech/sampledmh/pkg/ifindex"
	"github.com/Sumatoshi-tech/sampledmh/pkg/listdb"
	"github.com/Sumatoshi-tech/sampledmh/pkg/mhlink"
	"github.com/Sumatoshi-tech/sampledmh/pkg/sampledmh"
)

// Tool name constants.
const (
	ToolNameMine       = "smh_mine"
	ToolNameCluster    = "smh_cluster"
	ToolNameSimilarity = "smh_similarity"
)

// Input limits.
const (
	// maxSets bounds the number of sets accepted by one call.
	maxSets = 100_000

	// maxTuples bounds the number of hashing rounds of one call.
	maxTuples = 10_000

	// maxTableSizeExp bounds the hash table size exponent.
	maxTableSizeExp = 24

	// defaultTableSizeExp is the table size exponent used when none is given.
	defaultTableSizeExp = 16

	// maxItemID bounds item ids; the inverted index allocates one row per id.
	maxItemID = 1<<24 - 1
)

// Sentinel errors for tool input validation.
var (
	ErrNoSets           = errors.New("sets must not be empty")
	ErrTooManySets      = errors.New("too many sets")
	ErrTooManyTuples    = errors.New("tuples exceeds limit")
	ErrInvalidTableSize = errors.New("table_size_exp out of range")
	ErrNegativeParam    = errors.New("parameters must not be negative")
	ErrItemIDTooLarge   = errors.New("item id exceeds limit")
)

// MineInput is the input schema for the smh_mine tool.
type MineInput struct {
	Sets           [][]uint32 `json:"sets"                       jsonschema:"Documents, each an array of item ids"`
	TupleSize      int        `json:"tuple_size,omitempty"       jsonschema:"Min-hash values per tuple (default 4)"`
	Tuples         int        `json:"tuples,omitempty"           jsonschema:"Number of hashing rounds (default 500)"`
	TableSizeExp   int        `json:"table_size_exp,omitempty"   jsonschema:"Hash table size as a power of two exponent (default 16)"`
	Seed           uint64     `json:"seed,omitempty"             jsonschema:"Random seed for reproducible results"`
	MinSetSize     int        `json:"min_set_size,omitempty"     jsonschema:"Minimum items in a mined set (default 3)"`
	MinHits        int        `json:"min_hits,omitempty"         jsonschema:"Minimum documents supporting a mined set (default 3)"`
	NoPrune        bool       `json:"no_prune,omitempty"         jsonschema:"Return the raw co-occurring sets without pruning"`
	KeepDuplicates bool       `json:"keep_duplicates,omitempty"  jsonschema:"Keep sets with identical items"`
}

// ClusterInput is the input schema for the smh_cluster tool.
type ClusterInput struct {
	Sets           [][]uint32 `json:"sets"                       jsonschema:"Sets to cluster, each an array of item ids"`
	TupleSize      int        `json:"tuple_size,omitempty"       jsonschema:"Min-hash values per tuple (default 3)"`
	Tuples         int        `json:"tuples,omitempty"           jsonschema:"Number of hashing rounds (default 255)"`
	TableSizeExp   int        `json:"table_size_exp,omitempty"   jsonschema:"Hash table size as a power of two exponent (default 16)"`
	Seed           uint64     `json:"seed,omitempty"             jsonschema:"Random seed for reproducible results"`
	Threshold      float64    `json:"threshold,omitempty"        jsonschema:"Similarity above which two sets are linked (default 0.7)"`
	Similarity     string     `json:"similarity,omitempty"       jsonschema:"Similarity measure: jaccard, overlap, histogram (default jaccard)"`
	MinClusterSize int        `json:"min_cluster_size,omitempty" jsonschema:"Minimum members of a reported cluster"`
}

// SimilarityInput is the input schema for the smh_similarity tool.
type SimilarityInput struct {
	A       []uint32 `json:"a"                 jsonschema:"First set of item ids"`
	B       []uint32 `json:"b"                 jsonschema:"Second set of item ids"`
	Measure string   `json:"measure,omitempty" jsonschema:"Similarity measure: jaccard, overlap, histogram (default jaccard)"`
}

// ToolOutput wraps tool results for the MCP SDK's structured output.
type ToolOutput struct {
	Data any `json:"data"`
}

// MineResult is the structured result of smh_mine.
type MineResult struct {
	Sets  [][]uint32 `json:"sets"`
	Count int        `json:"count"`
}

// ClusterResult is the structured result of smh_cluster.
type ClusterResult struct {
	Clusters [][]uint32  `json:"clusters"`
	Models   []list.List `json:"models"`
	Count    int         `json:"count"`
}

// SimilarityResult is the structured result of smh_similarity.
type SimilarityResult struct {
	Measure string  `json:"measure"`
	Score   float64 `json:"score"`
}

func (s *Server) handleMine(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input MineInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCommon(input.Sets, input.Tuples, input.TableSizeExp,
		input.TupleSize, input.MinSetSize, input.MinHits); err != nil {
		return errorResult(err)
	}

	corpus := corpusFromSets(input.Sets)
	ifx := ifindex.FromCorpus(corpus)

	cfg := sampledmh.DefaultConfig()
	cfg.TableSize = tableSize(input.TableSizeExp)
	cfg.Seed = input.Seed

	if input.TupleSize > 0 {
		cfg.TupleSize = input.TupleSize
	}

	if input.Tuples > 0 {
		cfg.NumberOfTuples = input.Tuples
	}

	miner := sampledmh.New(cfg)
	miner.Logger = s.logger
	miner.Tracer = s.tracer
	miner.Metrics = s.engine

	mined, err := miner.Mine(ctx, ifx)
	if err != nil {
		return errorResult(err)
	}

	if !input.NoPrune {
		opts := sampledmh.DefaultPruneOptions()
		opts.Dedup = !input.KeepDuplicates

		if input.MinSetSize > 0 {
			opts.MinSetSize = input.MinSetSize
		}

		if input.MinHits > 0 {
			opts.MinHits = input.MinHits
		}

		err = sampledmh.Prune(ifx, mined, opts)
		if err != nil {
			return errorResult(err)
		}
	}

	sets := idRows(mined)

	return jsonResult(MineResult{Sets: sets, Count: len(sets)})
}

func (s *Server) handleCluster(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ClusterInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCommon(input.Sets, input.Tuples, input.TableSizeExp,
		input.TupleSize, input.MinClusterSize); err != nil {
		return errorResult(err)
	}

	sim, err := list.ByName(similarityName(input.Similarity), nil)
	if err != nil {
		return errorResult(err)
	}

	cfg := mhlink.DefaultConfig()
	cfg.TableSize = tableSize(input.TableSizeExp)
	cfg.Seed = input.Seed
	cfg.Similarity = sim
	cfg.MinClusterSize = input.MinClusterSize

	if input.TupleSize > 0 {
		cfg.TupleSize = input.TupleSize
	}

	if input.Tuples > 0 {
		cfg.NumberOfTuples = input.Tuples
	}

	if input.Threshold != 0 {
		cfg.Threshold = input.Threshold
	}

	clusterer := mhlink.New(cfg)
	clusterer.Logger = s.logger
	clusterer.Tracer = s.tracer
	clusterer.Metrics = s.engine

	res, err := clusterer.Cluster(ctx, corpusFromSets(input.Sets))
	if err != nil {
		return errorResult(err)
	}

	clusters := idRows(res.Clusters)

	return jsonResult(ClusterResult{
		Clusters: clusters,
		Models:   res.Models.Lists,
		Count:    len(clusters),
	})
}

func handleSimilarity(
	_ context.Context, _ *mcpsdk.CallToolRequest, input SimilarityInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	name := similarityName(input.Measure)

	sim, err := list.ByName(name, nil)
	if err != nil {
		return errorResult(err)
	}

	score := sim(list.FromIDs(input.A...), list.FromIDs(input.B...))

	return jsonResult(SimilarityResult{Measure: name, Score: score})
}

func validateCommon(sets [][]uint32, tuples, tableSizeExp int, nonNegative ...int) error {
	switch {
	case len(sets) == 0:
		return ErrNoSets
	case len(sets) > maxSets:
		return fmt.Errorf("%w: %d > %d", ErrTooManySets, len(sets), maxSets)
	case tuples > maxTuples:
		return fmt.Errorf("%w: %d > %d", ErrTooManyTuples, tuples, maxTuples)
	case tableSizeExp < 0 || tableSizeExp > maxTableSizeExp:
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidTableSize, tableSizeExp, maxTableSizeExp)
	}

	if tuples < 0 {
		return ErrNegativeParam
	}

	for _, v := range nonNegative {
		if v < 0 {
			return ErrNegativeParam
		}
	}

	for _, ids := range sets {
		for _, id := range ids {
			if id > maxItemID {
				return fmt.Errorf("%w: %d > %d", ErrItemIDTooLarge, id, maxItemID)
			}
		}
	}

	return nil
}

func similarityName(name string) string {
	if name == "" {
		return list.SimilarityJaccard
	}

	return name
}

func tableSize(exp int) int {
	if exp == 0 {
		exp = defaultTableSizeExp
	}

	return 1 << exp
}

func corpusFromSets(sets [][]uint32) *listdb.DB {
	db := listdb.New(len(sets), 0)
	for _, ids := range sets {
		db.Push(list.FromIDs(ids...))
	}

	return db
}

func idRows(db *listdb.DB) [][]uint32 {
	rows := make([][]uint32, db.Len())
	for i, l := range db.Lists {
		rows[i] = l.IDs()
	}

	return rows
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(data any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return errorResult(fmt.Errorf("marshal result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(jsonBytes)},
		},
	}, ToolOutput{Data: data}, nil
}
