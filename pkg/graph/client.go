// Package graph turns unstructured documents into knowledge-graph batches:
// it splits text into token-bounded units, runs structured extraction on
// each unit, cleans the loosely-typed extraction output, and hands the
// result to the graph store.
package graph

// GraphClient drives the document ingestion pipeline. It manages token
// encoding, extraction parallelism, and retry behavior for AI requests.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tokenEncoder       string
	maxUnitTokens      int
	parallelAiRequests int
	maxRetries         int
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// TokenEncoder specifies the tiktoken encoding used for unit sizing.
// MaxUnitTokens bounds the token count of a single extraction unit.
// ParallelAiRequests controls how many AI requests run concurrently.
type NewGraphClientParams struct {
	TokenEncoder       string
	MaxUnitTokens      int
	ParallelAiRequests int
	MaxRetries         int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	params := graph.NewGraphClientParams{
//		TokenEncoder:       "o200k_base",
//		MaxUnitTokens:      1200,
//		ParallelAiRequests: 8,
//	}
//	client, err := graph.NewGraphClient(params)
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	encoder := params.TokenEncoder
	if encoder == "" {
		encoder = "o200k_base"
	}
	maxUnitTokens := params.MaxUnitTokens
	if maxUnitTokens <= 0 {
		maxUnitTokens = 1200
	}
	parallel := params.ParallelAiRequests
	if parallel <= 0 {
		parallel = 4
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	g := &GraphClient{
		tokenEncoder:       encoder,
		maxUnitTokens:      maxUnitTokens,
		parallelAiRequests: parallel,
		maxRetries:         maxRetries,
	}

	return g, nil
}
