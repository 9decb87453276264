package config

// Mining defaults.
const (
	DefaultMineTupleSize = 4
	DefaultMineTuples    = 500
	DefaultMineTableSize = 20
)

// Clustering defaults.
const (
	DefaultClusterTupleSize      = 3
	DefaultClusterTuples         = 255
	DefaultClusterTableSize      = 20
	DefaultClusterThreshold      = 0.7
	DefaultClusterMinClusterSize = 3
	DefaultClusterSimilarity     = "jaccard"
)

// Pruning defaults.
const (
	DefaultPruneMinSetSize   = 3
	DefaultPruneMinHits      = 3
	DefaultPruneOverlap      = 0.7
	DefaultPruneCooccurrence = 0.7
)

// Search defaults.
const (
	DefaultSearchTables     = 64
	DefaultSearchTupleSize  = 2
	DefaultSearchTableSize  = 14
	DefaultSearchThreshold  = 0.5
	DefaultSearchSimilarity = "jaccard"
	DefaultSearchTopK       = 10
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)
