package common

// Entity represents a node in a workspace knowledge graph. An entity can be
// an organization, person, location, or any other relevant concept. The name
// is the entity's identity within its workspace: no surrogate key is exposed,
// and (name, workspace) pairs are unique in storage.
type Entity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Relationship represents a directed, typed edge between two entities in the
// same workspace. Source and Target carry entity names; Type carries the
// semantic label as produced by extraction, before storage sanitization.
type Relationship struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Batch is a cleaned set of entities and relationships ready for a graph
// store upsert. Every relationship in a Batch references entities contained
// in the same Batch by exact name.
type Batch struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// Empty reports whether the batch carries no entities and no relationships.
func (b Batch) Empty() bool {
	return len(b.Entities) == 0 && len(b.Relationships) == 0
}

// Node is the read-side projection of an entity for visualization clients.
type Node struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Edge is the read-side projection of a relationship. Label carries the
// sanitized relationship type.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// GraphProjection is the flattened node/edge view of a workspace graph.
// Callers must not assume any ordering across nodes or edges, nor stability
// between successive reads.
type GraphProjection struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// MergeCandidate is a pair of entities in the same workspace that look like
// duplicates of each other, with a similarity score in (0, 1].
type MergeCandidate struct {
	Left       string  `json:"left"`
	LeftType   string  `json:"left_type"`
	Right      string  `json:"right"`
	RightType  string  `json:"right_type"`
	Similarity float64 `json:"similarity"`
}
