package graph

// EdgeID identifies an edge slot, never reused within a Graph's lifetime.
type EdgeID int

const invalidEdgeID EdgeID = -1

// edge is a directed connection between two nodes. Edges carry no payload
// or weight; all they do is name an adjacency.
type edge struct {
	id     EdgeID
	from   NodeID
	to     NodeID
	vacant bool
}
