package session

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// IDGen issues session ids from a snowflake node
type IDGen struct {
	node *snowflake.Node
}

func NewIDGen() (*IDGen, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed on create IDGen: %w", err)
	}
	return &IDGen{
		node: node,
	}, nil
}

// GenerateString returns a new id in base58, safe as a directory name
func (g *IDGen) GenerateString() string {
	return g.node.Generate().Base58()
}
