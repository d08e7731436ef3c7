// Package ids provides the identifier generators used for folders and conversations.
// Identifiers are opaque: callers must never parse them.
package ids

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Generator produces identifiers unique for the lifetime of a dataset.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() string

func (f GeneratorFunc) NewID() string { return f() }

type uuidGenerator struct{}

// UUID returns a generator of time-ordered UUIDv7 strings (48-bit millisecond
// timestamp followed by random bits).
func UUID() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when crypto/rand does. NewString reads the same
		// source and panics in that case, which surfaces the broken source
		// instead of handing out a non-unique id.
		return uuid.NewString()
	}
	return id.String()
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

// Snowflake returns a generator of base36 snowflake ids for the given node (0-1023).
func Snowflake(node int64) (Generator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", node, err)
	}
	return &snowflakeGenerator{node: n}, nil
}

func (g *snowflakeGenerator) NewID() string {
	return g.node.Generate().Base36()
}

// ByScheme resolves a generator by name: "uuid" (default) or "snowflake".
func ByScheme(scheme string, node int64) (Generator, error) {
	switch strings.ToLower(scheme) {
	case "", "uuid":
		return UUID(), nil
	case "snowflake":
		return Snowflake(node)
	default:
		return nil, fmt.Errorf("unknown id scheme: %s", scheme)
	}
}
