// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/stagehand-foundation/stagehand/lib/variant"
)

// QueryOptions narrows a scene tree query. Zero value returns every
// node in the tree.
type QueryOptions struct {
	// Root limits the walk to a subtree. Nil means the tree root.
	Root *Node

	// Filter is an optional boolean expression evaluated per node.
	// Environment: name, class, path, depth, unique, plus
	// prop("name") for property access.
	Filter string

	// Limit caps the number of results. Zero means unlimited.
	Limit int
}

// QueryResult is one matched node.
type QueryResult struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	ChildCount int    `json:"child_count"`
}

// Query walks the tree depth-first and returns nodes matching the
// filter. A filter that evaluates to a non-boolean value fails the
// query rather than being coerced.
func (t *Tree) Query(options QueryOptions) ([]QueryResult, error) {
	root := options.Root
	if root == nil {
		root = t.root
	}

	var program *vm.Program
	if options.Filter != "" {
		compiled, err := expr.Compile(options.Filter, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("scene: compiling query filter: %w", err)
		}
		program = compiled
	}

	results := make([]QueryResult, 0)
	err := walkQuery(root, 0, program, options.Limit, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func walkQuery(node *Node, depth int, program *vm.Program, limit int, results *[]QueryResult) error {
	if limit > 0 && len(*results) >= limit {
		return nil
	}

	matched := true
	if program != nil {
		environment := map[string]any{
			"name":   node.name,
			"class":  node.class.Name,
			"path":   node.Path(),
			"depth":  depth,
			"unique": node.uniqueInOwner,
			"prop": func(name string) any {
				value, err := node.Get(name)
				if err != nil {
					return nil
				}
				return variant.Encode(value)
			},
		}
		result, err := expr.Run(program, environment)
		if err != nil {
			return fmt.Errorf("scene: evaluating query filter at %s: %w", node.Path(), err)
		}
		matched, _ = result.(bool)
	}

	if matched {
		*results = append(*results, QueryResult{
			Path:       node.Path(),
			Name:       node.name,
			Class:      node.class.Name,
			ChildCount: len(node.children),
		})
	}

	for _, child := range node.children {
		if err := walkQuery(child, depth+1, program, limit, results); err != nil {
			return err
		}
	}
	return nil
}
