package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return c, nil
}
