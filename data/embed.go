package data

import (
	_ "embed"
)

//go:embed tables.yaml
var ReferenceTables []byte

//go:embed products.yaml
var SampleCatalog []byte
