// Command atlas-loader prints the DDL for the GORM models so Atlas can diff
// it against the versioned migrations directory.
//
//	atlas migrate diff --env gorm
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"github.com/bravo68web/shipyard/internal/domain/models"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(models.All()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
