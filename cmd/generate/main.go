// Command generate writes the config JSON schema and a sample config into ./config.
package main

import (
	"log"

	"github.com/rxtech-lab/stockview/internal/config"
)

const outputDir = "./config"

func main() {
	schemaPath, samplePath, written, err := config.WriteSchemaFiles(outputDir)
	if err != nil {
		log.Fatalf("Failed to generate schema: %v", err)
	}

	if written {
		log.Printf("Sample config successfully generated at %s", samplePath)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}
