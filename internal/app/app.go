// Package app wires the two process lifecycles: make_base builds and
// freezes the database, process_requests loads it and serves queries.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/transitbase/transitbase_core/internal/artifact"
	"github.com/transitbase/transitbase_core/internal/catalog"
	"github.com/transitbase/transitbase_core/internal/executor"
	"github.com/transitbase/transitbase_core/internal/models"
	"github.com/transitbase/transitbase_core/internal/render"
	"github.com/transitbase/transitbase_core/internal/router"
	"github.com/transitbase/transitbase_core/internal/transit"
)

// MakeBase reads the input document, builds the catalog, transit graph,
// routes table and render layout, and writes the frozen artifact to the
// configured path. Nothing is written to standard output.
func MakeBase(input io.Reader) error {
	doc, err := decodeDocument(input)
	if err != nil {
		return err
	}
	db, err := catalog.New(doc.BaseRequests, doc.RoutingSettings)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	log.Printf("Loaded %d stops, %d buses", db.StopsCount(), db.BusesCount())

	tg := transit.Build(db)
	log.Printf("Built transit graph: %d vertices, %d edges",
		tg.Weights.GetVertexCount(), tg.Weights.GetEdgeCount())

	table := router.BuildTable(tg.Weights)

	settings, err := render.ParseSettings(doc.RenderSettings)
	if err != nil {
		return err
	}
	base := artifact.Build(db, tg, table, render.NewBuilder(db, settings))

	path := doc.SerializationSettings.File
	if err := os.WriteFile(path, base.Marshal(), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	log.Printf("Serialized base to %s", path)
	return nil
}

// ProcessRequests loads the artifact named by the input document, answers
// its stat requests and writes the result array to output.
func ProcessRequests(input io.Reader, output io.Writer) error {
	doc, err := decodeDocument(input)
	if err != nil {
		return err
	}
	blob, err := os.ReadFile(doc.SerializationSettings.File)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	base, err := artifact.Unmarshal(blob)
	if err != nil {
		return err
	}

	results := executor.New(base).ExecuteRequests(doc.StatRequests)

	enc := json.NewEncoder(output)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func decodeDocument(input io.Reader) (*models.InputDocument, error) {
	var doc models.InputDocument
	if err := json.NewDecoder(input).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode input document: %w", err)
	}
	return &doc, nil
}
