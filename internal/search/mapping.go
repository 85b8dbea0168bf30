package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for catalog documents.
//
// Title and author are stored for display and carry term vectors for
// highlighting. Description is searchable but not stored. Category is a
// keyword so it can be filtered and faceted exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	author := bleve.NewTextFieldMapping()
	author.Analyzer = en.AnalyzerName
	author.Store = true
	author.IncludeTermVectors = true
	doc.AddFieldMappingsAt("author", author)

	description := bleve.NewTextFieldMapping()
	description.Analyzer = en.AnalyzerName
	description.Store = false
	doc.AddFieldMappingsAt("description", description)

	category := bleve.NewTextFieldMapping()
	category.Analyzer = keyword.Name
	category.Store = true
	doc.AddFieldMappingsAt("category", category)

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	doc.AddFieldMappingsAt("year", year)

	indexMapping.DefaultMapping = doc
	return indexMapping
}
