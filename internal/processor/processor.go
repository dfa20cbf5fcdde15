package processor

import (
	"os"
	"time"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

// Options carries optional metadata known by the caller (typically the
// scraper) that overrides what can be inferred from the file.
type Options struct {
	Title   string
	Date    string
	Section string
}

// Processor extracts, cleans and chunks source files into Documents.
type Processor struct {
	extractor TextExtractor
	chunker   *Chunker
	log       *logger.Logger
}

// New creates a processor. A nil extractor defaults to the PDF extractor and
// a nil logger to the default logger.
func New(extractor TextExtractor, chunkerCfg ChunkerConfig, log *logger.Logger) *Processor {
	if extractor == nil {
		extractor = NewPDFExtractor()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Processor{
		extractor: extractor,
		chunker:   NewChunker(chunkerCfg),
		log:       log,
	}
}

// Process turns one file into a Document. Scanned (image-only) PDFs still
// produce a Document, flagged IsScanned with no chunks, so the pipeline can
// track them instead of silently dropping them.
func (p *Processor) Process(path string, opts Options) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NotFoundError("source file " + path)
	}

	meta := ExtractFileMetadata(path)
	log := p.log.WithSource(meta.Source).With("file", meta.Filename)

	text, pageCount, err := p.extractor.Extract(path)
	if err != nil {
		return nil, err
	}

	text = CleanText(text)
	isScanned := len(text) < scannedTextThreshold
	if isScanned {
		log.Warn("little or no text extracted, treating as scanned document")
		text = ""
	}

	var chunks []Chunk
	if text != "" {
		chunks = p.chunker.Split(text)
	}

	docID, err := GenerateDocID(path)
	if err != nil {
		return nil, apperrors.ExtractionError("generating document id", err)
	}

	doc := &Document{
		DocID:     docID,
		Title:     opts.Title,
		Source:    meta.Source,
		Section:   opts.Section,
		Date:      opts.Date,
		Filepath:  path,
		Filename:  meta.Filename,
		FileSize:  meta.FileSize,
		IsScanned: isScanned,
		FullText:  text,
		Chunks:    chunks,
		NumPages:  pageCount,
		Processed: time.Now().UTC(),
	}

	if doc.Title == "" {
		doc.Title = TitleFromFilename(meta.Filename)
	}
	if doc.Section == "" {
		if meta.Section != "" {
			doc.Section = meta.Section
		} else {
			doc.Section = "Document"
		}
	}
	if doc.Date == "" {
		doc.Date = meta.Date
	}

	log.Info("processed document",
		"chunks", len(chunks),
		"chars", len(text),
		"pages", pageCount,
	)

	return doc, nil
}
