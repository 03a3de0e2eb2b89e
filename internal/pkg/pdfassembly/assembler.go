package pdfassembly

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
)

// Document types as printed on placeholder pages
const (
	TypeDemandDraft   = "demand draft"
	TypeQualification = "qualification"
	TypeExperience    = "experience"
	TypePublication   = "publication"
)

var errNotPDF = errors.New("not a PDF file")

func init() {
	api.DisableConfigDir()
}

// Source is a document to append after the summary
type Source struct {
	Type string
	URL  string
}

// Failure records a document replaced by a placeholder
type Failure struct {
	Source
	Reason string
}

// Result is the assembled printout
type Result struct {
	PDF      []byte
	Failures []Failure
}

// Assembler builds the application printout
type Assembler struct {
	fetcher Fetcher
	conf    *model.Configuration
	logger  zerolog.Logger
}

// NewAssembler creates an assembler that loads documents with fetcher
func NewAssembler(fetcher Fetcher) *Assembler {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Assembler{
		fetcher: fetcher,
		conf:    conf,
		logger:  logger.Component("pdf"),
	}
}

// Assemble renders the summary and appends every source in order.
// A source that cannot be fetched, parsed or merged is replaced by a placeholder page.
func (a *Assembler) Assemble(ctx context.Context, summary Summary, sources []Source) (*Result, error) {
	acc, err := RenderSummary(summary)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		merged, err := a.appendSource(ctx, acc, src)
		if err == nil {
			acc = merged
			continue
		}

		reason := err.Error()
		a.logger.Warn().Str("type", src.Type).Str("url", src.URL).Str("reason", reason).Msg("Replacing document with placeholder")
		result.Failures = append(result.Failures, Failure{Source: src, Reason: reason})

		placeholder, perr := RenderPlaceholder(src.Type, reason)
		if perr != nil {
			return nil, perr
		}
		if acc, err = a.merge(acc, placeholder); err != nil {
			return nil, fmt.Errorf("failed to append placeholder: %w", err)
		}
	}

	result.PDF = acc
	return result, nil
}

func (a *Assembler) appendSource(ctx context.Context, acc []byte, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("missing document url")
	}
	data, err := a.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return nil, errNotPDF
	}
	if err := api.Validate(bytes.NewReader(data), a.conf); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}
	return a.merge(acc, data)
}

func (a *Assembler) merge(parts ...[]byte) ([]byte, error) {
	readers := make([]io.ReadSeeker, len(parts))
	for i, p := range parts {
		readers[i] = bytes.NewReader(p)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, a.conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages of a PDF
func (a *Assembler) PageCount(pdf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(pdf), a.conf)
}
