// Package gsc serves Search Console page performance rows. Only the built-in demo
// dataset exists today; a live property connection would implement Source.
package gsc

import (
	"context"
	"fmt"
	"strings"

	"seo_strategist/generator"
)

const (
	decayClicksChange   = -20.0
	decayPositionChange = 2.0
	lowCTRImpressions   = 10000
	lowCTR              = 0.02
)

// Source lists page performance rows for a property.
type Source interface {
	Pages(ctx context.Context) ([]generator.GscPagePerformance, error)
}

// NotFoundError is returned when a URL is not among the source's pages.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no search console data for %s", e.URL)
}

// Find returns the row for url. Trailing slashes are ignored.
func Find(ctx context.Context, src Source, url string) (generator.GscPagePerformance, error) {
	pages, err := src.Pages(ctx)
	if err != nil {
		return generator.GscPagePerformance{}, err
	}
	want := normalize(url)
	for _, p := range pages {
		if normalize(p.URL) == want {
			return p, nil
		}
	}
	return generator.GscPagePerformance{}, &NotFoundError{URL: url}
}

func normalize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// Flags marks which AI diagnoses a page is a candidate for.
type Flags struct {
	Decaying bool `json:"decaying"`
	LowCTR   bool `json:"low_ctr"`
}

// Classify flags a page as decaying when clicks fell by 20% or more or the average
// position worsened by 2 or more, and as low CTR when it has at least 10k impressions
// below a 2% click-through rate.
func Classify(p generator.GscPagePerformance) Flags {
	return Flags{
		Decaying: p.ClicksChange <= decayClicksChange || p.PositionChange >= decayPositionChange,
		LowCTR:   p.Impressions >= lowCTRImpressions && p.CTR < lowCTR,
	}
}

// Row is a page with its classification, as listed by the API and CLI.
type Row struct {
	generator.GscPagePerformance
	Flags Flags `json:"flags"`
}

// List returns every page of src with its flags.
func List(ctx context.Context, src Source) ([]Row, error) {
	pages, err := src.Pages(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, Row{GscPagePerformance: p, Flags: Classify(p)})
	}
	return rows, nil
}
