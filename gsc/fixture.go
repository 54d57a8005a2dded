package gsc

import (
	"context"

	"seo_strategist/generator"
)

// FixtureSource is the demo property shown before a real Search Console connection.
type FixtureSource struct{}

func (FixtureSource) Pages(context.Context) ([]generator.GscPagePerformance, error) {
	out := make([]generator.GscPagePerformance, len(demoPages))
	for i, p := range demoPages {
		p.Queries = append([]generator.GscQuery(nil), p.Queries...)
		out[i] = p
	}
	return out, nil
}

var demoPages = []generator.GscPagePerformance{
	{
		URL:            "https://example.com/blog/beginner-container-gardening",
		Impressions:    85200,
		Clicks:         1022,
		CTR:            0.012,
		Position:       18.5,
		ClicksChange:   -45.8,
		PositionChange: 4.2,
		TopQuery:       "container gardening for beginners",
		Queries: []generator.GscQuery{
			{Query: "container gardening for beginners", Clicks: 250, Impressions: 15000, Position: 15.1},
			{Query: "what to grow in pots on balcony", Clicks: 150, Impressions: 12000, Position: 17.3},
			{Query: "small space gardening ideas", Clicks: 100, Impressions: 8000, Position: 22.0},
		},
	},
	{
		URL:            "https://example.com/guides/best-soil-for-balconies",
		Impressions:    155000,
		Clicks:         1860,
		CTR:            0.012,
		Position:       4.8,
		ClicksChange:   5.2,
		PositionChange: -0.3,
		TopQuery:       "best soil for balcony garden",
		Queries: []generator.GscQuery{
			{Query: "best soil for balcony garden", Clicks: 800, Impressions: 50000, Position: 4.5},
			{Query: "lightweight potting mix for containers", Clicks: 400, Impressions: 35000, Position: 5.1},
			{Query: "can i use garden soil in pots", Clicks: 150, Impressions: 20000, Position: 6.2},
		},
	},
	{
		URL:            "https://example.com/blog/diy-vertical-herb-garden",
		Impressions:    1200,
		Clicks:         360,
		CTR:            0.30,
		Position:       2.1,
		ClicksChange:   25.5,
		PositionChange: -1.1,
		TopQuery:       "diy vertical herb garden",
		Queries: []generator.GscQuery{
			{Query: "diy vertical herb garden", Clicks: 200, Impressions: 600, Position: 2.0},
			{Query: "how to build a wall planter", Clicks: 100, Impressions: 400, Position: 2.5},
		},
	},
	{
		URL:            "https://example.com/reviews/top-5-watering-cans-2023",
		Impressions:    45000,
		Clicks:         2250,
		CTR:            0.05,
		Position:       8.9,
		ClicksChange:   -60.1,
		PositionChange: 6.8,
		TopQuery:       "best watering can for indoor plants",
		Queries: []generator.GscQuery{
			{Query: "best watering can for indoor plants", Clicks: 800, Impressions: 20000, Position: 7.5},
			{Query: "long spout watering can review", Clicks: 500, Impressions: 15000, Position: 9.2},
			{Query: "2023 watering can comparison", Clicks: 100, Impressions: 5000, Position: 15.0},
		},
	},
}
