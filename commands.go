package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seo_strategist/generator"
	"seo_strategist/gsc"
	"seo_strategist/report"
)

// emit prints v as indented JSON or as a rendered report.
func emit(w io.Writer, v any) error {
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	out, err := report.Render(f, v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// withApp runs fn with a fully wired app and a signal-aware context.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()
	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// meter records a one-shot tool use, refusing once a configured limit is used up.
func (a *app) meter(ctx context.Context, op generator.Operation) error {
	_, err := a.tracker.TryConsume(ctx, clientFlag, string(op))
	return err
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func readScreenshots(paths []string) ([]generator.Image, error) {
	images := make([]generator.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read screenshot %s: %w", p, err)
		}
		img, err := generator.NewImage(data, "")
		if err != nil {
			return nil, fmt.Errorf("screenshot %s: %w", p, err)
		}
		images = append(images, img)
	}
	return images, nil
}

var (
	strategyReq         generator.StrategyRequest
	strategyScreenshots []string
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Run the topical map, intent clarity and competitor analysis for a seed topic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := readScreenshots(strategyScreenshots)
		if err != nil {
			return err
		}
		req := strategyReq
		req.Screenshots = images
		return withApp(cmd, func(ctx context.Context, a *app) error {
			sess := generator.NewSession(uuid.NewString(), clientFlag, a.agent, a.tracker, logger.Named("session"))
			snap, err := sess.Submit(ctx, req)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), snap)
		})
	},
}

var (
	briefKeyword string
	briefRegion  string
	briefCopy    bool
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Generate a content brief for one keyword",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.meter(ctx, generator.OpContentBrief); err != nil {
				return err
			}
			brief, err := a.agent.ContentBrief(ctx, briefKeyword, briefRegion)
			if err != nil {
				return err
			}
			if briefCopy {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), report.BriefPlainText(*brief))
				return err
			}
			return emit(cmd.OutOrStdout(), brief)
		})
	},
}

var brandSamples []string

var brandVoiceCmd = &cobra.Command{
	Use:   "brand-voice",
	Short: "Derive a brand voice guide from content samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		samples := make([]string, 0, len(brandSamples))
		for _, p := range brandSamples {
			s, err := readFile(p)
			if err != nil {
				return err
			}
			samples = append(samples, s)
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.meter(ctx, generator.OpBrandVoice); err != nil {
				return err
			}
			guide, err := a.agent.BrandVoice(ctx, samples)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), guide)
		})
	},
}

var videoReq generator.VideoBriefRequest

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Create a video brief, optionally with a full script",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.meter(ctx, generator.OpVideoBrief); err != nil {
				return err
			}
			brief, err := a.agent.VideoBrief(ctx, videoReq)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), brief)
		})
	},
}

var (
	auditContentFile string
	auditURL         string
	auditKeyword     string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit an article from a file or a URL against a primary keyword",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (auditContentFile == "") == (auditURL == "") {
			return errors.New("exactly one of --content or --url is required")
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			var content string
			if auditContentFile != "" {
				s, err := readFile(auditContentFile)
				if err != nil {
					return err
				}
				content = s
			} else {
				if a.fetcher == nil {
					return errors.New("fetching is disabled (fetch.enabled: false); use --content")
				}
				article, err := a.fetcher.Article(ctx, auditURL)
				if err != nil {
					return err
				}
				logger.Debug("article extracted", zap.String("url", article.URL), zap.String("title", article.Title))
				content = article.Markdown
			}
			if err := a.meter(ctx, generator.OpContentAudit); err != nil {
				return err
			}
			audit, err := a.agent.ContentAudit(ctx, content, auditKeyword)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), audit)
		})
	},
}

var (
	linksTarget string
	linksIndex  string
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Suggest internal links into a target article",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := readFile(linksTarget)
		if err != nil {
			return err
		}
		index, err := readFile(linksIndex)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.meter(ctx, generator.OpInternalLinks); err != nil {
				return err
			}
			links, err := a.agent.InternalLinks(ctx, target, index)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), links)
		})
	},
}

var gscCmd = &cobra.Command{
	Use:   "gsc",
	Short: "Search Console demo property: list pages, diagnose decay, optimize CTR",
}

var gscListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages with decay and low-CTR flags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := gsc.List(cmd.Context(), gsc.FixtureSource{})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), rows)
	},
}

var gscDecayCmd = &cobra.Command{
	Use:   "decay URL",
	Short: "Diagnose why a page lost traffic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			page, err := gsc.Find(ctx, gsc.FixtureSource{}, args[0])
			if err != nil {
				return err
			}
			if err := a.meter(ctx, generator.OpContentDecay); err != nil {
				return err
			}
			analysis, err := a.agent.DiagnoseDecay(ctx, page)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), analysis)
		})
	},
}

var gscCTRCmd = &cobra.Command{
	Use:   "ctr URL",
	Short: "Propose title and meta description rewrites for a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			page, err := gsc.Find(ctx, gsc.FixtureSource{}, args[0])
			if err != nil {
				return err
			}
			if err := a.meter(ctx, generator.OpCTROptimization); err != nil {
				return err
			}
			opt, err := a.agent.OptimizeCTR(ctx, page)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opt)
		})
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show free-generation usage for a client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ops := make([]string, 0, len(cfg.Usage.Limits))
			for op := range cfg.Usage.Limits {
				ops = append(ops, op)
			}
			sort.Strings(ops)
			w := cmd.OutOrStdout()
			for _, op := range ops {
				st, err := a.tracker.Status(ctx, clientFlag, op)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-20s used %d of %d (%d left)\n", op, st.Used, st.Limit, st.Remaining)
			}
			return nil
		})
	},
}

func addToolCommands(root *cobra.Command) {
	f := strategyCmd.Flags()
	f.StringVar(&strategyReq.SeedTopic, "topic", "", "seed topic (required)")
	f.StringVar(&strategyReq.TargetAudience, "audience", "", "target audience")
	f.StringVar(&strategyReq.Region, "region", "", "target region (defaults to the first listed region)")
	f.StringArrayVar(&strategyReq.CompetitorURLs, "url", nil, "competitor URL (repeatable, up to 5)")
	f.StringArrayVar(&strategyScreenshots, "screenshot", nil, "competitor screenshot file (repeatable, up to 10)")
	_ = strategyCmd.MarkFlagRequired("topic")

	f = briefCmd.Flags()
	f.StringVar(&briefKeyword, "keyword", "", "target keyword (required)")
	f.StringVar(&briefRegion, "region", "", "target region (defaults to config default_region)")
	f.BoolVar(&briefCopy, "copy", false, "print the plain-text copy format")
	_ = briefCmd.MarkFlagRequired("keyword")

	brandVoiceCmd.Flags().StringArrayVar(&brandSamples, "sample", nil, "content sample file (repeatable)")
	_ = brandVoiceCmd.MarkFlagRequired("sample")

	f = videoCmd.Flags()
	f.StringVar(&videoReq.Topic, "topic", "", "video topic (required)")
	f.StringVar((*string)(&videoReq.Platform), "platform", string(generator.PlatformLong), "long (YouTube) or short (TikTok/Shorts)")
	f.StringVar(&videoReq.VideoLength, "length", "8-10 minutes", "target video length")
	f.StringVar(&videoReq.Keywords, "keywords", "", "keywords to cover")
	f.BoolVar(&videoReq.GenerateScript, "script", false, "also write the full script")
	_ = videoCmd.MarkFlagRequired("topic")

	f = auditCmd.Flags()
	f.StringVar(&auditContentFile, "content", "", "article file to audit")
	f.StringVar(&auditURL, "url", "", "article URL to fetch and audit")
	f.StringVar(&auditKeyword, "keyword", "", "primary keyword (required)")
	_ = auditCmd.MarkFlagRequired("keyword")

	f = linksCmd.Flags()
	f.StringVar(&linksTarget, "target", "", "target article file (required)")
	f.StringVar(&linksIndex, "index", "", "source index file: one URL and summary per line (required)")
	_ = linksCmd.MarkFlagRequired("target")
	_ = linksCmd.MarkFlagRequired("index")

	gscCmd.AddCommand(gscListCmd, gscDecayCmd, gscCTRCmd)
	root.AddCommand(strategyCmd, briefCmd, brandVoiceCmd, videoCmd, auditCmd, linksCmd, gscCmd, usageCmd)
}
