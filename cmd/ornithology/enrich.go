package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"ornithology/pkg/config"
	"ornithology/pkg/enrich"
	"ornithology/pkg/logger"
	"ornithology/pkg/report"
	"ornithology/pkg/stats"
	"ornithology/pkg/twitter"
	"ornithology/pkg/ui"
)

var (
	// Enrich command flags
	topN         int
	fresh        bool
	reportPath   string
	noBrowser    bool
	cachePath    string
	clientID     string
	callbackPort int
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich <archive.zip>",
	Short: "Fetch live metrics for an export and rank the results",
	Long: `Read the tweet and follower ids out of a Twitter archive export, fetch
the current public metrics for each of them, and print the ranked
lists. The enriched dataset is cached, so reruns with different --top
values are free; pass --fresh to refetch.

The first run opens the browser once so you can authorize read-only
access to your account.`,
	Example: `  # Enrich an export and open the report
  ornithology enrich twitter-2024-01-01.zip

  # Rerank a cached dataset without touching the API
  ornithology enrich twitter-2024-01-01.zip --top 20

  # Refetch everything and keep the browser closed
  ornithology enrich twitter-2024-01-01.zip --fresh --no-browser`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().IntVar(&topN, "top", 5, "entries to keep per list")
	enrichCmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the cached dataset and refetch")
	enrichCmd.Flags().StringVar(&reportPath, "report", "", "write the HTML report to this file")
	enrichCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the report when done")
	enrichCmd.Flags().StringVar(&cachePath, "cache", "", "cache the fetched dataset in this file")
	enrichCmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client id of the registered app")
	enrichCmd.Flags().IntVar(&callbackPort, "callback-port", 0, "local port for the authorization redirect")

	// Same flags on the root so `ornithology archive.zip --top 10` works.
	rootCmd.Flags().IntVar(&topN, "top", 5, "entries to keep per list")
	rootCmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the cached dataset and refetch")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "write the HTML report to this file")
	rootCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the report when done")
	rootCmd.Flags().StringVar(&cachePath, "cache", "", "cache the fetched dataset in this file")
	rootCmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client id of the registered app")
	rootCmd.Flags().IntVar(&callbackPort, "callback-port", 0, "local port for the authorization redirect")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	archivePath := strings.TrimSpace(args[0])

	flags := globalFlags()
	flags["archive"] = archivePath
	if clientID != "" {
		flags["client-id"] = clientID
	}
	if callbackPort > 0 {
		flags["callback-port"] = callbackPort
	}
	if cmd.Flags().Changed("top") {
		flags["top"] = topN
	}
	if reportPath != "" {
		flags["report"] = reportPath
	}
	if cachePath != "" {
		flags["cache"] = cachePath
	}
	if noBrowser {
		flags["no-browser"] = true
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := ui.NewNotifier(cfg.Notifications)
	progress := ui.NewProgress()

	result, err := enrich.Load(ctx, cfg, enrich.Options{
		ArchivePath: cfg.Archive.Path,
		Fresh:       fresh,
		Logger:      log,
		OnProgress:  progress.Update,
		OnRateLimit: notifier.RateLimited,
	})
	progress.Finish()
	if err != nil {
		notifier.Failed(err.Error())
		return err
	}

	lists := rankAndPrint(result, cfg.Output.Top)

	page := report.Page{Username: result.Me, Lists: lists}
	if err := report.WriteFile(cfg.Output.ReportPath, page); err != nil {
		return err
	}
	log.InfoWithFields("report written", map[string]interface{}{
		"path": cfg.Output.ReportPath,
	})

	if cfg.Output.OpenBrowser {
		if err := browser.OpenFile(cfg.Output.ReportPath); err != nil {
			log.WithError(err).Warn("could not open the report in a browser")
		}
	}

	notifier.Complete(fmt.Sprintf("enriched %d tweets and %d followers, report at %s",
		len(result.Tweets), len(result.Followers), cfg.Output.ReportPath))
	return nil
}

func tweetURL(me string, id twitter.ID) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", me, id)
}

func userURL(username string) string {
	return "https://twitter.com/" + username
}

// rankAndPrint prints every ranked list to the terminal and returns
// the lists the report page consumes, keyed by list id.
func rankAndPrint(res *enrich.Result, topn int) map[string][]string {
	lists := make(map[string][]string, 9)

	// Surfacing retweets people may have forgotten about is fun, so a
	// random handful rather than a ranking.
	if len(res.OldRetweetIDs) > 0 {
		ui.PrintHeading("remember these old retweets:")
	}
	oldRTs := make([]string, 0, topn)
	for _, id := range stats.Sample(res.OldRetweetIDs, topn) {
		ui.PrintEntry(fmt.Sprintf("https://twitter.com/%s/status/%d", res.Me, id), "")
		oldRTs = append(oldRTs, strconv.FormatUint(id, 10))
	}
	lists["old_rts"] = oldRTs

	// Ratios against the running average only mean something relative
	// to what came before, so these three scan in posting order.
	ui.PrintHeading("notable tweets:")
	lists["notable_tweets"] = printNotable(res.Me, res.Tweets, stats.Goodness, topn,
		func(t twitter.Tweet, avg float64) string {
			return fmt.Sprintf("(%d likes/%d rts when avg was %.2f)", t.Metrics.Likes, t.Metrics.Retweets, avg)
		})

	ui.PrintHeading("talked-about tweets:")
	lists["talked_about_tweets"] = printNotable(res.Me, res.Tweets, stats.Discussion, topn,
		func(t twitter.Tweet, avg float64) string {
			return fmt.Sprintf("(%d quotes + %d replies when avg was %.2f)", t.Metrics.Quotes, t.Metrics.Replies, avg)
		})

	ui.PrintHeading("over-shared tweets:")
	lists["over_shared_tweets"] = printNotable(res.Me, res.Tweets, stats.Spread, topn,
		func(t twitter.Tweet, avg float64) string {
			return fmt.Sprintf("(%d quotes + %d retweets when avg was %.2f)", t.Metrics.Quotes, t.Metrics.Retweets, avg)
		})

	// The all-time lists.
	ui.PrintHeading("top tweets:")
	lists["top_tweets"] = printTop(res.Me, res.Tweets, stats.Goodness, topn,
		func(t twitter.Tweet) string {
			return fmt.Sprintf("(%d likes/%d rts)", t.Metrics.Likes, t.Metrics.Retweets)
		})

	ui.PrintHeading("most talked-about tweets:")
	lists["most_talked_about_tweets"] = printTop(res.Me, res.Tweets, stats.Discussion, topn,
		func(t twitter.Tweet) string {
			return fmt.Sprintf("(%d quotes/%d replies)", t.Metrics.Quotes, t.Metrics.Replies)
		})

	ui.PrintHeading("most shared tweets:")
	lists["most_shared_tweets"] = printTop(res.Me, res.Tweets, stats.Spread, topn,
		func(t twitter.Tweet) string {
			return fmt.Sprintf("(%d quotes/%d rts)", t.Metrics.Quotes, t.Metrics.Retweets)
		})

	ui.PrintHeading("top followers:")
	top := make([]string, 0, topn)
	for _, f := range stats.TopFollowers(res.Followers, topn) {
		ui.PrintEntry(userURL(f.Username), fmt.Sprintf("(%d followers)", f.Metrics.Followers))
		top = append(top, f.Username)
	}
	lists["top_followers"] = top

	ui.PrintHeading("neat followers:")
	neat := make([]string, 0, topn)
	for _, f := range stats.NeatFollowers(res.Followers, topn) {
		ui.PrintEntry(userURL(f.Username),
			fmt.Sprintf("(%d followers but only following %d)", f.Metrics.Followers, f.Metrics.Following))
		neat = append(neat, f.Username)
	}
	lists["neat_followers"] = neat

	return lists
}

func printNotable(me string, tweets []twitter.Tweet, metric stats.Metric, topn int, detail func(twitter.Tweet, float64) string) []string {
	notable := stats.FindNotable(tweets, metric, stats.DefaultFloor, stats.DefaultMultiplier)
	ids := make([]string, 0, topn)
	for _, n := range notable[:min(topn, len(notable))] {
		ui.PrintEntry(tweetURL(me, n.Tweet.ID), detail(n.Tweet, n.Average))
		ids = append(ids, n.Tweet.ID.String())
	}
	return ids
}

func printTop(me string, tweets []twitter.Tweet, metric stats.Metric, topn int, detail func(twitter.Tweet) string) []string {
	ids := make([]string, 0, topn)
	for _, t := range stats.TopBy(tweets, metric, topn) {
		ui.PrintEntry(tweetURL(me, t.ID), detail(t))
		ids = append(ids, t.ID.String())
	}
	return ids
}
