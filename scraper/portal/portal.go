package portal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Tn-Hub-777/rematcher/config"
	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/utils"
)

// Importer pulls listing records from a property-portal search page so
// they can flow through normalization and merging like any uploaded
// batch.
type Importer struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.SeenSet
	retry  *utils.RetryConfig
}

// New creates a ready-to-use portal Importer.
func New(cfg *config.Config, logger *utils.Logger) *Importer {
	return &Importer{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:   utils.NewSeenSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
	}
}

type cardData struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Locality string `json:"locality"`
	URL      string `json:"url"`
}

// Import fetches the configured search page and extracts listing cards
// into dynamic records with project, locality, price_raw and url fields.
func (im *Importer) Import() ([]models.Record, error) {
	if im.cfg.PortalSearchURL == "" {
		return nil, fmt.Errorf("portal: no search URL configured")
	}

	im.logger.Info("[portal] Importing listings from %s", im.cfg.PortalSearchURL)

	chromeBin := findChromeBinary(im.cfg.ChromeBin)
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	silentCtx, cancelSilent := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()

	cards, err := im.scrapeSearchPage(silentCtx)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(cards))
	for _, c := range cards {
		if c.URL == "" || !im.seen.Add(c.URL) {
			continue
		}
		records = append(records, models.Record{
			"project":   c.Title,
			"locality":  c.Locality,
			"price_raw": c.Price,
			"url":       c.URL,
			"deal_type": "Sell",
		})
	}

	im.enrichDescriptions(silentCtx, records)

	im.logger.Info("[portal] Imported %d listing records", len(records))
	return records, nil
}

func (im *Importer) scrapeSearchPage(allocCtx context.Context) ([]cardData, error) {
	var cards []cardData

	err := im.retry.Do("portal-search-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(im.cfg.PortalSearchURL),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`
				(function() {
					var results = [];
					var limit = `+fmt.Sprintf("%d", im.cfg.ListingsPerPage)+`;
					var seen = {};
					var links = document.querySelectorAll('a[href*="/property"], a[href*="/listing"], article a[href]');
					for (var i = 0; i < links.length && results.length < limit; i++) {
						var link = links[i];
						if (!link.href || seen[link.href]) continue;
						seen[link.href] = true;

						var card = link.closest('article') || link.closest('[class*="card"]') || link.closest('div');
						var text = card ? card.innerText : link.innerText;
						var lines = text.split('\n').map(function(l){ return l.trim(); }).filter(Boolean);

						results.push({
							title:    lines[0] || '',
							price:    lines.find(function(l){ return l.match(/₹|\$|lakh|crore/i); }) || '',
							locality: lines[1] || '',
							url:      link.href
						});
					}
					return results;
				})()
			`, &cards),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("portal: search page scrape: %w", err)
	}

	im.logger.Debug("[portal] Search page yielded %d cards", len(cards))
	return cards, nil
}

// enrichDescriptions visits each listing's detail page for a short
// description, fanned out over the worker pool.
func (im *Importer) enrichDescriptions(allocCtx context.Context, records []models.Record) {
	for _, rec := range records {
		r := rec
		url := r.Str("url")
		if url == "" {
			continue
		}

		im.pool.Submit(func() {
			desc, err := im.scrapeDescription(allocCtx, url)
			if err != nil {
				im.logger.Warn("[portal] Detail page failed for %s: %v", url, err)
				return
			}
			if desc != "" {
				r["description"] = desc
			}
		})
	}
	im.pool.Wait()
}

func (im *Importer) scrapeDescription(allocCtx context.Context, url string) (string, error) {
	var desc string

	err := im.retry.Do("portal-detail-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(`
				(function() {
					var paras = document.querySelectorAll('main p, article p, p');
					var texts = [];
					for (var i = 0; i < paras.length && texts.join(' ').length < 400; i++) {
						var t = paras[i].innerText.trim();
						if (t.length > 20) texts.push(t);
					}
					return texts.join(' ').substring(0, 500);
				})()
			`, &desc),
		)
	})

	return desc, err
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
