// pkg/catalog/fetcher.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/heinrichb/inventoryreport/pkg/catalog")

/*
FetchFailure is returned when the catalog cannot be retrieved.

StatusCode and Body are set for a non-200 response; Err is set for
transport and decode errors, with StatusCode left at zero.
*/
type FetchFailure struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (f *FetchFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("catalog request %s returned status %d: %s", f.URL, f.StatusCode, f.Body)
	}
	return fmt.Sprintf("catalog request %s failed: %v", f.URL, f.Err)
}

func (f *FetchFailure) Unwrap() error { return f.Err }

/*
Options configures a Fetcher.

  - BaseURL:     Shop root, e.g. https://doggles.myshopify.com.
  - APIVersion:  Admin API version segment.
  - Token:       Static access token.
  - TokenHeader: Header that carries Token.
  - PageSize:    The limit query parameter.
  - MaxPages:    Abort after this many pages; 0 disables the cap.
  - Timeout:     HTTP client timeout when Client is nil.
*/
type Options struct {
	BaseURL     string
	APIVersion  string
	Token       string
	TokenHeader string
	PageSize    int
	MaxPages    int
	Timeout     time.Duration
	Client      *http.Client
	Logger      *slog.Logger
}

// Fetcher pages through the products listing and builds the report table.
type Fetcher struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

// NewFetcher returns a Fetcher for opts.
func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.TokenHeader == "" {
		opts.TokenHeader = "X-Shopify-Access-Token"
	}
	return &Fetcher{opts: opts, client: client, logger: logger}
}

// ProductsURL is the first page of the products listing.
func (f *Fetcher) ProductsURL() string {
	u := fmt.Sprintf("%s/admin/api/%s/products.json",
		strings.TrimRight(f.opts.BaseURL, "/"), f.opts.APIVersion)
	if f.opts.PageSize > 0 {
		u += "?limit=" + strconv.Itoa(f.opts.PageSize)
	}
	return u
}

/*
Fetch retrieves every page of the catalog and returns the in-stock rows
in listing order. Any failure, including a transport error, is returned
as a *FetchFailure and no partial table is produced.
*/
func (f *Fetcher) Fetch(ctx context.Context) (Table, error) {
	products, err := f.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	summary := Summarize(products)
	f.logger.Info("catalog fetched",
		"products", summary.Products,
		"variants", summary.Variants,
		"in_stock", summary.InStock,
		"units", summary.Units,
		"stock_value", summary.StockValue.StringFixed(2),
	)

	return Build(products), nil
}

// FetchProducts follows the Link rel="next" chain and returns all products.
func (f *Fetcher) FetchProducts(ctx context.Context) ([]Product, error) {
	ctx, span := tracer.Start(ctx, "catalog.fetch")
	defer span.End()

	var all []Product
	pageURL := f.ProductsURL()
	pages := 0
	for pageURL != "" {
		if f.opts.MaxPages > 0 && pages >= f.opts.MaxPages {
			err := &FetchFailure{URL: pageURL, Err: fmt.Errorf("exceeded max pages (%d)", f.opts.MaxPages)}
			span.RecordError(err)
			span.SetStatus(codes.Error, "max pages exceeded")
			return nil, err
		}

		products, next, err := f.getPage(ctx, pageURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog page failed")
			return nil, err
		}
		pages++
		all = append(all, products...)
		f.logger.Debug("catalog page", "page", pages, "products", len(products), "has_next", next != "")
		pageURL = next
	}

	span.SetAttributes(
		attribute.Int("catalog.pages", pages),
		attribute.Int("catalog.products", len(all)),
	)
	return all, nil
}

func (f *Fetcher) getPage(ctx context.Context, pageURL string) ([]Product, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", &FetchFailure{URL: pageURL, Err: err}
	}
	req.Header.Set(f.opts.TokenHeader, f.opts.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &FetchFailure{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchFailure{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &FetchFailure{URL: pageURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var page productsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", &FetchFailure{URL: pageURL, Err: fmt.Errorf("decode products: %w", err)}
	}

	next, err := resolveNext(pageURL, resp.Header.Values("Link"))
	if err != nil {
		return nil, "", &FetchFailure{URL: pageURL, Err: err}
	}
	return page.Products, next, nil
}

func resolveNext(current string, linkHeaders []string) (string, error) {
	next := NextPageURL(strings.Join(linkHeaders, ","))
	if next == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parse next link %q: %w", next, err)
	}
	return base.ResolveReference(ref).String(), nil
}

/*
NextPageURL extracts the rel="next" target from an RFC 8288 Link header,
e.g. `<https://shop/admin/api/2023-10/products.json?page_info=abc>; rel="next"`.
It returns "" when there is no next page.
*/
func NextPageURL(header string) string {
	for _, link := range strings.Split(header, ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range parts[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
				if strings.EqualFold(rel, "next") {
					return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
				}
			}
		}
	}
	return ""
}
