package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"trip_hotels/internal/adapters/observability"
	"trip_hotels/internal/domain"
)

const (
	imageExt  = ".jpg"
	userAgent = "trip-hotels/1.0"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ImageFetcher downloads hotel images. Failures never surface as errors;
// the record just ends up without an image.
type ImageFetcher struct {
	hc      HTTPDoer
	store   domain.ImageStore
	timeout time.Duration
}

func NewImageFetcher(hc HTTPDoer, store domain.ImageStore, timeout time.Duration) *ImageFetcher {
	if hc == nil {
		hc = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ImageFetcher{hc: hc, store: store, timeout: timeout}
}

// Fetch issues one GET for sourceURL and stores the body as <sanitized title>.jpg.
// Hotels with the same sanitized title overwrite each other's image.
func (f *ImageFetcher) Fetch(ctx context.Context, sourceURL, title string) *string {
	if sourceURL == "" {
		observability.ObserveImage("absent")
		return nil
	}

	body, err := f.get(ctx, sourceURL)
	if err != nil {
		observability.ObserveImage("failed")
		log.Warn().Err(err).Str("url", sourceURL).Str("title", title).Msg("image fetch failed")
		return nil
	}

	path, err := f.store.Save(ctx, domain.Sanitize(title)+imageExt, body)
	if err != nil {
		observability.ObserveImage("failed")
		log.Warn().Err(err).Str("url", sourceURL).Str("title", title).Msg("image save failed")
		return nil
	}
	observability.ObserveImage("saved")
	return &path
}

func (f *ImageFetcher) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := f.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("images", "get", 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("images", "get", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("bad status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
