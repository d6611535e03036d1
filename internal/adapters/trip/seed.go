package trip

import (
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var cityIDRe = regexp.MustCompile(`"cityId":\s*(\d+)`)

// CityIDs returns the distinct city ids mentioned in the seed page's scripts,
// sorted. If no script mentions one, the whole document is scanned.
func CityIDs(html string) []string {
	seen := map[string]struct{}{}
	collect := func(s string) {
		for _, m := range cityIDRe.FindAllStringSubmatch(s, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("script").Each(func(_ int, s *goquery.Selection) {
			collect(s.Text())
		})
	}
	if len(seen) == 0 {
		collect(html)
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PickCity chooses one id at random; ok is false for an empty list.
func PickCity(ids []string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	return ids[rand.Intn(len(ids))], true
}

// ListingURL builds the hotel list URL for a one-night stay starting the day after now.
func ListingURL(base, cityID string, now time.Time) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("listing base url: %w", err)
	}
	checkin := now.AddDate(0, 0, 1).Format("2006/01/02")
	checkout := now.AddDate(0, 0, 2).Format("2006/01/02")

	// dates keep their slashes unescaped, the way the site links them
	q := fmt.Sprintf("city=%s&checkin=%s&checkout=%s", url.QueryEscape(cityID), checkin, checkout)
	if u.RawQuery != "" {
		q = u.RawQuery + "&" + q
	}
	u.RawQuery = q
	return u.String(), nil
}
