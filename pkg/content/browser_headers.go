package content

import (
	"math/rand"
	"net/http"
)

// acceptLanguages contains common browser Accept-Language values
var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.9,pt-BR;q=0.8",
	"pt-BR,pt;q=0.9,en;q=0.8",
}

// addBrowserHeaders adds browser-like headers to image requests, some newsletter
// CDNs refuse requests without them
func addBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/png,image/jpeg,image/*;q=0.8,*/*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation
	req.Header.Set("Sec-Fetch-Dest", "image")
	req.Header.Set("Sec-Fetch-Mode", "no-cors")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
}
