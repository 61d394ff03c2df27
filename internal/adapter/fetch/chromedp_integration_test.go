//go:build integration

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromeDPFetcherRendersPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<!DOCTYPE html><html><body><div id="ua">%s</div>
<script>document.body.insertAdjacentHTML("beforeend", '<div class="g"><a href="/url?q=https://rendered.com/&amp;sa=U">r</a></div>')</script>
</body></html>`, r.UserAgent())
	}))
	defer srv.Close()

	f := NewChromeDPFetcher(ChromeConfig{Headless: true, Timeout: 30 * time.Second}, newTestLogger())
	defer f.Close()

	h := http.Header{}
	h.Set("User-Agent", "googlebot-test")
	body, err := f.Fetch(context.Background(), srv.URL, h)
	require.NoError(t, err)
	assert.Contains(t, string(body), "googlebot-test")
	assert.Contains(t, string(body), "https://rendered.com/")
}
