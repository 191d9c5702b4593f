package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head>
<title>Gardening for Programmers</title>
<meta name="keywords" content="Garden, Soil, garden, compost">
</head><body>
<nav>Home | About</nav>
<article>
<h1>Gardening for Programmers</h1>
<p>Raised beds are the easiest way to start a vegetable garden. They warm up quickly in spring and drain well after heavy rain.</p>
<p>Compost feeds the soil life that in turn feeds your plants. Turn the pile every couple of weeks and keep it as damp as a wrung out sponge.</p>
<p>Mulch keeps moisture in and weeds out, and it slowly breaks down into more organic matter for the beds.</p>
</article>
</body></html>`

func TestFetch_ExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	article, err := New().Fetch(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.Contains(t, article.Title, "Gardening for Programmers")
	assert.Contains(t, article.Content, "Raised beds")
	assert.Equal(t, []string{"garden", "soil", "compost"}, article.Tags)
}

func TestFetch_RejectsNonHTTP(t *testing.T) {
	_, err := New().Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
