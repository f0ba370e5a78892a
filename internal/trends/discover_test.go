package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div class="trending-list">
				<a href="/t/1"> sneakers </a>
				<a href="/t/2">air fryer</a>
				<a href="/t/3">sneakers</a>
				<a href="/t/4"></a>
			</div>
		</body></html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)

	keywords, err := client.Discover(context.Background(), server.URL, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"sneakers", "air fryer"}, keywords, "trimmed, deduplicated, source order kept")
}

func TestDiscover_CustomSelector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<ul id="terms"><li>winter coats</li><li>swimwear</li></ul>
		</body></html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)

	keywords, err := client.Discover(context.Background(), server.URL, "#terms li")
	require.NoError(t, err)
	assert.Equal(t, []string{"winter coats", "swimwear"}, keywords)
}

func TestDiscover_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)

	_, err := client.Discover(context.Background(), server.URL, "")
	require.Error(t, err)
}
