package content_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoder/internal/content"
)

var article = strings.Repeat("Resultado trimestral acima do esperado. ", 20)

func page(body string) string {
	return `<html><head><style>.x{}</style><script>var tracking = 1;</script></head><body>
<nav>Menu Início Contato</nav>
<header>Cabeçalho</header>
` + body + `
<footer>Rodapé legal</footer>
</body></html>`
}

func TestFromHTML_PrefersArticle(t *testing.T) {
	out, err := content.FromHTML(strings.NewReader(page(`<div class="sidebar">links</div><article><p>` + article + `</p></article>`)))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(article), out)
	assert.NotContains(t, out, "tracking")
}

func TestFromHTML_FallsBackToBody(t *testing.T) {
	body := "<p>" + strings.Repeat("texto curto ", 15) + "</p>"
	out, err := content.FromHTML(strings.NewReader(page(body)))
	require.NoError(t, err)
	assert.Contains(t, out, "texto curto")
	assert.NotContains(t, out, "Menu")
	assert.NotContains(t, out, "Rodapé")
}

func TestFromHTML_Insufficient(t *testing.T) {
	_, err := content.FromHTML(strings.NewReader(page("<p>pouco</p>")))
	assert.ErrorIs(t, err, content.ErrInsufficientContent)
}

func TestFromURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page("<main>" + article + "</main>")))
	}))
	defer ts.Close()

	e := content.New(content.WithHTTPClient(ts.Client()))

	out, err := e.FromURL(context.Background(), ts.URL+"/post")
	require.NoError(t, err)
	assert.Contains(t, out, "Resultado trimestral")

	_, err = e.FromURL(context.Background(), ts.URL+"/missing")
	assert.ErrorIs(t, err, content.ErrFetch)

	_, err = e.FromURL(context.Background(), "://bad")
	assert.ErrorIs(t, err, content.ErrFetch)
}

func TestFromPDF_Errors(t *testing.T) {
	e := content.New()

	_, err := e.FromPDF(make([]byte, content.MaxPDFBytes+1))
	assert.ErrorIs(t, err, content.ErrTooLarge)

	_, err = e.FromPDF([]byte("definitely not a pdf"))
	assert.Error(t, err)
}
