package listing_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caesb-automation/baixa/internal/listing"
	"github.com/caesb-automation/baixa/internal/session"
)

const controlPage = `<html><body>
<form id="formPesquisa" action="/gcom/app/atendimento/os/controleOs/controle?execution=e1s2" method="post">
<input type="hidden" name="javax.faces.ViewState" value="-981:222" />
</form>
</body></html>`

func testBundle() *session.Bundle {
	return &session.Bundle{
		Cookies:   map[string]string{"JSESSIONID": "abc123"},
		Execution: "e1s1",
		ViewState: "-981:111",
	}
}

func newTestClient(baseURL string) *listing.Client {
	return listing.NewClient(
		listing.Config{
			ControlURL:  baseURL + "/gcom/app/atendimento/os/controleOs/controle",
			RowsPerPage: 100,
			Timeout:     5 * time.Second,
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestListPending(t *testing.T) {
	var posts []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("id") != "1111" {
				t.Errorf("initial GET id: got %s, want 1111", r.URL.Query().Get("id"))
			}
			if cookie := r.Header.Get("Cookie"); !strings.Contains(cookie, "JSESSIONID=abc123") {
				t.Errorf("cookie header: got %q", cookie)
			}
			fmt.Fprint(w, controlPage)

		case http.MethodPost:
			if got := r.Header.Get("Faces-Request"); got != "partial/ajax" {
				t.Errorf("Faces-Request: got %q", got)
			}
			if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
				t.Errorf("X-Requested-With: got %q", got)
			}
			if got := r.URL.Query().Get("execution"); got != "e1s2" {
				t.Errorf("execution: got %s, want e1s2", got)
			}

			body, _ := io.ReadAll(r.Body)
			posts = append(posts, string(body))

			if strings.Contains(string(body), "tabChange") {
				fmt.Fprint(w, `<?xml version='1.0' encoding='UTF-8'?><partial-response><changes/></partial-response>`)
				return
			}
			fmt.Fprint(w, partialResponse)
		}
	}))
	defer srv.Close()

	orders, err := newTestClient(srv.URL).ListPending(context.Background(), testBundle())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	want := []string{"0000123456789012", "0000123456789013"}
	if len(orders) != len(want) || orders[0] != want[0] || orders[1] != want[1] {
		t.Errorf("orders: got %v, want %v", orders, want)
	}

	if len(posts) != 2 {
		t.Fatalf("posts: got %d, want 2", len(posts))
	}
	if !strings.Contains(posts[0], "abas_newTab=abas%3Arecebidas") {
		t.Errorf("tab change post missing tab parameter: %s", posts[0])
	}
	if !strings.Contains(posts[1], "_rows=100") {
		t.Errorf("resize post missing rows parameter: %s", posts[1])
	}
	if !strings.Contains(posts[1], "javax.faces.ViewState=-981%3A222") {
		t.Errorf("resize post should carry the fresh view state: %s", posts[1])
	}
}

func TestListPendingExecutionFromRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Query().Get("execution") == "" {
			http.Redirect(w, r, r.URL.Path+"?execution=e7s1", http.StatusFound)
			return
		}
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<input type="hidden" name="javax.faces.ViewState" value="-1:1" />`)
			return
		}
		if got := r.URL.Query().Get("execution"); got != "e7s1" {
			t.Errorf("execution: got %s, want e7s1", got)
		}
		fmt.Fprint(w, partialResponse)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).ListPending(context.Background(), testBundle()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}

func TestListPendingMissingTokens(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no execution anywhere", `<html><body>login</body></html>`},
		{"no view state", `<form action="/x?execution=e1s1"></form>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).ListPending(context.Background(), testBundle())
			if !errors.Is(err, listing.ErrProtocol) {
				t.Errorf("error: got %v, want ErrProtocol", err)
			}
		})
	}
}
