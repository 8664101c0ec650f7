package gen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type greeter struct {
	mu       sync.Mutex
	messages []Message
}

func (g *greeter) GreetUser(ctx context.Context, path GreetUserPath, query GreetUserQuery) (Greeting, error) {
	switch {
	case path.User == "nobody":
		return Greeting{}, GreetUserErrorNotFound
	case strings.Contains(path.User, " "):
		return Greeting{}, GreetUserErrorNameContainsSpace
	}
	text := "Hello " + path.User
	if query.Shout {
		text = strings.ToUpper(text)
	}
	greeting := Greeting{Text: text, Count: query.Times}
	if query.Times > 0 {
		greeting.Mood = MoodHappy
	}
	return greeting, nil
}

func (g *greeter) SendMessage(ctx context.Context, body Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, body)
	return nil
}

func noRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func TestGreeterServer(t *testing.T) {
	svc := &greeter{}
	server := httptest.NewServer(NewHandler(svc))
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = noRedirects

	get := func(t *testing.T, path string) (*http.Response, string) {
		t.Helper()
		resp, err := client.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	t.Run("greeting on every prefix", func(t *testing.T) {
		for _, prefix := range []string{"", "/v1", "/v2"} {
			resp, body := get(t, prefix+"/hello/ada?shout=true")
			require.Equal(t, http.StatusOK, resp.StatusCode, prefix)

			var g Greeting
			require.NoError(t, json.Unmarshal([]byte(body), &g))
			require.Equal(t, "HELLO ADA", g.Text)
			require.Equal(t, int64(1), g.Count)
			require.Equal(t, MoodHappy, g.Mood)
		}
	})

	t.Run("query default and value", func(t *testing.T) {
		_, body := get(t, "/hello/ada?times=3")
		require.JSONEq(t, `{"text":"Hello ada","count":3,"mood":"happy"}`, body)
	})

	t.Run("unset mood round trips", func(t *testing.T) {
		_, body := get(t, "/hello/ada?times=0")
		require.JSONEq(t, `{"text":"Hello ada","count":0}`, body)

		var g Greeting
		require.NoError(t, json.Unmarshal([]byte(body), &g))
		require.Equal(t, Mood(""), g.Mood)
		require.Equal(t, int64(0), g.Count)
	})

	t.Run("invalid query", func(t *testing.T) {
		resp, _ := get(t, "/hello/ada?times=many")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service errors", func(t *testing.T) {
		resp, body := get(t, "/hello/nobody")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.JSONEq(t, `{"error":"Not Found"}`, body)

		resp, _ = get(t, "/hello/a%20b")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("route added in v2", func(t *testing.T) {
		for _, prefix := range []string{"", "/v2"} {
			resp, err := client.Post(server.URL+prefix+"/messages", "application/json",
				strings.NewReader(`{"kind":"text","body":"hi"}`))
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusNoContent, resp.StatusCode)
		}

		resp, err := client.Post(server.URL+"/v1/messages", "application/json", strings.NewReader(`{"kind":"ping"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, err = client.Post(server.URL+"/messages", "application/json", strings.NewReader(`{"kind":"shout"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		svc.mu.Lock()
		defer svc.mu.Unlock()
		require.Len(t, svc.messages, 2)
		require.NotNil(t, svc.messages[0].Text)
		require.Equal(t, "hi", svc.messages[0].Text.Body)
	})

	t.Run("static routes", func(t *testing.T) {
		resp, _ := get(t, "/")
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		require.Equal(t, "/docs", resp.Header.Get("Location"))

		resp, _ = get(t, "/v1")
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		require.Equal(t, "/v1/docs", resp.Header.Get("Location"))

		resp, body := get(t, "/v1/openapi.yaml")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, `version: "1.0.0"`)

		_, body = get(t, "/openapi.yaml")
		require.Contains(t, body, `version: "2.0.0"`)

		resp, body = get(t, "/v2/docs")
		require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		require.Contains(t, body, "Greeter")
	})
}
