package helpdesk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/helpdesk"
	helpdeskerrors "github.com/Philgatex/huashang-hais-app/internal/helpdesk/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	prompt string
	answer string
	err    error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestHTTPCompleter_Complete(t *testing.T) {
	t.Run("posts prompt and reads response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "how many leave days?", body["prompt"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response":"21 days"}`))
		}))
		defer srv.Close()

		c := helpdesk.NewHTTPCompleter(srv.URL, "secret", time.Second)
		got, err := c.Complete(context.Background(), "how many leave days?")

		assert.NoError(t, err)
		assert.Equal(t, "21 days", got)
	})

	t.Run("non 2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := helpdesk.NewHTTPCompleter(srv.URL, "", time.Second).Complete(context.Background(), "hi")

		assert.ErrorContains(t, err, "429")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := helpdesk.NewHTTPCompleter(srv.URL, "", 20*time.Millisecond).Complete(context.Background(), "hi")

		assert.Error(t, err)
	})
}

func TestService_Ask(t *testing.T) {
	t.Run("wraps the question in the assistant prompt", func(t *testing.T) {
		completer := &fakeCompleter{answer: "  Payslips are issued on the 28th.  "}
		svc := helpdesk.NewService(completer)

		resp, err := svc.Ask(context.Background(), "  When are payslips issued? ")

		assert.NoError(t, err)
		assert.Equal(t, "Payslips are issued on the 28th.", resp.Answer)
		assert.Contains(t, completer.prompt, "HR assistant")
		assert.True(t, strings.HasSuffix(completer.prompt, "Question: When are payslips issued?"))
	})

	t.Run("empty question", func(t *testing.T) {
		completer := &fakeCompleter{}
		svc := helpdesk.NewService(completer)

		_, err := svc.Ask(context.Background(), "   ")

		assert.ErrorIs(t, err, helpdeskerrors.ErrEmptyQuestion)
		assert.Empty(t, completer.prompt)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := helpdesk.NewService(&fakeCompleter{}).Ask(context.Background(), strings.Repeat("a", 2001))

		assert.ErrorIs(t, err, helpdeskerrors.ErrQuestionTooLong)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := helpdesk.NewService(nil).Ask(context.Background(), "hello")

		assert.ErrorIs(t, err, helpdeskerrors.ErrNotConfigured)
	})

	t.Run("upstream failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		_, err := helpdesk.NewService(&fakeCompleter{err: cause}).Ask(context.Background(), "hello")

		assert.ErrorIs(t, err, helpdeskerrors.ErrCompletionFailed)
		assert.ErrorIs(t, err, cause)
	})
}

func TestHandler_Ask(t *testing.T) {
	gin.SetMode(gin.TestMode)

	do := func(h *helpdesk.Handler, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/helpdesk/ask", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		h.Ask(c)
		return w
	}

	t.Run("success", func(t *testing.T) {
		h := helpdesk.NewHandler(helpdesk.NewService(&fakeCompleter{answer: "Ask HR."}))

		w := do(h, `{"question":"Can I change my bank?"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"answer":"Ask HR."`)
	})

	t.Run("missing question", func(t *testing.T) {
		h := helpdesk.NewHandler(helpdesk.NewService(&fakeCompleter{}))

		w := do(h, `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		h := helpdesk.NewHandler(helpdesk.NewService(&fakeCompleter{err: errors.New("boom")}))

		w := do(h, `{"question":"hi"}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "UPSTREAM")
	})
}
