package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal/pkg/api"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client(), staticToken(token), nil)
}

func TestRequest_NonSuccessCarriesBodyVerbatim(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			io.WriteString(w, "Patient not found\n")
		})
		_, err := c.Request(context.Background(), "/x", Options{})
		require.Error(t, err)
		assert.Equal(t, "Patient not found\n", err.Error())

		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, status, reqErr.Status)
		assert.Equal(t, "/x", reqErr.Path)
	}
}

func TestRequest_ClassifiesBody(t *testing.T) {
	cases := []struct {
		body string
		kind Kind
	}{
		{"", Empty},
		{`{"id":1}`, Structured},
		{`[1,2]`, Structured},
		{`"texto"`, Structured},
		{"Note saved", Raw},
		{"{roto", Raw},
	}
	for _, tc := range cases {
		c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, tc.body)
		})
		res, err := c.Request(context.Background(), "/x", Options{})
		require.NoError(t, err)
		assert.Equal(t, tc.kind, res.Kind, tc.body)
		if tc.kind == Raw {
			assert.Equal(t, tc.body, res.Text)
		}
	}
}

func TestRequest_AuthHeaderAndBody(t *testing.T) {
	var gotAuth, gotType, gotMethod, gotTrace string
	var gotBody []byte
	c := newTestClient(t, "tok-1", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(api.AuthHeader)
		gotType = r.Header.Get("Content-Type")
		gotTrace = r.Header.Get("X-Trace")
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})

	res, err := c.Request(context.Background(), "/api/messages", Options{
		Method: http.MethodPost,
		Body:   api.SendMessageRequest{ReceiverID: 4, Content: "hola"},
		Header: http.Header{"X-Trace": {"abc"}, api.AuthHeader: {"otro"}},
	})
	require.NoError(t, err)
	assert.Equal(t, Empty, res.Kind)
	assert.Equal(t, "tok-1", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "abc", gotTrace)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.JSONEq(t, `{"receiverId":4,"content":"hola"}`, string(gotBody))
}

func TestRequest_NoTokenNoHeader(t *testing.T) {
	var present bool
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header[api.AuthHeader]
	}

	c := newTestClient(t, "", handler)
	_, err := c.Request(context.Background(), "/x", Options{})
	require.NoError(t, err)
	assert.False(t, present)

	c = newTestClient(t, "tok", handler)
	_, err = c.Request(context.Background(), "/x", Options{NoAuth: true})
	require.NoError(t, err)
	assert.False(t, present)
}

func TestRequest_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, nil, nil, nil)
	_, err := c.Request(context.Background(), "/x", Options{})
	require.Error(t, err)
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestRequest_CancelledContext(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Request(ctx, "/x", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInto(t *testing.T) {
	u, err := Into[api.User](classify([]byte(`{"id":2,"username":"anna","role":"PATIENT"}`)))
	require.NoError(t, err)
	assert.Equal(t, "anna", u.Username)

	u, err = Into[api.User](classify(nil))
	assert.NoError(t, err)
	assert.Nil(t, u)

	u, err = Into[api.User](classify([]byte("null")))
	assert.NoError(t, err)
	assert.Nil(t, u)

	_, err = Into[api.User](classify([]byte("hola")))
	assert.ErrorIs(t, err, ErrNotStructured)

	_, err = Into[api.User](classify([]byte(`[1]`)))
	assert.Error(t, err)
}
