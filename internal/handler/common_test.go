package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestGetUserIDAcceptsClaimShapes(t *testing.T) {
	// JWT claims round-trip as float64 through JSON; other shapes show
	// up in tests and internal calls.
	cases := []struct {
		name  string
		value interface{}
		want  uint64
	}{
		{"uint64", uint64(42), 42},
		{"int", int(42), 42},
		{"int64", int64(42), 42},
		{"float64", float64(42), 42},
		{"string", "42", 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext(t)
			c.Set("user_id", tc.value)
			got, err := getUserID(c)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetUserIDRejectsMissingOrGarbage(t *testing.T) {
	c := newTestContext(t)
	_, err := getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	c := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("17")
	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(17), id)

	c.SetParamValues("0")
	_, ok = pathID(c, "id")
	assert.False(t, ok)

	c.SetParamValues("abc")
	_, ok = pathID(c, "id")
	assert.False(t, ok)
}
