package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockPayload struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

func bindStock(t *testing.T, key, body string) (stockPayload, error) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var out stockPayload
	err := BindNestedOrFlat(c, key, &out)
	return out, err
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		key     string
		body    string
		want    stockPayload
		wantErr bool
	}{
		{"nested", "sale", `{"sale": {"item": "Panel A", "quantity": 3}}`, stockPayload{"Panel A", 3}, false},
		{"flat", "sale", `{"item": "Inverter", "quantity": 1}`, stockPayload{"Inverter", 1}, false},
		{"flat field shares the key", "item", `{"item": "Panel A", "quantity": 10}`, stockPayload{"Panel A", 10}, false},
		{"nested under the same key", "item", `{"item": {"item": "Battery", "quantity": 2}}`, stockPayload{"Battery", 2}, false},
		{"unrelated keys fall back to flat", "sale", `{"note": "x", "item": "Cable", "quantity": 5}`, stockPayload{"Cable", 5}, false},
		{"bad flat type", "sale", `{"item": "Panel A", "quantity": "three"}`, stockPayload{}, true},
		{"bad nested type", "sale", `{"sale": {"quantity": "three"}}`, stockPayload{}, true},
		{"empty body", "sale", ``, stockPayload{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bindStock(t, tt.key, tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindNestedOrFlat_BodyCanBeReadAgain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"confirm": "DELETE"}`))

	var first stockPayload
	require.NoError(t, BindNestedOrFlat(c, "sale", &first))

	var confirm ConfirmRequest
	require.NoError(t, c.ShouldBindJSON(&confirm))
	assert.Equal(t, "DELETE", confirm.Confirm)
}
