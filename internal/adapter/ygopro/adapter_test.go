package ygopro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"CardSync/internal/config"
	"CardSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(baseURL string) *Adapter {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewAdapter(&config.CatalogueConfig{BaseURL: baseURL, Timeout: 5}, logger).(*Adapter)
}

func TestFetchCatalogue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":100,"name":"Blue-Eyes White Dragon","desc":"legendary dragon","card_images":[{"image_url":"http://img/100.jpg"}]},
			{"id":200,"name":"Dark Magician","desc":"the ultimate wizard","card_images":[{"image_url":"http://img/200.jpg"}]}
		]}`))
	}))
	defer srv.Close()

	cards, err := newTestAdapter(srv.URL).FetchCatalogue(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, int64(100), cards[0].ID)
	assert.Equal(t, "Blue-Eyes White Dragon", cards[0].Name)
	assert.Equal(t, "http://img/100.jpg", cards[0].FirstImageURL())
}

func TestFetchCatalogueNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cards, err := newTestAdapter(srv.URL).FetchCatalogue(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNetwork)
	assert.Nil(t, cards) // 失败时不返回部分结果
}

func TestFetchCatalogueMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": "not-a-number"`))
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv.URL).FetchCatalogue(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestNormalizeDedup(t *testing.T) {
	// 同ID的异画条目：保留首次出现的条目及其卡图URL，后续静默丢弃
	raw := []*model.RemoteCard{
		{ID: 1, Name: "Alt Art A", CardImages: []model.RemoteCardImage{{ImageURL: "http://img/first.jpg"}}},
		{ID: 2, Name: "Other"},
		{ID: 1, Name: "Alt Art B", CardImages: []model.RemoteCardImage{{ImageURL: "http://img/second.jpg"}}},
	}

	cards := Normalize(raw)
	require.Len(t, cards, 2)
	assert.Equal(t, int64(1), cards[0].ID) // 首见顺序保持
	assert.Equal(t, int64(2), cards[1].ID)
	assert.Equal(t, "http://img/first.jpg", cards[0].FirstImageURL())
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]*model.RemoteCard{nil}))
}
