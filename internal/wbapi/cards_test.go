package wbapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCardBody = `{
	"cards": [
		{
			"nmID": 555,
			"imtID": 9001,
			"vendorCode": "SKU-1",
			"title": "Widget",
			"subjectName": "Widgets",
			"sizes": [
				{"techSize": "M", "wbSize": "44", "skus": ["2000000000001"]}
			]
		}
	],
	"cursor": {"updatedAt": "2025-06-01T10:00:00Z", "nmID": 555, "total": 1},
	"total": 1
}`

func TestFetchContentCardsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/content/v2/get/cards/list", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		settings := body["settings"].(map[string]interface{})
		cursor := settings["cursor"].(map[string]interface{})
		assert.Equal(t, float64(100), cursor["limit"])
		assert.NotContains(t, cursor, "updatedAt")
		filter := settings["filter"].(map[string]interface{})
		assert.Equal(t, float64(-1), filter["withPhoto"])
		assert.Equal(t, "ru", settings["locale"])

		w.Write([]byte(validCardBody))
	}))
	defer srv.Close()

	resp, err := testClient(srv.URL).FetchContentCardsPage(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Cards, 1)

	card := resp.Cards[0]
	assert.Equal(t, int64(555), *card.NMID)
	assert.Equal(t, int64(9001), *card.ImtID)
	assert.Equal(t, "SKU-1", *card.VendorCode)
	require.Len(t, card.Sizes, 1)
	assert.Equal(t, []string{"2000000000001"}, card.Sizes[0].Skus)
}

func TestFetchContentCardsPageForwardsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cursor := body["settings"].(map[string]interface{})["cursor"].(map[string]interface{})
		assert.Equal(t, "2025-06-01T10:00:00Z", cursor["updatedAt"])
		assert.Equal(t, float64(555), cursor["nmID"])

		w.Write([]byte(`{"cards": [], "total": 0}`))
	}))
	defer srv.Close()

	cur := &ContentCursor{UpdatedAt: strPtr("2025-06-01T10:00:00Z"), NMID: i64Ptr(555)}
	resp, err := testClient(srv.URL).FetchContentCardsPage(context.Background(), cur)
	require.NoError(t, err)
	assert.Empty(t, resp.Cards)
}

func TestFetchContentCardsPageStructuralError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing cards", `{"total": 0}`, "missing 'cards'"},
		{"missing imtID", `{"cards": [{"nmID": 1, "vendorCode": "a", "title": "t", "subjectName": "s", "sizes": [{"skus": []}]}]}`, "missing 'imtID'"},
		{"missing vendorCode", `{"cards": [{"nmID": 1, "imtID": 2, "title": "t", "subjectName": "s", "sizes": [{"skus": []}]}]}`, "missing 'vendorCode'"},
		{"empty sizes", `{"cards": [{"nmID": 1, "imtID": 2, "vendorCode": "a", "title": "t", "subjectName": "s", "sizes": []}]}`, "empty 'sizes'"},
		{"sizes without skus", `{"cards": [{"nmID": 1, "imtID": 2, "vendorCode": "a", "title": "t", "subjectName": "s", "sizes": [{"techSize": "M"}]}]}`, "missing 'sizes[0].skus'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).FetchContentCardsPage(context.Background(), nil)
			require.Error(t, err)
			assert.True(t, IsStructural(err))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestFetchAllContentCardsPaginates(t *testing.T) {
	pages := []string{
		// Full page: total == limit, cursor points at the last card.
		func() string {
			cards := make([]string, 0, MaxContentCardsPageSize)
			for i := 1; i <= MaxContentCardsPageSize; i++ {
				cards = append(cards, cardJSON(int64(i)))
			}
			return `{"cards": [` + strings.Join(cards, ",") + `], "cursor": {"updatedAt": "2025-06-01T10:00:00Z", "nmID": 100}, "total": 100}`
		}(),
		// Short page terminates the walk.
		`{"cards": [` + cardJSON(101) + `], "cursor": {"updatedAt": "2025-06-02T10:00:00Z", "nmID": 101}, "total": 1}`,
	}

	var call int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cursor := body["settings"].(map[string]interface{})["cursor"].(map[string]interface{})
		if call == 0 {
			assert.NotContains(t, cursor, "nmID")
		} else {
			assert.Equal(t, float64(100), cursor["nmID"])
		}

		require.Less(t, call, len(pages))
		w.Write([]byte(pages[call]))
		call++
	}))
	defer srv.Close()

	cards, err := testClient(srv.URL).FetchAllContentCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, call)
	assert.Len(t, cards, MaxContentCardsPageSize+1)
	assert.Equal(t, int64(101), *cards[MaxContentCardsPageSize].NMID)
}

func TestFetchAllContentCardsEmptySeller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cards": [], "total": 0}`))
	}))
	defer srv.Close()

	cards, err := testClient(srv.URL).FetchAllContentCards(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func cardJSON(nmID int64) string {
	b, _ := json.Marshal(map[string]interface{}{
		"nmID":        nmID,
		"imtID":       nmID + 10000,
		"vendorCode":  "SKU",
		"title":       "Widget",
		"subjectName": "Widgets",
		"sizes":       []map[string]interface{}{{"techSize": "M", "skus": []string{"b"}}},
	})
	return string(b)
}
