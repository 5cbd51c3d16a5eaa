package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tenki/internal/external"
	"tenki/internal/types"
)

type mockRestaurantSearcher struct {
	mock.Mock
}

func (m *mockRestaurantSearcher) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *mockRestaurantSearcher) Credit() types.ProviderCredit {
	return m.Called().Get(0).(types.ProviderCredit)
}

func (m *mockRestaurantSearcher) SearchRestaurants(ctx context.Context, lat, lng float64, rangeCode, count int, genre string) ([]types.Restaurant, error) {
	args := m.Called(ctx, lat, lng, rangeCode, count, genre)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Restaurant), args.Error(1)
}

var testCredit = types.ProviderCredit{PoweredBy: "test", Text: "Powered by test"}

func TestRestaurantEngine_Recommend_PrimaryGenreHit(t *testing.T) {
	searcher := new(mockRestaurantSearcher)
	searcher.On("IsConfigured").Return(true)
	searcher.On("Credit").Return(testCredit)
	searcher.On("SearchRestaurants", mock.Anything, 35.68, 139.76, external.RestaurantRange1000m, 5, "G004").
		Return([]types.Restaurant{{Name: "ラーメン一番"}, {Name: "和食処"}}, nil)

	engine := NewRestaurantEngine(searcher, nil)
	rec := engine.Recommend(context.Background(), "light rain", 35.68, 139.76, types.LocaleJapanese)

	require.NotNil(t, rec)
	assert.True(t, rec.HasRecommendations)
	assert.Len(t, rec.Restaurants, 2)
	require.NotNil(t, rec.Genre)
	assert.Equal(t, "rain", rec.Genre.WeatherType)
	assert.Equal(t, "G004", rec.Genre.Primary)
	assert.Equal(t, rec.Genre.Reason, rec.Reason)
	assert.Equal(t, testCredit, rec.Credit)
	require.NotNil(t, rec.SearchParams)
	assert.Equal(t, "light rain", rec.SearchParams.Weather)
	assert.Equal(t, "G004", rec.SearchParams.Genre)
	searcher.AssertExpectations(t)
}

func TestRestaurantEngine_Recommend_FallbackWidensSearch(t *testing.T) {
	searcher := new(mockRestaurantSearcher)
	searcher.On("IsConfigured").Return(true)
	searcher.On("Credit").Return(testCredit)
	searcher.On("SearchRestaurants", mock.Anything, 35.68, 139.76, external.RestaurantRange1000m, 5, "G016").
		Return([]types.Restaurant{}, nil)
	// The widened 3km pass keeps the same genre code.
	searcher.On("SearchRestaurants", mock.Anything, 35.68, 139.76, external.RestaurantRange3000m, 5, "G016").
		Return([]types.Restaurant{{Name: "somewhere"}}, nil)

	engine := NewRestaurantEngine(searcher, nil)
	rec := engine.Recommend(context.Background(), "clear sky", 35.68, 139.76, types.LocaleEnglish)

	assert.True(t, rec.HasRecommendations)
	assert.Len(t, rec.Restaurants, 1)
	searcher.AssertExpectations(t)
}

func TestRestaurantEngine_Recommend_BothSearchesEmpty(t *testing.T) {
	searcher := new(mockRestaurantSearcher)
	searcher.On("IsConfigured").Return(true)
	searcher.On("Credit").Return(testCredit)
	searcher.On("SearchRestaurants", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.Restaurant{}, nil).Twice()

	engine := NewRestaurantEngine(searcher, nil)
	rec := engine.Recommend(context.Background(), "clear sky", 35.68, 139.76, types.LocaleEnglish)

	assert.False(t, rec.HasRecommendations)
	assert.Empty(t, rec.Restaurants)
	// Classification and reason still render even without results.
	require.NotNil(t, rec.Genre)
	assert.NotEmpty(t, rec.Reason)
	searcher.AssertExpectations(t)
}

func TestRestaurantEngine_Recommend_SearchErrorDegradesToEmpty(t *testing.T) {
	searcher := new(mockRestaurantSearcher)
	searcher.On("IsConfigured").Return(true)
	searcher.On("Credit").Return(testCredit)
	searcher.On("SearchRestaurants", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, types.NewAppError(types.ErrCodeUpstreamRestaurant, "provider down", nil)).Twice()

	engine := NewRestaurantEngine(searcher, nil)
	rec := engine.Recommend(context.Background(), "light rain", 35.68, 139.76, types.LocaleJapanese)

	require.NotNil(t, rec)
	assert.False(t, rec.HasRecommendations)
	assert.Empty(t, rec.Restaurants)
	searcher.AssertExpectations(t)
}

func TestRestaurantEngine_Recommend_NotConfigured(t *testing.T) {
	searcher := new(mockRestaurantSearcher)
	searcher.On("IsConfigured").Return(false)
	searcher.On("Credit").Return(testCredit)

	engine := NewRestaurantEngine(searcher, nil)

	tests := []struct {
		locale types.Locale
		reason string
	}{
		{types.LocaleJapanese, "グルメ情報を取得できませんでした"},
		{types.LocaleEnglish, "Restaurant information is not available"},
		{types.LocaleChinese, "无法获取餐厅信息"},
		{types.Locale("fr"), "グルメ情報を取得できませんでした"},
	}
	for _, tt := range tests {
		rec := engine.Recommend(context.Background(), "light rain", 35.68, 139.76, tt.locale)
		assert.False(t, rec.HasRecommendations)
		assert.Equal(t, tt.reason, rec.Reason)
		assert.Nil(t, rec.Genre)
		assert.NotNil(t, rec.Restaurants)
		// Attribution is required even when nothing is recommended.
		assert.Equal(t, testCredit, rec.Credit)
	}
	searcher.AssertNotCalled(t, "SearchRestaurants")
}
