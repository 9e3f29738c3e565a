package tour_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihaego327-source/oz1210/internal/tour"
	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

func TestDetail_MergesIntroAndImages(t *testing.T) {
	m := &mockUpstream{
		getDetailFn: func(_ context.Context, contentID string) (*tourapi.Detail, error) {
			return &tourapi.Detail{
				Attraction: tourapi.Attraction{ContentID: contentID, Title: "경복궁", MapX: "1269769000", MapY: "375796000"},
				Overview:   "조선의 법궁",
				Homepage:   `<a href="http://www.royalpalace.go.kr" target="_blank">경복궁</a>`,
			}, nil
		},
		getIntroFn: func(_ context.Context, _, _ string) (tourapi.Intro, error) {
			return tourapi.Intro{"usetime": "09:00~18:00"}, nil
		},
		getImagesFn: func(_ context.Context, _ string, _, _ int) (*tourapi.Page[tourapi.ImageInfo], error) {
			return &tourapi.Page[tourapi.ImageInfo]{Items: []tourapi.ImageInfo{{OriginImgURL: "http://img/1.jpg"}}}, nil
		},
	}

	view, err := newService(m).Detail(context.Background(), "101", "12")
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.Equal(t, "조선의 법궁", view.Overview)
	assert.Equal(t, "http://www.royalpalace.go.kr", view.Homepage)
	assert.Equal(t, "09:00~18:00", view.Intro["usetime"])
	require.Len(t, view.Images, 1)
	require.NotNil(t, view.Coordinate)
	assert.True(t, view.Coordinate.InKorea())
}

func TestDetail_IntroFailureTolerated(t *testing.T) {
	m := &mockUpstream{
		getDetailFn: func(_ context.Context, contentID string) (*tourapi.Detail, error) {
			return &tourapi.Detail{Attraction: tourapi.Attraction{ContentID: contentID, Title: "경복궁"}}, nil
		},
		getIntroFn: func(_ context.Context, _, _ string) (tourapi.Intro, error) {
			return nil, &tourapi.Error{Category: tourapi.CategoryUpstream}
		},
	}

	view, err := newService(m).Detail(context.Background(), "101", "12")
	require.NoError(t, err, "intro is supplementary, its failure must not abort the detail")
	require.NotNil(t, view)
	assert.Nil(t, view.Intro)
}

func TestDetail_NotFound(t *testing.T) {
	m := &mockUpstream{}
	view, err := newService(m).Detail(context.Background(), "999", "12")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestDetail_FailurePropagates(t *testing.T) {
	m := &mockUpstream{
		getDetailFn: func(_ context.Context, _ string) (*tourapi.Detail, error) {
			return nil, &tourapi.Error{Category: tourapi.CategoryNetwork}
		},
	}
	_, err := newService(m).Detail(context.Background(), "101", "12")
	require.Error(t, err)
}

func TestPet_EndpointRecord(t *testing.T) {
	m := &mockUpstream{
		getPetInfoFn: func(_ context.Context, _ string) (*tourapi.PetInfo, error) {
			return &tourapi.PetInfo{AcmpyTypeCd: "동반가능", AcmpyPsblCpam: "소형견"}, nil
		},
	}

	summary, err := newService(m).Pet(context.Background(), "101")
	require.NoError(t, err)
	assert.True(t, summary.Allowed)
	require.NotNil(t, summary.Info)
}

func TestPet_NoRecordFallsBackToDetailScan(t *testing.T) {
	m := &mockUpstream{
		getDetailFn: func(_ context.Context, contentID string) (*tourapi.Detail, error) {
			return &tourapi.Detail{
				Attraction: tourapi.Attraction{ContentID: contentID, Title: "애견동반 카페"},
				Overview:   "반려견과 함께 입장 가능",
			}, nil
		},
	}

	summary, err := newService(m).Pet(context.Background(), "101")
	require.NoError(t, err)
	assert.True(t, summary.Allowed, "title/overview scan is the last-resort evidence")
}

func TestPet_NoDataMeansNotAllowed(t *testing.T) {
	m := &mockUpstream{}
	summary, err := newService(m).Pet(context.Background(), "101")
	require.NoError(t, err)
	assert.False(t, summary.Allowed)
	assert.Nil(t, summary.Info)
}

func TestSanitizeHomepage(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"anchor markup", `<a href="http://www.royalpalace.go.kr" target="_blank">홈페이지</a>`, "http://www.royalpalace.go.kr"},
		{"plain url", "https://example.com/path", "https://example.com/path"},
		{"missing scheme", "www.example.com", "http://www.example.com"},
		{"empty", "", ""},
		{"relative path", "/about", ""},
		{"garbage", "::::", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tour.SanitizeHomepage(tc.in))
		})
	}
}
