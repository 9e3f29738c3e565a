package tour

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jihaego327-source/oz1210/internal/pet"
	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

// DetailView merges the common detail, operating info, and image
// gallery into one response. Intro and image failures degrade to
// absent; only the detail itself is load-bearing.
type DetailView struct {
	tourapi.Detail
	Coordinate *tourapi.Coordinate `json:"coordinate,omitempty"`
	Intro      tourapi.Intro       `json:"intro,omitempty"`
	Images     []tourapi.ImageInfo `json:"images,omitempty"`
}

// Detail fetches and merges an attraction's full record. Returns
// nil, nil when the upstream has no record for the ID.
func (s *Service) Detail(ctx context.Context, contentID, contentTypeID string) (*DetailView, error) {
	var (
		detail *tourapi.Detail
		intro  tourapi.Intro
		images []tourapi.ImageInfo
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d, err := s.client.GetDetail(gCtx, contentID)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})

	g.Go(func() error {
		if contentTypeID == "" {
			return nil
		}
		in, err := s.client.GetIntro(gCtx, contentID, contentTypeID)
		if err != nil {
			s.log.Warn("intro fetch failed", "contentId", contentID, "err", err)
			return nil
		}
		intro = in
		return nil
	})

	g.Go(func() error {
		page, err := s.client.GetImages(gCtx, contentID, 10, 1)
		if err != nil {
			s.log.Warn("image fetch failed", "contentId", contentID, "err", err)
			return nil
		}
		images = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, nil
	}

	detail.Homepage = SanitizeHomepage(detail.Homepage)

	view := &DetailView{Detail: *detail, Intro: intro, Images: images}
	if c, ok := detail.Coordinate(); ok {
		coord := c
		view.Coordinate = &coord
	}
	return view, nil
}

// PetSummary is the inferred accommodation verdict plus the raw record
// it was derived from.
type PetSummary struct {
	Allowed bool             `json:"allowed"`
	Info    *tourapi.PetInfo `json:"info,omitempty"`
}

// Pet resolves the pet record for a single attraction: the dedicated
// endpoint first, then a detail-text scan as a weaker fallback. A
// missing record yields allowed=false, never an error.
func (s *Service) Pet(ctx context.Context, contentID string) (*PetSummary, error) {
	info, err := s.client.GetPetInfo(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if info == nil {
		d, err := s.client.GetDetail(ctx, contentID)
		if err != nil {
			s.log.Warn("detail fallback for pet info failed", "contentId", contentID, "err", err)
		} else if d != nil {
			scanned, _ := s.textScanPetInfo(ctx, tourapi.Attraction{ContentID: d.ContentID, Title: d.Title + " " + d.Overview})
			info = scanned
		}
	}

	return &PetSummary{
		Allowed: pet.Allowed(pet.MergeText(info.Texts()...)),
		Info:    info,
	}, nil
}

var hrefPattern = regexp.MustCompile(`href=["']([^"']+)["']`)

// SanitizeHomepage normalizes the upstream homepage field, which may be
// anchor markup, scheme-less, relative, or plain garbage. Returns ""
// when no absolute URL can be recovered.
func SanitizeHomepage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := hrefPattern.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
