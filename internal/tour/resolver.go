package tour

import (
	"context"
	"strings"

	"github.com/jihaego327-source/oz1210/internal/tourapi"
)

// titlePetKeywords signal pet relevance when scanning listing text as a
// last resort. This is weaker evidence than the inline columns or the
// dedicated endpoint.
var titlePetKeywords = []string{"반려", "애견", "애완", "펫", "강아지", "반려견"}

// petResolver returns the pet record for an attraction, nil when the
// strategy has nothing to say.
type petResolver func(ctx context.Context, a tourapi.Attraction) (*tourapi.PetInfo, error)

// resolvePetInfo walks the strategy chain in confidence order and takes
// the first non-nil result:
//  1. inline pet columns already present on the listing row
//  2. the dedicated per-item pet-info endpoint
//  3. a scan of the listing title text (last-resort guess)
func (s *Service) resolvePetInfo(ctx context.Context, a tourapi.Attraction) *tourapi.PetInfo {
	resolvers := []petResolver{
		s.inlinePetInfo,
		s.endpointPetInfo,
		s.textScanPetInfo,
	}
	for _, resolve := range resolvers {
		info, err := resolve(ctx, a)
		if err != nil {
			s.log.Warn("pet info lookup failed", "contentId", a.ContentID, "err", err)
			continue
		}
		if info != nil {
			return info
		}
	}
	return nil
}

func (s *Service) inlinePetInfo(_ context.Context, a tourapi.Attraction) (*tourapi.PetInfo, error) {
	if a.AcmpyTypeCd == "" && a.EtcAcmpyInfo == "" {
		return nil, nil
	}
	return &tourapi.PetInfo{AcmpyTypeCd: a.AcmpyTypeCd, EtcAcmpyInfo: a.EtcAcmpyInfo}, nil
}

func (s *Service) endpointPetInfo(ctx context.Context, a tourapi.Attraction) (*tourapi.PetInfo, error) {
	return s.client.GetPetInfo(ctx, a.ContentID)
}

func (s *Service) textScanPetInfo(_ context.Context, a tourapi.Attraction) (*tourapi.PetInfo, error) {
	title := strings.ToLower(a.Title)
	for _, kw := range titlePetKeywords {
		if strings.Contains(title, kw) {
			return &tourapi.PetInfo{EtcAcmpyInfo: a.Title}, nil
		}
	}
	return nil, nil
}
