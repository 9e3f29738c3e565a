package tourapi

import "math"

// Region is an administrative area code from the areaCode endpoint.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ContentType pairs a TourAPI content-type ID with its display name.
type ContentType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ContentTypes is the full taxonomy of TourAPI listing categories.
var ContentTypes = []ContentType{
	{ID: "12", Name: "관광지"},
	{ID: "14", Name: "문화시설"},
	{ID: "15", Name: "축제공연행사"},
	{ID: "25", Name: "여행코스"},
	{ID: "28", Name: "레포츠"},
	{ID: "32", Name: "숙박"},
	{ID: "38", Name: "쇼핑"},
	{ID: "39", Name: "음식점"},
}

// ContentTypeName returns the display name for a content-type ID, or
// the ID itself when unknown.
func ContentTypeName(id string) string {
	for _, ct := range ContentTypes {
		if ct.ID == id {
			return ct.Name
		}
	}
	return id
}

// Attraction is a single listing row. All fields arrive as strings;
// coordinates stay in the upstream fixed-point encoding until converted
// via Coordinate.
type Attraction struct {
	ContentID     string `json:"contentid"`
	ContentTypeID string `json:"contenttypeid"`
	Title         string `json:"title"`
	Addr1         string `json:"addr1"`
	Addr2         string `json:"addr2,omitempty"`
	AreaCode      string `json:"areacode,omitempty"`
	MapX          string `json:"mapx,omitempty"`
	MapY          string `json:"mapy,omitempty"`
	FirstImage    string `json:"firstimage,omitempty"`
	FirstImage2   string `json:"firstimage2,omitempty"`
	Tel           string `json:"tel,omitempty"`
	ModifiedTime  string `json:"modifiedtime,omitempty"`

	// Pet-accommodation columns are present only on pet-oriented
	// listing responses. When populated they are the highest-confidence
	// pet-info source and spare a per-item detail call.
	AcmpyTypeCd  string `json:"acmpyTypeCd,omitempty"`
	EtcAcmpyInfo string `json:"etcAcmpyInfo,omitempty"`
}

// Coordinate converts the fixed-point pair to decimal degrees and
// reports whether the result is displayable (parses and falls inside
// the Korean bounding box).
func (a Attraction) Coordinate() (Coordinate, bool) {
	c, ok := ParseCoordinate(a.MapX, a.MapY)
	if !ok || !c.InKorea() {
		return Coordinate{}, false
	}
	return c, true
}

// Detail is the detailCommon response: an Attraction superset with
// overview text and contact fields. Homepage arrives in inconsistent
// formats (anchor markup, scheme-less, relative) and must be sanitized
// before use.
type Detail struct {
	Attraction
	Overview string `json:"overview,omitempty"`
	Homepage string `json:"homepage,omitempty"`
	ZipCode  string `json:"zipcode,omitempty"`
}

// Intro carries the detailIntro operating-info fields. The field set
// varies per content type (usetime vs usetimeculture vs opentimefood,
// and so on), so it is kept as a raw map.
type Intro map[string]any

// ImageInfo is one detailImage row.
type ImageInfo struct {
	OriginImgURL string `json:"originimgurl"`
	SmallImgURL  string `json:"smallimageurl,omitempty"`
	ImgName      string `json:"imgname,omitempty"`
	Serial       string `json:"serialnum,omitempty"`
}

// PetInfo is the detailPetTour record. Every field is free text; there
// is no structured allowed/disallowed flag upstream.
type PetInfo struct {
	AcmpyTypeCd     string `json:"acmpyTypeCd,omitempty"`    // accompaniment type
	AcmpyPsblCpam   string `json:"acmpyPsblCpam,omitempty"`  // permitted pet size/kind
	AcmpyNeedMtr    string `json:"acmpyNeedMtr,omitempty"`   // required precautions (leash, muzzle, ...)
	RelaPosesFclty  string `json:"relaPosesFclty,omitempty"` // allowed areas / facilities
	RelaFrnshPrdlst string `json:"relaFrnshPrdlst,omitempty"`
	RelaPurcPrdlst  string `json:"relaPurcPrdlst,omitempty"` // purchasable items / fees
	EtcAcmpyInfo    string `json:"etcAcmpyInfo,omitempty"`   // misc notes
}

// Texts returns the populated free-text fields in a fixed order, ready
// for keyword classification.
func (p *PetInfo) Texts() []string {
	if p == nil {
		return nil
	}
	fields := []string{
		p.AcmpyTypeCd,
		p.AcmpyPsblCpam,
		p.AcmpyNeedMtr,
		p.RelaPosesFclty,
		p.RelaFrnshPrdlst,
		p.RelaPurcPrdlst,
		p.EtcAcmpyInfo,
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether the record carries no text at all.
func (p *PetInfo) Empty() bool { return len(p.Texts()) == 0 }

// Pagination is computed locally from the envelope counts rather than
// trusted from upstream fields that may be absent.
type Pagination struct {
	PageNo     int `json:"pageNo"`
	NumOfRows  int `json:"numOfRows"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of upstream results.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes the derived page count from the raw counts.
func NewPagination(pageNo, numOfRows, totalCount int) Pagination {
	p := Pagination{PageNo: pageNo, NumOfRows: numOfRows, TotalCount: totalCount}
	if numOfRows > 0 {
		p.TotalPages = int(math.Ceil(float64(totalCount) / float64(numOfRows)))
	}
	return p
}
