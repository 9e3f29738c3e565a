package tourapi

import (
	"bytes"
	"encoding/json"
)

const resultCodeOK = "0000"

// envelope is the common TourAPI response wrapper.
type envelope[T any] struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      itemList[T] `json:"items"`
			NumOfRows  int         `json:"numOfRows"`
			PageNo     int         `json:"pageNo"`
			TotalCount int         `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// itemList absorbs the upstream's inconsistent "items" shapes: absent,
// null, an empty string, a single object, or an array of objects. The
// ambiguity never leaks past this type — callers always see a slice.
type itemList[T any] struct {
	Items []T
}

func (l *itemList[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		l.Items = nil
		return nil
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}

	inner := bytes.TrimSpace(wrapper.Item)
	if len(inner) == 0 || bytes.Equal(inner, []byte("null")) {
		l.Items = nil
		return nil
	}

	if inner[0] == '[' {
		return json.Unmarshal(inner, &l.Items)
	}

	var single T
	if err := json.Unmarshal(inner, &single); err != nil {
		return err
	}
	l.Items = []T{single}
	return nil
}
