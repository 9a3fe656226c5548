package wikidata

import "encoding/json"

// apiErrorPayload is the error envelope the Action API returns with a 200 status.
type apiErrorPayload struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// searchResponse is the wbsearchentities response.
type searchResponse struct {
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"search"`
}

// entitiesResponse is the wbgetentities response with raw per-entity payloads.
type entitiesResponse struct {
	Entities map[string]json.RawMessage `json:"entities"`
}

// entityPayload is one entity of a props=claims request.
type entityPayload struct {
	Missing *string         `json:"missing"`
	Claims  json.RawMessage `json:"claims"`
}

// labelsPayload is one entity of a props=labels request.
type labelsPayload struct {
	Missing *string `json:"missing"`
	Labels  map[string]struct {
		Language string `json:"language"`
		Value    string `json:"value"`
	} `json:"labels"`
}

// claim is the subset of a statement needed for filtering and value extraction.
type claim struct {
	MainSnak struct {
		SnakType  string `json:"snaktype"`
		Datatype  string `json:"datatype"`
		DataValue struct {
			Value struct {
				ID string `json:"id"`
			} `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}
